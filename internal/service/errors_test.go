package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorWithKeepsIdentity(t *testing.T) {
	err := ErrNotFound.With("job with id %d not found", 7)

	assert.Equal(t, "job with id 7 not found", err.Error())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, "not found", ErrNotFound.Message, "sentinel must not be mutated")
}

func TestValidationCodesAreDistinct(t *testing.T) {
	assert.NotErrorIs(t, ErrAlreadyPaid, ErrInsufficientFunds)
	assert.NotErrorIs(t, ErrInvalidDate, ErrInvalidAmount)
	assert.Equal(t, KindValidation, KindOf(ErrDepositLimit))
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ErrConflict)

	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(internalError("load", errors.New("boom"))))
}

func TestInternalErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := internalError("load job", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "load job: connection refused", err.Error())
}

func TestOutcomeLabels(t *testing.T) {
	assert.Equal(t, "success", outcome(nil))
	assert.Equal(t, "insufficient_funds", outcome(ErrInsufficientFunds))
	assert.Equal(t, "conflict", outcome(ErrConflict.With("x")))
	assert.Equal(t, "internal", outcome(errors.New("boom")))
}
