package service

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failure classes the HTTP layer maps to status codes.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindValidation
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is the only error type services return to callers. Code narrows a
// Kind (e.g. which validation rule failed).
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Kind == KindInternal {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Kind and Code so a detailed error still equals its sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// With returns a copy of the sentinel carrying a more specific message.
func (e *Error) With(format string, args ...interface{}) *Error {
	clone := *e
	clone.Message = fmt.Sprintf(format, args...)
	return &clone
}

const (
	CodeNotFound             = "not_found"
	CodeForbidden            = "forbidden"
	CodeConflict             = "conflict"
	CodeInternal             = "internal"
	CodeAlreadyPaid          = "already_paid"
	CodeInsufficientFunds    = "insufficient_funds"
	CodeInvalidAmount        = "invalid_amount"
	CodeDepositLimitExceeded = "deposit_limit_exceeded"
	CodeInvalidDate          = "invalid_date"
	CodeInvalidInput         = "invalid_input"
)

var (
	ErrNotFound          = &Error{Kind: KindNotFound, Code: CodeNotFound, Message: "not found"}
	ErrPermissionDenied  = &Error{Kind: KindForbidden, Code: CodeForbidden, Message: "permission denied"}
	ErrConflict          = &Error{Kind: KindConflict, Code: CodeConflict, Message: "resource was modified concurrently, retry the request"}
	ErrAlreadyPaid       = &Error{Kind: KindValidation, Code: CodeAlreadyPaid, Message: "job already paid for"}
	ErrInsufficientFunds = &Error{Kind: KindValidation, Code: CodeInsufficientFunds, Message: "insufficient funds to pay for job"}
	ErrInvalidAmount     = &Error{Kind: KindValidation, Code: CodeInvalidAmount, Message: "amount must be a number greater than zero"}
	ErrDepositLimit      = &Error{Kind: KindValidation, Code: CodeDepositLimitExceeded, Message: "deposit exceeds the allowed share of unpaid jobs"}
	ErrInvalidDate       = &Error{Kind: KindValidation, Code: CodeInvalidDate, Message: "date must be formatted as YYYY-MM-DD"}
	ErrInvalidInput      = &Error{Kind: KindValidation, Code: CodeInvalidInput, Message: "invalid input"}
)

func internalError(op string, err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: op, Err: err}
}

// KindOf classifies any error; errors that are not *Error are internal.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}
