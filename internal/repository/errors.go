package repository

import "errors"

var (
	ErrNotFound = errors.New("record not found")
	// ErrConcurrentModification means the row version changed between read and write.
	ErrConcurrentModification = errors.New("concurrent modification")
	ErrInsufficientBalance    = errors.New("insufficient balance")
)
