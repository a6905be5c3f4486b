package service

import "errors"

var (
	// ErrValidation marks malformed or incomplete input. Callers wrap
	// it with detail: fmt.Errorf("%w: items required", ErrValidation).
	ErrValidation = errors.New("validation failed")

	// ErrSignatureMismatch is a payment failure, not a system error.
	// It is recorded on the payment record and reported to the caller.
	ErrSignatureMismatch = errors.New("payment signature mismatch")
)
