// Package errors provides structured error handling for the system.
//
// It defines a standard AppError type that includes a stable code, a
// human-readable message, and an optional wrapped cause, plus helpers for
// classifying errors (IsTransient) that the retry policy and emission
// pipeline use to decide whether a failure should be retried or surfaced
// immediately.
package errors

import (
	"errors"
	"fmt"
)

// Is and As re-export the standard library so callers only need to import
// this package when they also construct AppErrors.
var (
	Is = errors.Is
	As = errors.As
)

// Standard error codes used across the system. Adapters and components are
// expected to classify failures into one of these rather than invent
// call-site-specific strings.
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeDisposed        = "DISPOSED"
	CodeCanceled        = "CANCELED"
	CodeTransient       = "TRANSIENT"
	CodeNotFound        = "NOT_FOUND"
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeInternal        = "INTERNAL"
)

// AppError is a structured error carrying a stable code, a human-readable
// message, and an optional wrapped cause.
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New constructs an AppError. err may be nil.
func New(code, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Cause: err}
}

// Wrap creates an AppError with CodeInternal unless err already carries a
// code, in which case that code is preserved.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var existing *AppError
	if errors.As(err, &existing) {
		return New(existing.Code, message, err)
	}
	return New(CodeInternal, message, err)
}

// CodeOf extracts the code of err if it (or something it wraps) is an
// AppError, and reports whether one was found.
func CodeOf(err error) (string, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}

// HasCode reports whether err (or something it wraps) is an AppError with
// the given code.
func HasCode(err error, code string) bool {
	got, ok := CodeOf(err)
	return ok && got == code
}

// IsTransient reports whether err should be retried once by the retry
// policy (spec §4.9 / §7): an AppError tagged CodeTransient, and nothing
// else. Context cancellation/deadline and all other codes are considered
// non-transient and propagate immediately.
func IsTransient(err error) bool {
	return HasCode(err, CodeTransient)
}
