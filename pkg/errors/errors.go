// Package errors defines the error taxonomy shared across the dseq library.
package errors

import (
	"errors"
	"fmt"
)

// Error codes for the distributed-sequence library. These follow spec
// §7's taxonomy of kinds, not concrete types: a contract violation by a
// user callback, a collective mismatch between ranks, a transport
// failure from the underlying fabric, or a plain invalid-input /
// configuration problem at construction time.
const (
	CodeUnknown            = "UNKNOWN_ERROR"
	CodeContractViolation  = "CONTRACT_VIOLATION"
	CodeCollectiveMismatch = "COLLECTIVE_MISMATCH"
	CodeTransportFailure   = "TRANSPORT_FAILURE"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeConfigError        = "CONFIG_ERROR"
	CodeNotFound           = "NOT_FOUND"
)

// AppError represents a library error with a code and message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is checks if the error matches the target.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError.
func New(code string, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError.
func Wrap(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error instances.
var (
	ErrContractViolation  = New(CodeContractViolation, "user callback violated its contract")
	ErrCollectiveMismatch = New(CodeCollectiveMismatch, "ranks disagree on collective shape")
	ErrTransportFailure   = New(CodeTransportFailure, "message-passing fabric failed")
	ErrInvalidInput       = New(CodeInvalidInput, "invalid input")
	ErrConfigError        = New(CodeConfigError, "configuration error")
	ErrNotFound           = New(CodeNotFound, "resource not found")
)

// IsContractViolation reports whether err is a user-callback contract
// violation (spec §7: split returning the wrong count, nodeMap
// returning a non-list, an out-of-range group key, a mismatched
// reducer type). These are detected by internal assertions and are
// fatal to the calling rank.
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrContractViolation)
}

// IsCollectiveMismatch reports whether err marks ranks that invoked
// incompatible collectives. The library cannot detect most of these
// (they manifest as a deadlock or a misrouted message). No package in
// this module returns this code: the send-schedule executor
// (pkg/schedule) panics on an item/schedule count mismatch instead.
func IsCollectiveMismatch(err error) bool {
	return errors.Is(err, ErrCollectiveMismatch)
}

// IsTransportFailure reports whether err originated in the underlying
// fabric and was simply propagated, never retried.
func IsTransportFailure(err error) bool {
	return errors.Is(err, ErrTransportFailure)
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetErrorMessage extracts the error message from an error.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
