// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): malformed bar series, invalid risk parameters, bad config
//   - Data/Resource errors (200-299): data files, queries and fee schedules
//   - Indicator errors (300-399): signal provider lookup and calculation errors
//   - Strategy errors (400-499): strategy grid and version errors
//   - Backtest errors (600-699): orchestrator setup, run and persistence errors
//   - Callback errors (800-899): lifecycle callback failures
//
// Validation and parameter errors are fatal to a single simulation run only; the
// orchestrator records them against the run and keeps going.
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidRiskParams, "fill_rate must be within [0, 1]")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeInvalidBarSeries, "bar %d: timestamp goes backwards", i)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodeQueryFailed, "failed to load bars", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeInvalidBarSeries) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error is a coded error. Cause is optional and is exposed through Unwrap.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New returns an Error without a cause.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code and message to cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is forwards to the standard errors.Is so callers need a single import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As forwards to the standard errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// coded is implemented by errors that carry an ErrorCode without being an *Error.
type coded interface {
	ErrorCode() ErrorCode
}

// GetCode returns the code of the outermost coded error in err's chain,
// or ErrCodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	for ; err != nil; err = errors.Unwrap(err) {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coded:
			return e.ErrorCode()
		}
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// InsufficientDataError is returned by a signal provider whose lookback is
// longer than the bar series it was given.
type InsufficientDataError struct {
	Required int
	Actual   int
	Symbol   string
	Message  string
}

// NewInsufficientDataError creates a new InsufficientDataError.
func NewInsufficientDataError(required, actual int, symbol, message string) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Symbol:   symbol,
		Message:  message,
	}
}

// NewInsufficientDataErrorf creates a new InsufficientDataError with a formatted message.
func NewInsufficientDataErrorf(required, actual int, symbol, format string, args ...any) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Symbol:   symbol,
		Message:  fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	return e.Message
}

// ErrorCode lets GetCode report ErrCodeInsufficientData.
func (e *InsufficientDataError) ErrorCode() ErrorCode {
	return ErrCodeInsufficientData
}

// IsInsufficientDataError reports whether err's chain holds an InsufficientDataError.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}
