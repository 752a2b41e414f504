package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Is, As and Join re-export the standard helpers so callers need one import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target interface{}) bool { return stderrors.As(err, target) }

func Join(errs ...error) error { return stderrors.Join(errs...) }

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeValidationError = "VALIDATION_ERROR"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeDegenerateData  = "DEGENERATE_DATA"
	CodeCanceled        = "CANCELED"
)

// Sentinels for precondition failures. Constructors below wrap them so callers
// can match with Is regardless of the message.
var (
	ErrInsufficientData = stderrors.New("insufficient data")
	ErrLengthMismatch   = stderrors.New("length mismatch")
	ErrInvalidParameter = stderrors.New("invalid parameter")
	ErrZeroVariance     = stderrors.New("zero variance")
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// InsufficientData reports a sample below the minimum size an operation needs.
func InsufficientData(what string, got, need int) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: fmt.Sprintf("%s requires at least %d valid observations, got %d", what, need, got),
		Cause:   ErrInsufficientData,
	}
}

// LengthMismatch reports paired inputs of different lengths.
func LengthMismatch(what string, a, b int) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: fmt.Sprintf("%s requires equal-length inputs, got %d and %d", what, a, b),
		Cause:   ErrLengthMismatch,
	}
}

// InvalidParameter reports a scalar argument outside its domain.
func InvalidParameter(name string, value float64, domain string) *AppError {
	return &AppError{
		Code:    CodeInvalidInput,
		Message: fmt.Sprintf("%s must be %s, got %v", name, domain, value),
		Cause:   ErrInvalidParameter,
	}
}

// ZeroVariance reports data whose spread is zero where a division by it is required.
func ZeroVariance(what string) *AppError {
	return &AppError{
		Code:    CodeDegenerateData,
		Message: fmt.Sprintf("%s: degenerate sample with zero variance", what),
		Cause:   ErrZeroVariance,
	}
}

// HTTPStatus maps an error code onto the status the API adapter returns.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeInvalidInput, CodeValidationError:
		return http.StatusBadRequest
	case CodeDegenerateData:
		return http.StatusUnprocessableEntity
	case CodeCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
