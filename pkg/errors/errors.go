package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrMissingInput ErrorCode = "MISSING_INPUT"

	// File errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrStylesLoad  ErrorCode = "STYLES_LOAD"

	// Remote fetch errors
	ErrUpstreamStatus ErrorCode = "UPSTREAM_STATUS"
	ErrFetchTimeout   ErrorCode = "FETCH_TIMEOUT"
	ErrNetwork        ErrorCode = "NETWORK"

	// Permalink errors
	ErrPermalinkEncode ErrorCode = "PERMALINK_ENCODE"
	ErrPermalinkDecode ErrorCode = "PERMALINK_DECODE"
)

// FormatterError represents a structured error with code and details
type FormatterError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *FormatterError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *FormatterError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *FormatterError) Is(target error) bool {
	var targetErr *FormatterError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new FormatterError with the given code and message
func New(code ErrorCode, message string) *FormatterError {
	return &FormatterError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new FormatterError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *FormatterError {
	return &FormatterError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a FormatterError
func Wrap(err error, code ErrorCode, message string) *FormatterError {
	if err == nil {
		return nil
	}
	return &FormatterError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *FormatterError {
	if err == nil {
		return nil
	}
	return &FormatterError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *FormatterError) WithDetail(key string, value interface{}) *FormatterError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var fe *FormatterError
	if errors.As(err, &fe) {
		return fe.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a FormatterError
func GetErrorCode(err error) ErrorCode {
	var fe *FormatterError
	if errors.As(err, &fe) {
		return fe.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a FormatterError
func GetErrorDetails(err error) map[string]interface{} {
	var fe *FormatterError
	if errors.As(err, &fe) {
		return fe.Details
	}
	return nil
}

// HTTPStatus maps an error to the status code an API response should carry.
// Upstream status errors keep the upstream code when it is a valid status.
func HTTPStatus(err error) int {
	switch GetErrorCode(err) {
	case ErrMissingInput, ErrInvalidInput, ErrPermalinkEncode, ErrPermalinkDecode:
		return http.StatusBadRequest
	case ErrFileNotFound:
		return http.StatusNotFound
	case ErrUpstreamStatus:
		if status, ok := GetErrorDetails(err)["status"].(int); ok && status >= 400 && status <= 599 {
			return status
		}
		return http.StatusBadGateway
	case ErrFetchTimeout:
		return http.StatusGatewayTimeout
	case ErrNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
