package domain

import (
	"errors"
	"fmt"
)

// Application error codes.
// These map to HTTP status codes and to the messages shown in the form banner.
const (
	EINTERNAL    = "internal"    // 500 - Internal server error (hide details)
	EINVALID     = "invalid"     // 400 - Validation error (bad input)
	ENOTFOUND    = "not_found"   // 404 - Resource not found
	EFORBIDDEN   = "forbidden"   // 403 - Caller lacks permission for the write
	ERATELIMIT   = "rate_limit"  // 429 - Too many requests
	EUNAVAILABLE = "unavailable" // 503 - Upstream service (store, lookup API) unreachable
	ECONFLICT    = "conflict"    // 409 - Operation already in progress
	ETOOLARGE    = "too_large"   // 413 - Request body too large
)

// Error represents an application error with a code and message.
type Error struct {
	// Code is a machine-readable error code (e.g., EINVALID, ENOTFOUND).
	Code string

	// Message is a human-readable error message safe to show to users.
	Message string

	// Op is the operation where the error occurred (e.g., "users.create").
	Op string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode extracts the error code from an error.
// Returns EINTERNAL for non-domain errors and "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return EINTERNAL
}

// ErrorMessage extracts a user-facing message from an error.
// Internal errors get a generic message so details never leak.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) && e.Code != EINTERNAL {
		return e.Message
	}

	return "An internal error occurred. Please try again later."
}

// ErrorOp extracts the operation from an error (for logging).
func ErrorOp(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// Errorf creates a new domain error with formatted message.
func Errorf(code, op, format string, args ...interface{}) error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError wraps an existing error with a domain error code and operation.
// Returns nil if err is nil.
func WrapError(err error, code, op, message string) error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// IsCode returns true if err has the given error code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// =============================================================================
// Validation Errors (field-level errors for forms)
// =============================================================================

// ValidationError represents one or more field validation failures.
type ValidationError struct {
	// Fields maps field names to error messages.
	Fields map[string]string

	// Op is the operation where validation failed.
	Op string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		for field, msg := range e.Fields {
			if e.Op != "" {
				return fmt.Sprintf("%s: %s: %s", e.Op, field, msg)
			}
			return fmt.Sprintf("%s: %s", field, msg)
		}
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: validation failed for %d fields", e.Op, len(e.Fields))
	}
	return fmt.Sprintf("validation failed for %d fields", len(e.Fields))
}

// NewValidationError creates a validation error from a field map.
// Returns nil when fields is empty.
func NewValidationError(op string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Op: op, Fields: fields}
}

// GetValidationFields extracts field errors from a ValidationError.
// Returns nil if err is not a ValidationError.
func GetValidationFields(err error) map[string]string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// =============================================================================
// Common errors (convenience)
// =============================================================================

// NotFound creates a not found error for a resource.
// Example: domain.NotFound("address.search", "CEP", "01310100")
func NotFound(op, resource, identifier string) error {
	return &Error{
		Code:    ENOTFOUND,
		Op:      op,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
	}
}

// Forbidden creates a forbidden error.
func Forbidden(err error, op, message string) error {
	return &Error{Code: EFORBIDDEN, Op: op, Message: message, Err: err}
}

// Invalid creates a validation error for a single issue.
func Invalid(op, message string) error {
	return &Error{Code: EINVALID, Op: op, Message: message}
}

// Unavailable creates an error for an unreachable upstream service.
func Unavailable(err error, op, message string) error {
	return &Error{Code: EUNAVAILABLE, Op: op, Message: message, Err: err}
}

// Internal creates an internal error (wraps underlying error).
// The message shown to users will be generic; the underlying error is for logging.
func Internal(err error, op, message string) error {
	return &Error{Code: EINTERNAL, Op: op, Message: message, Err: err}
}
