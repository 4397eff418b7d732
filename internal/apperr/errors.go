// Package apperr defines the application error taxonomy. Handlers match these
// with errors.As and translate them to HTTP responses; everything else is a
// generic internal error.
package apperr

import (
	"fmt"
	"net/http"
)

// Error codes.
const (
	CodeNotFound       = "NOT_FOUND"
	CodeValidation     = "VALIDATION_ERROR"
	CodeResourceExists = "RESOURCE_EXISTS"
	CodeBusinessLogic  = "BUSINESS_LOGIC_ERROR"
	CodeDatabase       = "DATABASE_ERROR"
	CodeInternal       = "INTERNAL_ERROR"
)

// Error is a typed application error carrying an HTTP status and a
// machine-readable code alongside the message.
type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports a missing resource by name and identifier.
func NotFound(resource, identifier string) *Error {
	details := map[string]interface{}{"resource": resource}
	if identifier != "" {
		details["identifier"] = identifier
	}
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Details: details,
	}
}

// Validation reports malformed request data, optionally naming the field.
func Validation(message, field string) *Error {
	details := map[string]interface{}{}
	if field != "" {
		details["field"] = field
	}
	return &Error{
		Code:    CodeValidation,
		Message: message,
		Status:  http.StatusBadRequest,
		Details: details,
	}
}

// InvalidField reports an enumerated field value outside the allowed set.
func InvalidField(field, value string, allowed []string) *Error {
	return &Error{
		Code:    CodeValidation,
		Message: fmt.Sprintf("invalid value '%s' for field '%s'", value, field),
		Status:  http.StatusBadRequest,
		Details: map[string]interface{}{
			"field":          field,
			"value":          value,
			"allowed_values": allowed,
		},
	}
}

// Exists reports a duplicate unique key.
func Exists(resource, field, value string) *Error {
	return &Error{
		Code:    CodeResourceExists,
		Message: fmt.Sprintf("%s with %s '%s' already exists", resource, field, value),
		Status:  http.StatusConflict,
		Details: map[string]interface{}{"resource": resource, "field": field, "value": value},
	}
}

// BusinessLogic reports an invalid state transition or domain-rule violation.
func BusinessLogic(message string) *Error {
	return &Error{
		Code:    CodeBusinessLogic,
		Message: message,
		Status:  http.StatusUnprocessableEntity,
		Details: map[string]interface{}{},
	}
}

// Database wraps a store failure with the operation that hit it. The wrapped
// error is logged server-side and never exposed to callers.
func Database(op string, err error) *Error {
	return &Error{
		Code:    CodeDatabase,
		Message: "database operation failed",
		Status:  http.StatusInternalServerError,
		Details: map[string]interface{}{"operation": op},
		Err:     err,
	}
}
