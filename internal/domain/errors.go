package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Error kinds
	CodeInternal           ErrorCode = "INTERNAL_ERROR"
	CodeNotFound           ErrorCode = "NOT_FOUND"
	CodeValidation         ErrorCode = "VALIDATION_ERROR"
	CodeShapeMismatch      ErrorCode = "SHAPE_MISMATCH"
	CodeTimeout            ErrorCode = "TIMEOUT"
	CodeStorageUnavailable ErrorCode = "STORAGE_UNAVAILABLE"

	// Field-level codes
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"
	CodeDuplicate     ErrorCode = "DUPLICATE"
	CodeUnknownField  ErrorCode = "UNKNOWN_FIELD"
)

// FieldError describes one offending field of a payload.
type FieldError struct {
	Field   string    `json:"field"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode
	Message string
	Fields  []FieldError
	Err     error
}

func (e *DomainError) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.Message)
		}
		msg = fmt.Sprintf("%s (%s)", msg, strings.Join(parts, "; "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string       `json:"code"`
		Message string       `json:"message"`
		Fields  []FieldError `json:"errors,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Fields:  e.Fields,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewFormNotFoundError(formID string) *DomainError {
	return NewError(CodeNotFound, fmt.Sprintf("form not found with ID: %s", formID), nil)
}

func NewResponseNotFoundError(responseID string) *DomainError {
	return NewError(CodeNotFound, fmt.Sprintf("response not found with ID: %s", responseID), nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewTimeoutError(message string, err error) *DomainError {
	return NewError(CodeTimeout, message, err)
}

func NewStorageUnavailableError(message string, err error) *DomainError {
	return NewError(CodeStorageUnavailable, message, err)
}

// NewValidationError reports every offending field of a payload at once.
func NewValidationError(message string, fields []FieldError) *DomainError {
	return &DomainError{Code: CodeValidation, Message: message, Fields: fields}
}

// NewShapeMismatchError reports a variant payload whose structure does not
// match its question type.
func NewShapeMismatchError(message string, fields []FieldError) *DomainError {
	return &DomainError{Code: CodeShapeMismatch, Message: message, Fields: fields}
}

// Field error helpers

func MissingField(field string) FieldError {
	return FieldError{Field: field, Code: CodeMissingField, Message: "is required"}
}

func InvalidFormat(field, message string) FieldError {
	return FieldError{Field: field, Code: CodeInvalidFormat, Message: message}
}

func OutOfRange(field string, value, min, max int) FieldError {
	return FieldError{
		Field:   field,
		Code:    CodeOutOfRange,
		Message: fmt.Sprintf("value %d is outside [%d, %d]", value, min, max),
	}
}

func Duplicate(field, value string) FieldError {
	return FieldError{Field: field, Code: CodeDuplicate, Message: fmt.Sprintf("duplicate value %q", value)}
}

func UnknownField(field, message string) FieldError {
	return FieldError{Field: field, Code: CodeUnknownField, Message: message}
}

func Mismatch(field, message string) FieldError {
	return FieldError{Field: field, Code: CodeShapeMismatch, Message: message}
}

// KindOf returns the error kind carried by err, or CodeInternal for errors
// that did not originate in the domain.
func KindOf(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// IsNotFound reports whether err is a NOT_FOUND domain error.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == CodeNotFound
}

// IsRetryable reports whether a caller may retry the failed operation.
// Only storage availability failures qualify.
func IsRetryable(err error) bool {
	return err != nil && KindOf(err) == CodeStorageUnavailable
}

// FieldsOf returns the field errors carried by err, if any.
func FieldsOf(err error) []FieldError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Fields
	}
	return nil
}

// PrefixFields returns copies of fields with prefix prepended to each path.
func PrefixFields(prefix string, fields []FieldError) []FieldError {
	out := make([]FieldError, len(fields))
	for i, f := range fields {
		f.Field = joinPath(prefix, f.Field)
		out[i] = f
	}
	return out
}

func joinPath(prefix, field string) string {
	switch {
	case prefix == "":
		return field
	case field == "":
		return prefix
	case strings.HasPrefix(field, "["):
		return prefix + field
	default:
		return prefix + "." + field
	}
}
