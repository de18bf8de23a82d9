package aggregates

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is the stable machine-readable tag of an aggregate failure.
type ErrorCode string

const (
	CodeMissingContext       ErrorCode = "missing_context"
	CodeDatasetNotFound      ErrorCode = "dataset_not_found"
	CodeDatasetLocked        ErrorCode = "dataset_locked"
	CodeTransitionNotAllowed ErrorCode = "transition_not_allowed"
	CodeReasonRequired       ErrorCode = "reason_required"
	CodeSchemaEmpty          ErrorCode = "schema_empty"
	CodeUnsupportedFormat    ErrorCode = "unsupported_format"
	CodeUnreadableFile       ErrorCode = "unreadable_file"
	CodeHeaderMismatch       ErrorCode = "header_mismatch"
	CodeDuplicateConflict    ErrorCode = "duplicate_conflict"
	CodeFKConflict           ErrorCode = "fk_conflict"
	CodeValidation           ErrorCode = "validation"
	CodeForbidden            ErrorCode = "forbidden"
	CodeRetryable            ErrorCode = "retryable"
	CodeInternal             ErrorCode = "internal"
)

// Error is the canonical aggregate error wrapper.
type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
	// Meta carries structured details safe to show to callers (missing columns, current status).
	Meta map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// NewError builds an aggregate error with explicit code + operation.
func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

// NewErrorWithMeta is NewError plus structured details.
func NewErrorWithMeta(code ErrorCode, op, message string, meta map[string]any) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Meta:    meta,
	}
}

// Wrap annotates an existing error with aggregate error semantics.
func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

// IsCode checks whether err (or wrapped err) carries the given aggregate code.
func IsCode(err error, code ErrorCode) bool {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return false
	}
	return aggErr.Code == code
}

// CodeOf extracts the aggregate error code when available.
func CodeOf(err error) ErrorCode {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return ""
	}
	return aggErr.Code
}

// MetaOf returns the structured details of an aggregate error, if any.
func MetaOf(err error) map[string]any {
	var aggErr *Error
	if !errors.As(err, &aggErr) {
		return nil
	}
	return aggErr.Meta
}
