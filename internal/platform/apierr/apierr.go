package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/pusdatin/satudata-backend/internal/domain/aggregates"
)

// Error is an HTTP-facing failure: a status, a stable code and the cause.
type Error struct {
	Status  int
	Code    string
	Err     error
	Details map[string]any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(code string, err error) *Error {
	return New(http.StatusBadRequest, code, err)
}

var statusByCode = map[domainagg.ErrorCode]int{
	domainagg.CodeMissingContext:       http.StatusUnauthorized,
	domainagg.CodeForbidden:            http.StatusForbidden,
	domainagg.CodeDatasetNotFound:      http.StatusNotFound,
	domainagg.CodeDatasetLocked:        http.StatusConflict,
	domainagg.CodeTransitionNotAllowed: http.StatusConflict,
	domainagg.CodeDuplicateConflict:    http.StatusConflict,
	domainagg.CodeFKConflict:           http.StatusConflict,
	domainagg.CodeReasonRequired:       http.StatusUnprocessableEntity,
	domainagg.CodeSchemaEmpty:          http.StatusUnprocessableEntity,
	domainagg.CodeHeaderMismatch:       http.StatusUnprocessableEntity,
	domainagg.CodeUnsupportedFormat:    http.StatusUnprocessableEntity,
	domainagg.CodeUnreadableFile:       http.StatusUnprocessableEntity,
	domainagg.CodeValidation:           http.StatusUnprocessableEntity,
	domainagg.CodeRetryable:            http.StatusServiceUnavailable,
	domainagg.CodeInternal:             http.StatusInternalServerError,
}

// StatusFor returns the HTTP status of an aggregate error code.
func StatusFor(code domainagg.ErrorCode) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// From converts any error into an *Error. Aggregate errors keep their code and
// details; internal failures never expose their message.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		status := StatusFor(aggErr.Code)
		out := &Error{Status: status, Code: string(aggErr.Code), Err: err, Details: aggErr.Meta}
		if status >= http.StatusInternalServerError && aggErr.Code != domainagg.CodeRetryable {
			out.Code = string(domainagg.CodeInternal)
			out.Details = nil
		}
		return out
	}
	return &Error{Status: http.StatusInternalServerError, Code: string(domainagg.CodeInternal), Err: err}
}

// PublicMessage is the message safe to return to clients.
func (e *Error) PublicMessage() string {
	if e == nil {
		return ""
	}
	if e.Status >= http.StatusInternalServerError && e.Code == string(domainagg.CodeInternal) {
		return "internal error"
	}
	var aggErr *domainagg.Error
	if errors.As(e.Err, &aggErr) && aggErr.Message != "" {
		return aggErr.Message
	}
	return e.Error()
}
