package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/harryc904/Studio/internal/domain/aggregates"
)

type Error struct {
	Status int
	Code   string
	Err    error
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

// Newf builds an Error whose cause is a formatted message.
func Newf(status int, code, format string, args ...any) *Error {
	return &Error{Status: status, Code: code, Err: fmt.Errorf(format, args...)}
}

var statusByCode = map[domainagg.ErrorCode]int{
	domainagg.CodeValidation:         http.StatusBadRequest,
	domainagg.CodeNotFound:           http.StatusNotFound,
	domainagg.CodeForbidden:          http.StatusForbidden,
	domainagg.CodeConflict:           http.StatusConflict,
	domainagg.CodeInvariantViolation: http.StatusUnprocessableEntity,
	domainagg.CodePreconditionFailed: http.StatusPreconditionFailed,
	domainagg.CodeRetryable:          http.StatusServiceUnavailable,
	domainagg.CodeInternal:           http.StatusInternalServerError,
}

// StatusFor returns the HTTP status for an aggregate error code; unknown codes map to 500.
func StatusFor(code domainagg.ErrorCode) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// FromError classifies err for the HTTP boundary. *Error values pass through, aggregate
// errors keep their code, and anything else becomes an opaque 500.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		if aggErr.Code == domainagg.CodeInternal {
			return &Error{Status: http.StatusInternalServerError, Code: string(aggErr.Code), Err: errors.New("internal error")}
		}
		msg := aggErr.Message
		if msg == "" {
			msg = string(aggErr.Code)
		}
		return &Error{Status: StatusFor(aggErr.Code), Code: string(aggErr.Code), Err: errors.New(msg)}
	}
	return &Error{Status: http.StatusInternalServerError, Code: string(domainagg.CodeInternal), Err: errors.New("internal error")}
}
