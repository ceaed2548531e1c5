package apierr

import (
	"errors"
	"fmt"
	"net/http"

	domainagg "github.com/yungbote/careerbridge-backend/internal/domain/aggregates"
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

// FromError resolves err to an API error. An *Error anywhere in the chain
// wins; otherwise the aggregate code decides the status. Unknown errors map
// to 500 with code "internal".
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	code := domainagg.CodeOf(err)
	switch code {
	case domainagg.CodeNotFound:
		return New(http.StatusNotFound, string(code), err)
	case domainagg.CodeValidation:
		return New(http.StatusUnprocessableEntity, string(code), err)
	case domainagg.CodeConflict, domainagg.CodePreconditionFailed, domainagg.CodeInvariantViolation:
		return New(http.StatusConflict, string(code), err)
	case domainagg.CodeProvider, domainagg.CodeGenerationFailed:
		return New(http.StatusBadGateway, string(code), err)
	case domainagg.CodeRetryable:
		return New(http.StatusServiceUnavailable, string(code), err)
	default:
		return New(http.StatusInternalServerError, string(domainagg.CodeInternal), err)
	}
}
