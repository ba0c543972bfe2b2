package errs

import (
	"net/http"
)

// statusCode is the default machine code of a status, e.g. NOT_FOUND.
func statusCode(status int) string {
	return MakeUpperCaseWithUnderscores(http.StatusText(status))
}

func newHTTPError(status int, message string, override bool, code *string) *HTTPError {
	c := statusCode(status)
	if code != nil {
		c = *code
	}
	return &HTTPError{
		Code:     c,
		Message:  message,
		Status:   status,
		Override: override,
	}
}

func NewUnauthorizedError(message string, override bool) *HTTPError {
	return newHTTPError(http.StatusUnauthorized, message, override, nil)
}

func NewForbiddenError(message string, override bool) *HTTPError {
	return newHTTPError(http.StatusForbidden, message, override, nil)
}

// NewBadRequestError creates a 400. code replaces BAD_REQUEST when set;
// errors lists invalid fields.
func NewBadRequestError(message string, override bool, code *string, errors []FieldError, action *Action) *HTTPError {
	e := newHTTPError(http.StatusBadRequest, message, override, code)
	e.Errors = errors
	e.Action = action
	return e
}

func NewNotFoundError(message string, override bool, code *string) *HTTPError {
	return newHTTPError(http.StatusNotFound, message, override, code)
}

// NewConflictError creates a 409, returned when a write raced another one.
func NewConflictError(message string, override bool) *HTTPError {
	return newHTTPError(http.StatusConflict, message, override, nil)
}

func NewTooManyRequestsError(message string) *HTTPError {
	return newHTTPError(http.StatusTooManyRequests, message, false, nil)
}

// NewInternalServerError hides the cause behind the generic status text.
func NewInternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError), false, nil)
}

// ValidationError wraps a failed business rule check into a 400.
func ValidationError(err error) *HTTPError {
	return NewBadRequestError("Validation failed: "+err.Error(), false, nil, nil, nil)
}

// New builds an error for any status with the default code for it.
func New(status int, message string) *HTTPError {
	return newHTTPError(status, message, false, nil)
}
