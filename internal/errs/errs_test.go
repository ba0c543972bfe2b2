package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeUpperCaseWithUnderscores(t *testing.T) {
	assert.Equal(t, "BAD_REQUEST", MakeUpperCaseWithUnderscores("Bad Request"))
	assert.Equal(t, "CONFLICT", MakeUpperCaseWithUnderscores(http.StatusText(http.StatusConflict)))
}

func TestNewConflictError(t *testing.T) {
	err := NewConflictError("changed meanwhile", true)

	assert.Equal(t, http.StatusConflict, err.Status)
	assert.Equal(t, "CONFLICT", err.Code)
	assert.True(t, err.Override)
	assert.EqualError(t, err, "changed meanwhile")
}

func TestNewBadRequestError_CustomCode(t *testing.T) {
	code := "PRODUCT_ALREADY_EXISTS"
	fields := []FieldError{{Field: "name", Error: "is required"}}

	err := NewBadRequestError("exists", true, &code, fields, nil)

	assert.Equal(t, code, err.Code)
	assert.Equal(t, fields, err.Errors)

	assert.Equal(t, "BAD_REQUEST", NewBadRequestError("bad", false, nil, nil, nil).Code)
}

func TestHTTPError_Is(t *testing.T) {
	wrapped := fmt.Errorf("loading order: %w", NewNotFoundError("Order not found", true, nil))

	assert.True(t, errors.Is(wrapped, &HTTPError{}))
	assert.False(t, errors.Is(errors.New("plain"), &HTTPError{}))
}

func TestHTTPError_WithMessage(t *testing.T) {
	base := NewNotFoundError("Resource not found", false, nil)
	custom := base.WithMessage("Customer not found")

	assert.Equal(t, "Customer not found", custom.Message)
	assert.Equal(t, "Resource not found", base.Message)
	assert.Equal(t, base.Status, custom.Status)
}

func TestValidationError(t *testing.T) {
	err := ValidationError(errors.New("quantity must be positive"))

	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "Validation failed: quantity must be positive", err.Message)
}

func TestNewTooManyRequestsError(t *testing.T) {
	err := NewTooManyRequestsError("slow down")

	assert.Equal(t, http.StatusTooManyRequests, err.Status)
	assert.Equal(t, "TOO_MANY_REQUESTS", err.Code)
	assert.False(t, err.Override)
}

func TestNewInternalServerError(t *testing.T) {
	err := NewInternalServerError()

	assert.Equal(t, "INTERNAL_SERVER_ERROR", err.Code)
	assert.Equal(t, "Internal Server Error", err.Message)
}

func TestNew(t *testing.T) {
	err := New(http.StatusMethodNotAllowed, "Method Not Allowed")

	assert.Equal(t, "METHOD_NOT_ALLOWED", err.Code)
	assert.Equal(t, http.StatusMethodNotAllowed, err.Status)
	assert.False(t, err.Override)
}
