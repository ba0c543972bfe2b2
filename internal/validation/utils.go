// Package validation binds request payloads and turns validator failures
// into field errors the client can show next to its inputs.
package validation

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/deppfellow/contosopizza/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// Validatable is a request payload that checks itself, usually through
// Struct.
type Validatable interface {
	Validate() error
}

// CustomValidationError reports a rule struct tags cannot express.
type CustomValidationError struct {
	Field   string
	Message string
}

type CustomValidationErrors []CustomValidationError

func (c CustomValidationErrors) Error() string {
	return "Validation failed"
}

// BindAndValidate binds path, query and body values into payload, which
// must be a pointer, and validates it. Failures are 400 *errs.HTTPError.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return errs.NewBadRequestError(bindErrorMessage(err), false, nil, nil, nil)
	}

	if err := payload.Validate(); err != nil {
		msg, fieldErrors := extractValidationError(err)
		return errs.NewBadRequestError(msg, true, nil, fieldErrors, nil)
	}

	return nil
}

func bindErrorMessage(err error) string {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		if msg, ok := httpErr.Message.(string); ok {
			return msg
		}
	}
	return "Invalid request payload"
}

func extractValidationError(err error) (string, []errs.FieldError) {
	var (
		validationErrors validator.ValidationErrors
		customErrors     CustomValidationErrors
	)

	switch {
	case errors.As(err, &validationErrors):
		return "Validation failed", FieldErrors(validationErrors)

	case errors.As(err, &customErrors):
		fieldErrors := make([]errs.FieldError, len(customErrors))
		for i, e := range customErrors {
			fieldErrors[i] = errs.FieldError{Field: e.Field, Error: e.Message}
		}
		return "Validation failed", fieldErrors
	}

	return err.Error(), []errs.FieldError{}
}

// sized phrases length rules for strings and value rules for numbers.
func sized(fe validator.FieldError, format string) string {
	if fe.Kind() == reflect.String {
		return fmt.Sprintf(format+" characters", fe.Param())
	}
	return fmt.Sprintf(format, fe.Param())
}

var tagMessages = map[string]func(fe validator.FieldError) string{
	"required": func(validator.FieldError) string { return "is required" },
	"email":    func(validator.FieldError) string { return "must be a valid email address" },
	"price":    func(validator.FieldError) string { return "must be between 0 and 9999.99 with at most two decimals" },
	"min": func(fe validator.FieldError) string {
		if fe.Kind() == reflect.Slice {
			if fe.Param() == "1" {
				return "must not be empty"
			}
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return sized(fe, "must be at least %s")
	},
	"max":   func(fe validator.FieldError) string { return sized(fe, "must not exceed %s") },
	"gt":    func(fe validator.FieldError) string { return fmt.Sprintf("must be greater than %s", fe.Param()) },
	"gte":   func(fe validator.FieldError) string { return fmt.Sprintf("must be at least %s", fe.Param()) },
	"lte":   func(fe validator.FieldError) string { return fmt.Sprintf("must be at most %s", fe.Param()) },
	"oneof": func(fe validator.FieldError) string { return fmt.Sprintf("must be one of: %s", fe.Param()) },
}

// FieldErrors converts validator failures into field errors. Field names are
// json names, see model.NewValidator.
func FieldErrors(validationErrors validator.ValidationErrors) []errs.FieldError {
	fieldErrors := make([]errs.FieldError, 0, len(validationErrors))

	for _, fe := range validationErrors {
		var msg string
		if format, ok := tagMessages[fe.Tag()]; ok {
			msg = format(fe)
		} else if fe.Param() != "" {
			msg = fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		} else {
			msg = fmt.Sprintf("failed %s", fe.Tag())
		}

		fieldErrors = append(fieldErrors, errs.FieldError{
			Field: fe.Field(),
			Error: msg,
		})
	}

	return fieldErrors
}
