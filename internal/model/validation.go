package model

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MaxPrice is the largest price a NUMERIC(6,2) column holds.
var MaxPrice = decimal.RequireFromString("9999.99")

// RegisterValidations teaches v the entity specific rules. Decimals are
// validated through their string form; the "price" tag accepts values
// between 0 and MaxPrice with at most two decimals.
func RegisterValidations(v *validator.Validate) error {
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	return v.RegisterValidation("price", validatePrice)
}

// NewValidator returns a validator that knows the entity rules and reports
// fields by their json name.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	return v
}

// jsonName names a field by its json key, or by its path or query
// parameter for fields that never appear in a body.
func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name != "" && name != "-" {
		return name
	}
	for _, tag := range []string{"param", "query"} {
		if p := field.Tag.Get(tag); p != "" {
			return p
		}
	}
	if name == "-" {
		return ""
	}
	return field.Name
}

func validatePrice(fl validator.FieldLevel) bool {
	price, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return !price.IsNegative() && price.LessThanOrEqual(MaxPrice) && price.Equal(price.Round(2))
}
