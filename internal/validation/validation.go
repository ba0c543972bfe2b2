package validation

import "github.com/deppfellow/contosopizza/internal/model"

// validate is shared by every request type; it knows the entity rules such
// as "price".
var validate = model.NewValidator()

// Struct validates the `validate` tags of a request payload.
func Struct(payload any) error {
	return validate.Struct(payload)
}
