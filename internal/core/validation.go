package core

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct runs the struct's validate tags and turns the first failure
// into a validation error.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return describe(verrs[0])
	}
	return invalidf("%v", err)
}

func describe(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return invalidf("%s is required", fe.Field())
	case "email":
		return invalidf("a valid email is required")
	case "min":
		return invalidf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return invalidf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return invalidf("%s must be one of: %s", fe.Field(), fe.Param())
	}
	return invalidf("%s is invalid", fe.Field())
}
