// Package validation holds the validator shared by the acp and productfeed
// packages: JSON field names, a notblank rule and a lowercase currency rule.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// CurrencyPattern matches a lowercase ISO-4217 code.
var CurrencyPattern = regexp.MustCompile(`^[a-z]{3}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	if err := v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			value = fl.Field().String()
		}
		return CurrencyPattern.MatchString(value)
	}); err != nil {
		panic(err)
	}

	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}

	return v
}

// FieldError is the first rule violated by a struct.
type FieldError struct {
	// Field is the JSON path below the validated struct, e.g. items[0].quantity.
	Field   string
	Message string
}

// Struct runs the tag rules of v. It returns nil when every rule passes.
func Struct(v any) *FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return &FieldError{Message: err.Error()}
	}
	first := validationErrs[0]
	return &FieldError{
		Field:   jsonPath(first),
		Message: message(first),
	}
}

func jsonPath(fe validator.FieldError) string {
	path := fe.Namespace()
	if idx := strings.Index(path, "."); idx >= 0 {
		path = path[idx+1:]
	}
	if path == "" {
		return fe.Field()
	}
	return path
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "cannot be blank"
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("cannot exceed %s characters", fe.Param())
	case "alpha":
		return "must contain letters only"
	case "email":
		return "must be a valid email address"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "eq":
		return fmt.Sprintf("must equal %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "currency":
		return "must be a lowercase 3-letter ISO-4217 code"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}
