package acp

import (
	"errors"

	"github.com/shopbridge/acp/internal/validation"
)

var currencyPattern = validation.CurrencyPattern

// validateStruct runs the tag rules of v and reports the first violation as a
// [ValidationError].
func validateStruct(v any) error {
	if fe := validation.Struct(v); fe != nil {
		return &ValidationError{Field: fe.Field, Message: fe.Message}
	}
	return nil
}

// withFieldPrefix scopes a nested ValidationError under its parent field.
func withFieldPrefix(prefix string, err error) error {
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		return err
	}
	field := prefix
	if vErr.Field != "" {
		field = prefix + "." + vErr.Field
	}
	return &ValidationError{Field: field, Message: vErr.Message}
}
