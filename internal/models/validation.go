package models

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is the only error kind the feed reports to clients.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// single validator instance, it caches struct metadata
var validate = validator.New()

// messages for field/tag pairs; the first failing field wins
var messages = map[string]string{
	"Content.required": "Content is required",
}

// Validate checks v's validate tags and converts the first failure into a *ValidationError.
// Whitespace-only strings satisfy "required".
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	msg, ok := messages[fe.Field()+"."+fe.Tag()]
	if !ok {
		msg = fe.Field() + " is invalid"
	}
	return &ValidationError{Field: strings.ToLower(fe.Field()), Message: msg}
}
