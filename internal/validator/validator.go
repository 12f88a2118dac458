package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is one rejected field with a human readable message
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Rule    string `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return ve[0].Message
	}
	messages := make([]string, len(ve))
	for i, e := range ve {
		messages[i] = e.Message
	}
	return strings.Join(messages, " ")
}

// Validator owns the shared go-playground instance
type Validator struct {
	business *BusinessValidator
}

func New() *Validator {
	return &Validator{business: NewBusinessValidator()}
}

func (v *Validator) GetBusinessValidator() *BusinessValidator {
	return v.business
}

// Validate runs struct tag validation only
func (v *Validator) Validate(s interface{}) error {
	if errs := v.business.Validate(s); len(errs) > 0 {
		return errs
	}
	return nil
}

func newValidate() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// report json names, not Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return validate
}

// ToValidationErrors converts go-playground errors into ValidationErrors
func ToValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ValidationErrors{{Field: "request", Message: err.Error(), Rule: "invalid"}}
	}

	out := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
			Rule:    fe.Tag(),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("You must provide a %s.", humanize(field))
	case "email":
		return "Must submit a valid email address."
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", humanize(field), fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", humanize(field), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s can't be longer than %s characters.", humanize(field), fe.Param())
		}
		return fmt.Sprintf("The %s must be at most %s.", humanize(field), fe.Param())
	case "eqfield":
		return "Passwords should match."
	case "password_strength":
		return PasswordPolicyMessage
	case "whole_number":
		return RatingMessage
	case "course_cost":
		return CostMessage
	default:
		return fmt.Sprintf("The %s is invalid.", humanize(field))
	}
}

func humanize(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
