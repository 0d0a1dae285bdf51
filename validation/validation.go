// Package validation validates input structs with go-playground/validator.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pakkasys/fluidquery/api"
)

const (
	errorFmt = "Validation failed on rule %q"
)

// InvalidInputError is returned for input that cannot be parsed or fails
// validation.
var InvalidInputError = api.NewAPIError("INVALID_INPUT")

// FieldError represents a field-level validation error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrorData contains a list of field-level validation errors.
type ValidationErrorData struct {
	Errors []FieldError `json:"errors"`
}

// Validation is a validator using the validator/v10 package.
type Validation struct {
	validate *validator.Validate
}

// NewValidation creates a new Validation instance. Field errors are reported
// with the JSON names of the fields.
func NewValidation() *Validation {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return &Validation{
		validate: validate,
	}
}

// Validate validates an object and returns a slice of FieldError if fails.
func (vs *Validation) Validate(obj any) []FieldError {
	err := vs.validate.Struct(obj)
	if err != nil {
		return vs.parseValidationErrors(err)
	}
	return nil
}

// Error returns an InvalidInputError carrying the field errors, or nil.
func Error(fieldErrors []FieldError) error {
	if len(fieldErrors) == 0 {
		return nil
	}
	return InvalidInputError.WithData(ValidationErrorData{
		Errors: fieldErrors,
	})
}

// parseValidationErrors parses validation errors into a slice of FieldError.
func (vs *Validation) parseValidationErrors(err error) []FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []FieldError{
			{
				Field:   "unknown",
				Message: err.Error(),
			},
		}
	}

	fieldErrors := make([]FieldError, 0, len(validationErrors))
	for _, valErr := range validationErrors {
		fieldErrors = append(fieldErrors, FieldError{
			Field:   valErr.Field(),
			Message: fmt.Sprintf(errorFmt, valErr.Tag()),
		})
	}

	return fieldErrors
}
