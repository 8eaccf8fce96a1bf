package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one rejected request field
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// CheckoutValidationError lists every field that blocks an order
type CheckoutValidationError struct {
	Fields []FieldError
}

func (e *CheckoutValidationError) Error() string {
	return "invalid booking request: " + strings.Join(e.FieldNames(), ", ")
}

// FieldNames returns the JSON names of the rejected fields
func (e *CheckoutValidationError) FieldNames() []string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return names
}

func (e *CheckoutValidationError) add(field, tag, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Tag: tag, Message: message})
}

func (e *CheckoutValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// newRequestValidator reports fields by their JSON names
func newRequestValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

// validateStruct converts validator failures into a CheckoutValidationError
func validateStruct(validate *validator.Validate, s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("failed to validate request: %w", err)
	}

	result := &CheckoutValidationError{}
	for _, fe := range validationErrs {
		result.add(fe.Field(), fe.Tag(), fieldMessage(fe))
	}
	return result
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}
