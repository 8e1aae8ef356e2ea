// internal/form/form.go
//
// Admin form validation.
//
// Context
//   Admin handlers bind POST bodies onto small typed structs and validate
//   them with go-playground/validator.  This file turns validator's error
//   vocabulary into field-level messages templates can render next to the
//   offending input, and keeps user errors distinguishable from system
//   failures via IsValidationError.
//
// Workflow
//   •  Handlers populate a struct from r.PostFormValue.
//   •  Validate(s) checks the struct's `validate` tags.
//   •  On failure the returned error wraps []ErrorField; templates highlight
//      exact issues.  On success business logic trusts the struct.
//
// Style
//   Comments are full sentences, two space spacing, and Oxford commas.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is package-wide; validator.Validate caches struct metadata and is
// safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorField describes a single validation failure so the template can render
// a field-level message.
type ErrorField struct {
	Name    string // field name
	Message string // user-facing message
}

// validationError wraps []ErrorField and satisfies the error interface.
type validationError struct{ Fields []ErrorField }

func (ve validationError) Error() string { return "form validation failed" }

// Validate checks s against its `validate` tags.  A nil return means the
// struct is clean.  Otherwise the error carries per-field messages; check
// with IsValidationError and unpack with Errors.
func Validate(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err // InvalidValidationError or similar system failure
	}

	fields := make([]ErrorField, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, ErrorField{
			Name:    strings.ToLower(fe.Field()),
			Message: message(fe),
		})
	}
	return validationError{Fields: fields}
}

// IsValidationError reports whether err came from failed Validate.
func IsValidationError(err error) bool {
	var ve validationError
	return errors.As(err, &ve)
}

// Errors unpacks the field errors from a validation error, or nil.
func Errors(err error) []ErrorField {
	var ve validationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return nil
}

// message maps the most common tags to Japanese-audience friendly English;
// anything exotic falls back to the tag name.
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return "Too long (max " + fe.Param() + " characters)."
	case "min":
		return "Too short (min " + fe.Param() + " characters)."
	case "oneof":
		return "Choose one of: " + fe.Param() + "."
	default:
		return "Invalid value (" + fe.Tag() + ")."
	}
}
