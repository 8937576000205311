// Package validation checks decoded request forms with go-playground/validator.
// Field names in results are the `form` tag names the client sent.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// FieldError names one failing field and the rule it broke.
type FieldError struct {
	Field string
	Rule  string
}

// Problems lists the failing fields of v in declaration order, or nil.
type Problems []FieldError

// Check validates v, a struct with `validate` tags.
func Check(v any) Problems {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Problems{{Rule: err.Error()}}
	}
	out := make(Problems, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Rule: fe.Tag()})
	}
	return out
}

// Missing reports whether any required field was empty.
func (p Problems) Missing() bool {
	for _, fe := range p {
		if fe.Rule == "required" {
			return true
		}
	}
	return false
}

func (p Problems) Fields() []string {
	out := make([]string, len(p))
	for i, fe := range p {
		out[i] = fe.Field
	}
	return out
}
