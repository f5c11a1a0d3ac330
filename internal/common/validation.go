package common

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidationRule checks one value and reports nil when it passes.
type ValidationRule func(field string, value any) *ValidationError

// ValidationError is a single failed check on a named input field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// Validator accumulates failures across the fields of one request so the
// caller sees every problem at once instead of the first.
type Validator struct {
	errors []ValidationError
}

func NewValidator() *Validator {
	return &Validator{errors: make([]ValidationError, 0)}
}

// Field runs rules against a named value, collecting every failure.
func (v *Validator) Field(field string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if ve := rule(field, value); ve != nil {
			v.errors = append(v.errors, *ve)
		}
	}
	return v
}

func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// ErrorMessage joins the collected failures into one line.
func (v *Validator) ErrorMessage() string {
	if len(v.errors) == 0 {
		return ""
	}
	parts := make([]string, 0, len(v.errors))
	for _, ve := range v.errors {
		parts = append(parts, ve.Error())
	}
	return strings.Join(parts, "; ")
}

// Err returns the collected failures as a single AppError, nil when clean.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return NewAppError("VALIDATION_ERROR", v.ErrorMessage(), ErrInvalidInput)
}

// Required rejects nil and blank strings. Values of other types pass as
// long as they are present.
func Required(field string, value any) *ValidationError {
	fail := &ValidationError{Field: field, Value: value, Message: "is required"}
	switch v := value.(type) {
	case nil:
		return fail
	case string:
		if strings.TrimSpace(v) == "" {
			return fail
		}
	case *string:
		if v == nil || strings.TrimSpace(*v) == "" {
			return fail
		}
	}
	return nil
}

// MaxLength rejects strings longer than max runes. Non-strings pass.
func MaxLength(field string, value any, max int) *ValidationError {
	str, ok := asString(value)
	if !ok {
		return nil
	}
	if utf8.RuneCountInString(str) > max {
		return &ValidationError{
			Field:   field,
			Value:   value,
			Message: fmt.Sprintf("must be at most %d characters", max),
		}
	}
	return nil
}

// UUID rejects values that do not parse as a canonical UUID string.
func UUID(field string, value any) *ValidationError {
	str, ok := value.(string)
	if !ok {
		return &ValidationError{Field: field, Value: value, Message: "must be a string"}
	}
	if _, err := uuid.Parse(str); err != nil {
		return &ValidationError{Field: field, Value: value, Message: "must be a valid UUID"}
	}
	return nil
}

func asString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v != nil {
			return *v, true
		}
	}
	return "", false
}
