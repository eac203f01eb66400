package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError names the field and rule a question or admin payload broke.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	switch len(ve) {
	case 0:
		return "validation failed"
	case 1:
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// Rules lists the broken rule of every entry, in order.
func (ve ValidationErrors) Rules() []string {
	rules := make([]string, 0, len(ve))
	for _, e := range ve {
		rules = append(rules, e.Rule)
	}
	return rules
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return NewValidationErrorWithRule(field, message, "", value)
}

func NewValidationErrorWithRule(field, message, rule string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
		Rule:    rule,
	}
}

// ToValidationErrors converts the tag failures reported by go-playground/validator.
// Anything else converts to an empty list.
func ToValidationErrors(err error) ValidationErrors {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return nil
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

var enumMessages = map[string]string{
	"question_type":     "must be a valid question type (MCQ, Input)",
	"question_category": "must be a valid question category (Vocabulary, Literature, Grammar, Culture, History, Math)",
	"question_level":    "must be Beginner, Intermediate, or Advanced",
	"admin_role":        "must be ADMIN or USER",
	"not_blank":         "must not be blank",
	"required":          "is required",
	"uuid":              "must be a valid UUID",
	"dive":              "contains an invalid entry",
}

func messageFor(fe validator.FieldError) string {
	if msg, ok := enumMessages[fe.Tag()]; ok {
		return msg
	}

	switch fe.Tag() {
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "len":
		return fmt.Sprintf("must have exactly %s items", fe.Param())
	case "oneof":
		return "must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	}
	return fmt.Sprintf("validation failed for rule '%s'", fe.Tag())
}
