package validator

import (
	"reflect"
	"strings"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Validator is the main validator instance that combines all validation types
type Validator struct {
	structValidator   *validator.Validate
	questionValidator *QuestionValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:   structValidator,
		questionValidator: NewQuestionValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate validates struct tags and converts failures to ValidationErrors
func (v *Validator) Validate(s interface{}) error {
	if err := v.ValidateStruct(s); err != nil {
		if errs := ToValidationErrors(err); len(errs) > 0 {
			return errs
		}
		return err
	}
	return nil
}

// Question returns the question validator
func (v *Validator) Question() *QuestionValidator {
	return v.questionValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("question_category", validateQuestionCategory)
	validate.RegisterValidation("question_level", validateQuestionLevel)
	validate.RegisterValidation("admin_role", validateAdminRole)
	validate.RegisterValidation("not_blank", validateNotBlank)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions

func validateQuestionType(fl validator.FieldLevel) bool {
	_, err := models.ParseQuestionType(fl.Field().String())
	return err == nil
}

func validateQuestionCategory(fl validator.FieldLevel) bool {
	_, err := models.ParseQuestionCategory(fl.Field().String())
	return err == nil
}

func validateQuestionLevel(fl validator.FieldLevel) bool {
	_, err := models.ParseQuestionLevel(fl.Field().String())
	return err == nil
}

func validateAdminRole(fl validator.FieldLevel) bool {
	return models.AdminRole(fl.Field().String()).Valid()
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
