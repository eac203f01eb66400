package validator

import (
	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
)

type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

func ToValidationErrors(err error) ValidationErrors {
	return apperrors.ToValidationErrors(err)
}
