package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/survey-service/internal/errors"
)

// ErrorKind is the machine-checkable class of a service failure.
type ErrorKind string

const (
	KindInvalidInput  ErrorKind = "invalid_input"
	KindAllDuplicates ErrorKind = "all_duplicates"
	KindConflict      ErrorKind = "conflict"
	KindNotFound      ErrorKind = "not_found"
	KindUnauthorized  ErrorKind = "unauthorized"
	KindForbidden     ErrorKind = "forbidden"
	KindInternal      ErrorKind = "internal"
)

// ===== COMMON SERVICE ERRORS =====

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrAllDuplicates = errors.New("all questions are duplicates")
	ErrConflict      = errors.New("resource conflict")
	ErrNotFound      = errors.New("resource not found")
	ErrUnauthorized  = errors.New("unauthorized access")
	ErrForbidden     = errors.New("forbidden - insufficient permissions")
	ErrInternal      = errors.New("internal server error")
)

var kindSentinels = map[ErrorKind]error{
	KindInvalidInput:  ErrInvalidInput,
	KindAllDuplicates: ErrAllDuplicates,
	KindConflict:      ErrConflict,
	KindNotFound:      ErrNotFound,
	KindUnauthorized:  ErrUnauthorized,
	KindForbidden:     ErrForbidden,
	KindInternal:      ErrInternal,
}

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ServiceError carries a kind, a human-readable message and the original cause.
type ServiceError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *ServiceError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// ===== ERROR HELPERS =====

func newServiceError(kind ErrorKind, message string, cause error) *ServiceError {
	return &ServiceError{Kind: kind, Message: message, Err: cause}
}

// invalidInput wraps a validation failure, keeping its message as the error message.
func invalidInput(cause error) *ServiceError {
	var ve *ValidationError
	if errors.As(cause, &ve) {
		return newServiceError(KindInvalidInput, ve.Message, cause)
	}
	return newServiceError(KindInvalidInput, cause.Error(), cause)
}

// invalidInputAt is invalidInput prefixed with the position of the offending item.
func invalidInputAt(index int, cause error) *ServiceError {
	se := invalidInput(cause)
	se.Message = fmt.Sprintf("item %d: %s", index, se.Message)
	return se
}

func invalidInputf(format string, args ...interface{}) *ServiceError {
	return newServiceError(KindInvalidInput, fmt.Sprintf(format, args...), nil)
}

func notFoundf(format string, args ...interface{}) *ServiceError {
	return newServiceError(KindNotFound, fmt.Sprintf(format, args...), nil)
}

func conflictf(format string, args ...interface{}) *ServiceError {
	return newServiceError(KindConflict, fmt.Sprintf(format, args...), nil)
}

func internal(message string, cause error) *ServiceError {
	return newServiceError(KindInternal, message, cause)
}

// KindOf reports the kind of err, or KindInternal for foreign errors.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return KindInvalidInput
	}
	return KindInternal
}

// MessageOf returns the user-facing message for err.
func MessageOf(err error) string {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Message
	}
	return err.Error()
}

// IsInvalidInput checks if error represents a validation failure
func IsInvalidInput(err error) bool {
	if errors.Is(err, ErrInvalidInput) {
		return true
	}
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict checks if error represents a resource conflict, including an all-duplicate add
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrAllDuplicates)
}

// IsUnauthorized checks if error represents an "unauthorized" condition
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// ValidationRule extracts the broken rule name from an invalid-input error.
func ValidationRule(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Rule
	}
	var ves ValidationErrors
	if errors.As(err, &ves) {
		for _, rule := range ves.Rules() {
			if rule != "" {
				return rule
			}
		}
	}
	return ""
}
