package services

import (
	"errors"
	"fmt"

	apperrors "github.com/SAP-F-2025/tutoring-service/internal/errors"
	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized access")
	ErrForbidden        = errors.New("forbidden - insufficient permissions")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Directory errors
	ErrUserNotFound    = errors.New("user not found")
	ErrTutorNotFound   = errors.New("tutor not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrEmailTaken      = errors.New("email already registered")

	// Request and review errors
	ErrRequestNotFound = errors.New("request not found")
	ErrReviewNotFound  = errors.New("review not found")

	// Identity errors
	ErrAuthenticationFailed  = errors.New("invalid credentials")
	ErrBotVerificationFailed = errors.New("bot verification failed")

	// Role errors
	ErrAdminRequired   = errors.New("admin access required")
	ErrTutorRequired   = errors.New("only tutors can perform this action")
	ErrStudentRequired = errors.New("only students can perform this action")
)

// Business rule names, surfaced as error codes.
const (
	RuleRequestTerminal         = "REQUEST_TERMINAL"
	RuleInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	RuleCompletionUnconfirmed   = "COMPLETION_NOT_CONFIRMED"
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

// StorageError is a failure of the underlying key-value store.
type StorageError = repositories.StorageError

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

type PermissionError struct {
	UserID     string `json:"user_id"`
	ResourceID string `json:"resource_id"`
	Resource   string `json:"resource"`
	Action     string `json:"action"`
	Reason     string `json:"reason"`
}

func (pe *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s - %s",
		pe.UserID, pe.Action, pe.Resource, pe.ResourceID, pe.Reason)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a single-field ValidationErrors value
func NewValidationError(field, message string, value interface{}) ValidationErrors {
	return ValidationErrors{*apperrors.NewValidationError(field, message, value)}
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// mapNotFound replaces a repository miss with the domain sentinel.
func mapNotFound(err error, sentinel error) error {
	if repositories.IsNotFoundError(err) {
		return sentinel
	}
	return err
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrTutorNotFound) ||
		errors.Is(err, ErrStudentNotFound) ||
		errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrReviewNotFound) ||
		repositories.IsNotFoundError(err)
}

// IsUnauthorized checks if error represents a failed authentication
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrAuthenticationFailed) ||
		errors.Is(err, ErrBotVerificationFailed)
}

// IsForbidden checks if error represents a role or ownership violation
func IsForbidden(err error) bool {
	if errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrAdminRequired) ||
		errors.Is(err, ErrTutorRequired) ||
		errors.Is(err, ErrStudentRequired) {
		return true
	}
	var pe *PermissionError
	return errors.As(err, &pe)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, repositories.ErrAlreadyExists)
}

// IsStorage checks if error came from the key-value store
func IsStorage(err error) bool {
	return repositories.IsStorageError(err)
}
