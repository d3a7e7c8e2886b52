package services

import (
	"fmt"
	"testing"

	"github.com/SAP-F-2025/tutoring-service/internal/repositories"
	"github.com/stretchr/testify/assert"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"wrapped not found", fmt.Errorf("failed to load: %w", ErrRequestNotFound), IsNotFound},
		{"repository miss", repositories.ErrNotFound, IsNotFound},
		{"admin required", ErrAdminRequired, IsForbidden},
		{"permission", NewPermissionError("u", "r", "request", "update", "nope"), IsForbidden},
		{"validation", NewValidationError("rating", "out of range", 9), IsValidation},
		{"business rule", NewBusinessRuleError(RuleRequestTerminal, "done", nil), IsBusinessRule},
		{"email taken", ErrEmailTaken, IsConflict},
		{"bot", fmt.Errorf("%w: timeout", ErrBotVerificationFailed), IsUnauthorized},
		{"storage", &StorageError{Op: "get", Key: "user:1", Err: fmt.Errorf("conn reset")}, IsStorage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
		})
	}

	assert.False(t, IsNotFound(ErrAdminRequired))
	assert.False(t, IsForbidden(ErrUserNotFound))
	assert.False(t, IsBusinessRule(ErrConflict))
}

func TestBusinessRuleError_Message(t *testing.T) {
	err := NewBusinessRuleError(RuleInvalidStatusTransition, "cannot move request from pending to cancelled", nil)
	assert.Equal(t, "business rule violation (INVALID_STATUS_TRANSITION): cannot move request from pending to cancelled", err.Error())
}
