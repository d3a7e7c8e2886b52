package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// requestIDKey is the context key the HTTP layer stores the request id under.
type requestIDKey struct{}

// WithRequestID attaches a request id that operation logs pick up.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
}

func NewServiceLogger(logger *slog.Logger, service string) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", service),
	}
}

// ===== OPERATION LOGGING =====

func (l *ServiceLogger) LogOperation(ctx context.Context, operation, userID, resourceID, resourceType string, duration time.Duration, err error) {
	level := slog.LevelInfo
	status := "success"

	if err != nil {
		level = slog.LevelError
		status = "error"

		// Expected failures are not server errors
		switch {
		case IsValidation(err) || IsBusinessRule(err):
			level = slog.LevelWarn
			status = "validation_error"
		case IsUnauthorized(err) || IsForbidden(err):
			level = slog.LevelWarn
			status = "unauthorized"
		case IsNotFound(err):
			status = "not_found"
			level = slog.LevelInfo
		case IsConflict(err):
			level = slog.LevelWarn
			status = "conflict"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.String("resource_id", resourceID),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		var validationErr ValidationErrors
		var businessErr *BusinessRuleError
		var permErr *PermissionError
		switch {
		case errors.As(err, &validationErr):
			attrs = append(attrs, slog.Int("validation_errors_count", len(validationErr)))
		case errors.As(err, &businessErr):
			attrs = append(attrs, slog.String("business_rule", businessErr.Rule))
		case errors.As(err, &permErr):
			attrs = append(attrs, slog.String("permission_action", permErr.Action))
		}
	}

	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		attrs = append(attrs, slog.String("request_id", requestID))
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

// ===== AUDIT LOGGING =====

type AuditEventType string

const (
	AuditEventCreate AuditEventType = "create"
	AuditEventUpdate AuditEventType = "update"
	AuditEventDelete AuditEventType = "delete"
)

type AuditEvent struct {
	Type         AuditEventType
	UserID       string
	ResourceID   string
	ResourceType string
	Action       string
	OldValue     interface{}
	NewValue     interface{}
	Timestamp    time.Time
}

func (l *ServiceLogger) LogAuditEvent(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("event_type", string(event.Type)),
		slog.String("user_id", event.UserID),
		slog.String("resource_id", event.ResourceID),
		slog.String("resource_type", event.ResourceType),
		slog.String("action", event.Action),
		slog.Time("timestamp", event.Timestamp),
	}
	if event.OldValue != nil {
		attrs = append(attrs, slog.Any("old_value", event.OldValue))
	}
	if event.NewValue != nil {
		attrs = append(attrs, slog.Any("new_value", event.NewValue))
	}

	l.logger.LogAttrs(ctx, slog.LevelInfo, fmt.Sprintf("Audit: %s %s", event.Action, event.ResourceType), attrs...)
}

// ===== MIDDLEWARE AND HELPERS =====

// ContextualLogger times one operation and logs its outcome
type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	userID    string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation, userID string) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		userID:    userID,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (cl *ContextualLogger) LogResult(resourceID, resourceType string, err error) {
	cl.logger.LogOperation(cl.ctx, cl.operation, cl.userID, resourceID, resourceType, time.Since(cl.startTime), err)
}

func (cl *ContextualLogger) LogAudit(eventType AuditEventType, resourceID, resourceType string, oldValue, newValue interface{}) {
	cl.logger.LogAuditEvent(cl.ctx, AuditEvent{
		Type:         eventType,
		UserID:       cl.userID,
		ResourceID:   resourceID,
		ResourceType: resourceType,
		Action:       cl.operation,
		OldValue:     oldValue,
		NewValue:     newValue,
		Timestamp:    time.Now(),
	})
}
