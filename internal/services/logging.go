package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/Aleshka-08-12-00/navuchai-back-sub000/internal/models"
)

// LogLevel represents different log levels for service operations
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// ServiceLogger provides structured logging for service layer operations
type ServiceLogger struct {
	logger *slog.Logger
	config LogConfig
}

type LogConfig struct {
	Service     string
	Component   string
	EnableDebug bool
}

func NewServiceLogger(logger *slog.Logger, config LogConfig) *ServiceLogger {
	return &ServiceLogger{
		logger: logger.With("service", config.Service, "component", config.Component),
		config: config,
	}
}

// ===== OPERATION LOGGING =====

func (l *ServiceLogger) LogOperation(ctx context.Context, operation string, userID string, resourceID uint, resourceType string, duration time.Duration, err error) {
	logLevel := LogLevelInfo
	status := "success"

	if err != nil {
		logLevel = LogLevelError
		status = "error"

		// Adjust log level based on error type
		if IsValidation(err) || IsBusinessRule(err) || IsBadRequest(err) {
			logLevel = LogLevelWarn
			status = "rejected"
		} else if IsConflict(err) {
			logLevel = LogLevelWarn
			status = "conflict"
		} else if IsNotFound(err) {
			logLevel = LogLevelInfo
			status = "not_found"
		}
	}

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.Uint64("resource_id", uint64(resourceID)),
		slog.String("resource_type", resourceType),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))

		if validationErr, ok := err.(ValidationErrors); ok {
			attrs = append(attrs, slog.Int("validation_errors_count", len(validationErr)))
		} else if businessErr, ok := err.(*BusinessRuleError); ok {
			attrs = append(attrs, slog.String("business_rule", businessErr.Rule))
		}
	}

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}

	// Add caller information for unexpected errors
	if logLevel == LogLevelError {
		if pc, file, line, ok := runtime.Caller(2); ok {
			if fn := runtime.FuncForPC(pc); fn != nil {
				attrs = append(attrs,
					slog.String("caller_func", fn.Name()),
					slog.String("caller_file", file),
					slog.Int("caller_line", line),
				)
			}
		}
	}

	message := fmt.Sprintf("%s operation %s", operation, status)

	switch logLevel {
	case LogLevelDebug:
		if l.config.EnableDebug {
			l.logger.LogAttrs(ctx, slog.LevelDebug, message, attrs...)
		}
	case LogLevelInfo:
		l.logger.LogAttrs(ctx, slog.LevelInfo, message, attrs...)
	case LogLevelWarn:
		l.logger.LogAttrs(ctx, slog.LevelWarn, message, attrs...)
	case LogLevelError:
		l.logger.LogAttrs(ctx, slog.LevelError, message, attrs...)
	}
}

func (l *ServiceLogger) LogValidationError(ctx context.Context, operation string, userID string, validationErrors ValidationErrors) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.Int("error_count", len(validationErrors)),
	}

	for i, err := range validationErrors {
		if i < 5 { // Limit to first 5 errors to avoid log spam
			attrs = append(attrs, slog.Group(fmt.Sprintf("error_%d", i+1),
				slog.String("field", err.Field),
				slog.String("message", err.Message),
				slog.Any("value", err.Value),
			))
		}
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Validation failed", attrs...)
}

func (l *ServiceLogger) LogBusinessRuleViolation(ctx context.Context, operation string, userID string, rule *BusinessRuleError) {
	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("user_id", userID),
		slog.String("rule", rule.Rule),
		slog.String("message", rule.Message),
	}

	for key, value := range rule.Context {
		attrs = append(attrs, slog.Any(fmt.Sprintf("context_%s", key), value))
	}

	l.logger.LogAttrs(ctx, slog.LevelWarn, "Business rule violation", attrs...)
}

// ===== GRADING LOGGING =====

// LogGradingOutcome records the terminal state of a graded submission.
func (l *ServiceLogger) LogGradingOutcome(ctx context.Context, userID string, testID uint, resultID uint, result *models.AggregateResult) {
	attrs := []slog.Attr{
		slog.String("user_id", userID),
		slog.Uint64("test_id", uint64(testID)),
		slog.Uint64("result_id", uint64(resultID)),
		slog.Int("total_score", result.TotalScore),
		slog.Int("max_possible_score", result.MaxPossibleScore),
		slog.Float64("percentage", result.Percentage),
		slog.Int("answers_checked", len(result.CheckedAnswers)),
		slog.Int("time_seconds", result.TotalTimeSeconds),
	}

	if result.IsPending() {
		attrs = append(attrs, slog.Bool("manual_check_required", true))
		l.logger.LogAttrs(ctx, slog.LevelInfo, "Submission awaiting manual review", attrs...)
		return
	}

	if result.IsPassed != nil {
		attrs = append(attrs, slog.Bool("passed", *result.IsPassed))
	}
	if result.Grade != nil {
		attrs = append(attrs, slog.String("grade", *result.Grade))
	}
	l.logger.LogAttrs(ctx, slog.LevelInfo, "Submission graded", attrs...)
}

// ===== AUDIT LOGGING =====

func (l *ServiceLogger) LogAuditEvent(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("event_type", string(event.Type)),
		slog.String("user_id", event.UserID),
		slog.Uint64("resource_id", uint64(event.ResourceID)),
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

// ===== STRUCTURED LOGGING TYPES =====

type contextKey string

// RequestIDKey is the context key the HTTP layer stores the request id under.
const RequestIDKey contextKey = "request_id"

type AuditEventType string

const (
	AuditEventCreate AuditEventType = "create"
	AuditEventUpdate AuditEventType = "update"
)

type AuditEvent struct {
	Type         AuditEventType `json:"type"`
	UserID       string         `json:"user_id"`
	ResourceID   uint           `json:"resource_id"`
	ResourceType string         `json:"resource_type"`
	Action       string         `json:"action"`
	OldValue     interface{}    `json:"old_value,omitempty"`
	NewValue     interface{}    `json:"new_value,omitempty"`
	Timestamp    time.Time      `json:"timestamp"`
}

// ===== MIDDLEWARE AND HELPERS =====

// ContextualLogger wraps operations with automatic logging
type ContextualLogger struct {
	logger    *ServiceLogger
	operation string
	userID    string
	startTime time.Time
	ctx       context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation string, userID string) *ContextualLogger {
	return &ContextualLogger{
		logger:    l,
		operation: operation,
		userID:    userID,
		startTime: time.Now(),
		ctx:       ctx,
	}
}

func (cl *ContextualLogger) LogResult(resourceID uint, resourceType string, err error) {
	duration := time.Since(cl.startTime)
	cl.logger.LogOperation(cl.ctx, cl.operation, cl.userID, resourceID, resourceType, duration, err)

	if err != nil {
		if validationErrors, ok := err.(ValidationErrors); ok {
			cl.logger.LogValidationError(cl.ctx, cl.operation, cl.userID, validationErrors)
		} else if businessErr, ok := err.(*BusinessRuleError); ok {
			cl.logger.LogBusinessRuleViolation(cl.ctx, cl.operation, cl.userID, businessErr)
		}
	}
}

func (cl *ContextualLogger) LogAudit(eventType AuditEventType, resourceID uint, resourceType string, oldValue, newValue interface{}) {
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
