package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"
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

// operationStatus maps an error onto the status label and level it is logged with.
func operationStatus(err error) (string, slog.Level) {
	if err == nil {
		return "success", slog.LevelInfo
	}

	switch KindOf(err) {
	case KindInvalidInput:
		return "validation_error", slog.LevelWarn
	case KindAllDuplicates, KindConflict:
		return "conflict", slog.LevelWarn
	case KindNotFound:
		return "not_found", slog.LevelInfo
	case KindUnauthorized, KindForbidden:
		return "unauthorized", slog.LevelWarn
	}
	return "error", slog.LevelError
}

func (l *ServiceLogger) LogOperation(ctx context.Context, operation, resourceType string, count int, duration time.Duration, err error) {
	status, level := operationStatus(err)

	attrs := []slog.Attr{
		slog.String("operation", operation),
		slog.String("resource_type", resourceType),
		slog.Int("count", count),
		slog.String("status", status),
		slog.Duration("duration", duration),
	}

	if actor, ok := ActorFromContext(ctx); ok {
		attrs = append(attrs, slog.Uint64("admin_id", uint64(actor.ID)))
	}
	if requestID := RequestIDFromContext(ctx); requestID != "" {
		attrs = append(attrs, slog.String("request_id", requestID))
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		if rule := ValidationRule(err); rule != "" {
			attrs = append(attrs, slog.String("rule", rule))
		}

		// Caller information only for unexpected failures
		if level == slog.LevelError {
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
	}

	l.logger.LogAttrs(ctx, level, fmt.Sprintf("%s operation %s", operation, status), attrs...)
}

func (l *ServiceLogger) Debug(ctx context.Context, msg string, args ...any) {
	if l.config.EnableDebug {
		l.logger.DebugContext(ctx, msg, args...)
	}
}

func (l *ServiceLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

// ===== MIDDLEWARE AND HELPERS =====

// ContextualLogger wraps operations with automatic logging
type ContextualLogger struct {
	logger       *ServiceLogger
	operation    string
	resourceType string
	startTime    time.Time
	ctx          context.Context
}

func (l *ServiceLogger) WithOperation(ctx context.Context, operation, resourceType string) *ContextualLogger {
	return &ContextualLogger{
		logger:       l,
		operation:    operation,
		resourceType: resourceType,
		startTime:    time.Now(),
		ctx:          ctx,
	}
}

func (cl *ContextualLogger) LogResult(count int, err error) {
	cl.logger.LogOperation(cl.ctx, cl.operation, cl.resourceType, count, time.Since(cl.startTime), err)
}
