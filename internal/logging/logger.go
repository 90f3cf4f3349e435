package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/generals-server/core/internal/contextkey"
	"github.com/google/uuid"
)

// Logger wraps slog with request/user-scoped child loggers.
type Logger struct {
	slog *slog.Logger
}

// NewLogger creates a new structured JSON logger at the given level
// ("debug", "info", "warn", "error"; defaults to info on a bad value).
func NewLogger(logLevel string) *Logger {
	level := new(slog.Level)
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		*level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	})

	return &Logger{slog: slog.New(handler)}
}

// WithContext returns a child logger enriched with the request id (set by
// middleware.RequestIDMiddleware) and the session user id, when present.
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	handler := l.slog.Handler()

	if reqID, ok := ctx.Value(contextkey.ContextKeyRequestID).(uuid.UUID); ok {
		handler = handler.WithAttrs([]slog.Attr{slog.String("request_id", reqID.String())})
	}
	if userID, ok := ctx.Value(contextkey.ContextKeyUserID).(string); ok && userID != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("user_id", userID)})
	}

	return slog.New(handler)
}

func (l *Logger) Info(ctx context.Context, msg string, args ...interface{}) {
	l.WithContext(ctx).Info(fmt.Sprintf(msg, args...))
}

func (l *Logger) Error(ctx context.Context, msg string, args ...interface{}) {
	l.WithContext(ctx).Error(fmt.Sprintf(msg, args...))
}

func (l *Logger) Debug(ctx context.Context, msg string, args ...interface{}) {
	l.WithContext(ctx).Debug(fmt.Sprintf(msg, args...))
}

func (l *Logger) Warn(ctx context.Context, msg string, args ...interface{}) {
	l.WithContext(ctx).Warn(fmt.Sprintf(msg, args...))
}

// Fatal logs at error level and exits; reserved for unrecoverable startup errors.
func (l *Logger) Fatal(ctx context.Context, msg string, args ...interface{}) {
	l.WithContext(ctx).Error(fmt.Sprintf(msg, args...))
	os.Exit(1)
}
