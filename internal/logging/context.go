package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// FromContext extracts the logger from context
// If no logger is found, returns a disabled logger (no-op)
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// WithComponent creates a child logger with a component field
func WithComponent(ctx context.Context, component string) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Str("component", component).Logger()
	return WithContext(ctx, childLogger)
}

// WithWindowID creates a child logger with a window_id field
func WithWindowID(ctx context.Context, windowID int64) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Int64("window_id", windowID).Logger()
	return WithContext(ctx, childLogger)
}

// WithTabID creates a child logger with a tab_id field
func WithTabID(ctx context.Context, tabID int64) context.Context {
	logger := FromContext(ctx)
	childLogger := logger.With().Int64("tab_id", tabID).Logger()
	return WithContext(ctx, childLogger)
}

// TruncateURL shortens a URL for log output.
func TruncateURL(url string, max int) string {
	if max <= 3 || len(url) <= max {
		return url
	}
	return url[:max-3] + "..."
}
