// Package logctx passes request-scoped zerolog loggers through contexts,
// so sub-operations can log with fields like bucket or profile attached.
package logctx

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

type loggerKey struct{}

var (
	fallback     zerolog.Logger
	fallbackOnce sync.Once
)

// fallbackLogger is used when a context carries no logger.
func fallbackLogger() zerolog.Logger {
	fallbackOnce.Do(func() {
		fallback = zerolog.New(os.Stderr).With().Timestamp().Logger()
	})
	return fallback
}

// WithLogger returns a context carrying the logger, retrievable with
// FromContext.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the context's logger. A nil context or one without
// a logger yields a stderr JSON logger, never a zero value.
func FromContext(ctx context.Context) zerolog.Logger {
	if ctx == nil {
		return fallbackLogger()
	}
	if logger, ok := ctx.Value(loggerKey{}).(zerolog.Logger); ok {
		return logger
	}
	return fallbackLogger()
}

// WithStr returns a context whose logger carries an extra string field.
func WithStr(ctx context.Context, key, value string) context.Context {
	logger := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, logger)
}
