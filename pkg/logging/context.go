package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

const (
	// loggerKey is the context key for the logger.
	loggerKey contextKey = iota
	// tenantKey is the context key for the executing tenant.
	tenantKey
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// Ctx returns a logger from the context or the default logger.
// This is a shorter alias for FromContext.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// WithTenant stamps the context and its logger with the executing tenant.
// Consortium propagation uses this to run each member replay under that
// member's own execution context.
func WithTenant(ctx context.Context, tenant string) context.Context {
	ctx = context.WithValue(ctx, tenantKey, tenant)

	logger := FromContext(ctx)
	tenantLogger := logger.With().Str("tenant", tenant).Logger()
	return WithLogger(ctx, &tenantLogger)
}

// Tenant extracts the executing tenant from context, or the empty string.
func Tenant(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if tenant, ok := ctx.Value(tenantKey).(string); ok {
		return tenant
	}
	return ""
}
