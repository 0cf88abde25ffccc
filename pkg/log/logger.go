// Package log carries a zap logger through a context.
package log

import (
	"context"

	"go.uber.org/zap"
)

type logCtxKey int

func IntoContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, logCtxKey(0), logger)
}

func FromContext(ctx context.Context) *zap.Logger {
	val := ctx.Value(logCtxKey(0))
	if val != nil {
		return val.(*zap.Logger)
	}
	zap.L().Warn("No logger in context, passing default")
	return zap.L()
}

// WithFields returns a context whose logger carries the given fields.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	return IntoContext(ctx, FromContext(ctx).With(fields...))
}

// Named returns a context whose logger has name appended to its name.
func Named(ctx context.Context, name string) context.Context {
	return IntoContext(ctx, FromContext(ctx).Named(name))
}
