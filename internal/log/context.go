// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"context"

	"github.com/rs/zerolog"
)

type ctxKey string

// correlationKeys maps context keys to the log field they populate.
var correlationKeys = []struct {
	key   ctxKey
	field string
}{
	{ctxKey(FieldRequestID), FieldRequestID},
	{ctxKey(FieldRunID), FieldRunID},
}

func withValue(ctx context.Context, key ctxKey, v string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, v)
}

func value(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// ContextWithRequestID tags ctx with the HTTP request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, ctxKey(FieldRequestID), id)
}

// ContextWithRunID tags ctx with the scan run ID.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return withValue(ctx, ctxKey(FieldRunID), id)
}

func RequestIDFromContext(ctx context.Context) string { return value(ctx, ctxKey(FieldRequestID)) }

func RunIDFromContext(ctx context.Context) string { return value(ctx, ctxKey(FieldRunID)) }

// WithContext adds the correlation IDs found in ctx to logger.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	builder := logger.With()
	added := false
	for _, c := range correlationKeys {
		if v := value(ctx, c.key); v != "" {
			builder = builder.Str(c.field, v)
			added = true
		}
	}
	if !added {
		return logger
	}
	return builder.Logger()
}

// WithComponentFromContext is WithComponent plus the correlation IDs of ctx.
func WithComponentFromContext(ctx context.Context, component string) zerolog.Logger {
	return WithContext(ctx, WithComponent(component))
}
