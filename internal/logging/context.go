package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type ctxLoggerKey struct{}

// With returns a new context carrying the given logger
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// From returns the logger carried by ctx. If no logger is set, the default logger is returned
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxLoggerKey{}).(*slog.Logger); ok {
		return l
	}
	return defaultLogger
}

type ctxRequestIDKey struct{}

// CtxRequestID returns the request ID from ctx. If none is set, a new ID is
// minted and stored in the returned context.
func CtxRequestID(ctx context.Context) (string, context.Context) {
	if id, ok := ctx.Value(ctxRequestIDKey{}).(string); ok {
		return id, ctx
	}

	newID := uuid.NewString()
	return newID, context.WithValue(ctx, ctxRequestIDKey{}, newID)
}

type ctxTimeKey struct{}

// TimeFunc supplies the current time. Tests inject a fixed clock via CtxWithTime.
type TimeFunc func() time.Time

// CtxTime returns the current time as seen by ctx
func CtxTime(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ctxTimeKey{}).(TimeFunc); ok {
		return t()
	}
	return time.Now()
}

// CtxWithTime returns a new context with a time function
func CtxWithTime(ctx context.Context, timeFunc TimeFunc) context.Context {
	return context.WithValue(ctx, ctxTimeKey{}, timeFunc)
}
