// Package logger configures the structured slog logger for the application.
//
// New builds the process logger; the Logger middleware stores a per-request
// copy pre-tagged with the request_id, so every log line from a handler or
// service is correlated:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order placed", "order_id", orderID)
//	// → time=... level=INFO msg="order placed" request_id=a1b2c3d4 order_id=...
package logger

import (
	"context"
	"log/slog"
	"os"
)

// New returns a slog.Logger suited to env: JSON output at INFO for
// production, human-readable text at DEBUG otherwise. The returned logger is
// also installed as the slog default.
func New(env string) *slog.Logger {
	var handler slog.Handler

	switch env {
	case "production", "prod":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the request-scoped logger stored in ctx, or the process
// default when none is present.
func WithCtx(ctx context.Context) *slog.Logger {
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return slog.Default()
}

// Inject stores a *slog.Logger (pre-tagged with request_id) into ctx.
// Called by the Logger middleware; application code rarely needs it.
func Inject(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}
