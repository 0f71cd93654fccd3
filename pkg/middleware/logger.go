package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/shashiranjanraj/rangershop/pkg/logger"
	"github.com/shashiranjanraj/rangershop/pkg/reqid"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Logger logs each request with method, path, status, duration, IP and the
// request_id injected by reqid.Middleware. Wire reqid.Middleware() before
// this middleware so the ID is available in the context when Logger runs.
func Logger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rid := reqid.FromCtx(r.Context())

			// Per-request logger pre-tagged with the request_id; every
			// downstream logger.WithCtx(ctx) call returns this logger.
			reqLog := log.With("request_id", rid)
			ctx := logger.Inject(r.Context(), reqLog)
			r = r.WithContext(ctx)

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			reqLog.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.statusCode,
				"duration", time.Since(start).String(),
				"ip", r.RemoteAddr,
			)
		})
	}
}
