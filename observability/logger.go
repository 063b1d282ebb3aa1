// Package observability provides the portal's request logging, Prometheus
// metrics, and the SQLite business-event log.
//
// Event persistence is asynchronous: Log enqueues onto a buffered channel
// drained by a background goroutine, and a failing insert is logged via slog
// but never propagates, so the observability store cannot block a submission.
package observability

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"cemsreg/idgen"
)

type requestIDKey struct{}

// RequestID returns the request ID from the context, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

var newRequestID = idgen.Prefixed("req_", idgen.Default)

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger returns middleware that assigns a request ID, echoes it in
// the X-Request-ID header, and logs one line per request via logger.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Request-ID")
			if id == "" {
				id = newRequestID()
			}
			w.Header().Set("X-Request-ID", id)
			ctx := context.WithValue(r.Context(), requestIDKey{}, id)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(ctx))

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", id,
			)
		})
	}
}
