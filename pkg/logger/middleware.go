package logger

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HTTPLogger tags each request with a request id, scopes the logger to
// it, and logs method/path/status/duration on completion.
func HTTPLogger(l Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := uuid.NewString()

			ctx := ContextWithFields(r.Context(), l, "request_id", reqID)
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(ww, r.WithContext(ctx))

			l.Infof(ctx, "%s %s -> %d (%dms)",
				r.Method, r.URL.Path, ww.status, time.Since(start).Milliseconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
