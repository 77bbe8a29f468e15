package server

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/filedepot/filedepot/internal/logger"
)

// requestLogger emits one structured line per request: method, path,
// status, bytes written, duration and the chi request ID.
func requestLogger(l *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			l.With().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Int64("durationMs", time.Since(start).Milliseconds()).
				Str("requestId", chimiddleware.GetReqID(r.Context())).
				Logger().Info("request")
		})
	}
}
