package middleware

import (
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLogger writes one structured line per request, at warn level for
// 4xx and error level for 5xx responses.
func RequestLogger(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			latency := time.Since(start)
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []interface{}{
				"status", status,
				"method", r.Method,
				"path", r.URL.Path,
				"latency_ms", latency.Milliseconds(),
				"bytes", ww.BytesWritten(),
				"request_id", chiMiddleware.GetReqID(r.Context()),
			}
			if r.URL.RawQuery != "" {
				fields = append(fields, "query", r.URL.RawQuery)
			}

			switch {
			case status >= 500:
				log.Errorw("HTTP request", fields...)
			case status >= 400:
				log.Warnw("HTTP request", fields...)
			default:
				log.Infow("HTTP request", fields...)
			}
		})
	}
}
