// Package accesslog provides a middleware that records every RESTful API
// call in a log message.
package accesslog

import (
	"fmt"
	"net/http"
	"time"

	"github.com/KretovDmitry/tinyurl/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
)

// RequestIDHeader carries the request ID back to the client.
const RequestIDHeader = "X-Request-ID"

// Handler returns a middleware that records an access log message
// for every HTTP request being processed.
func Handler(log logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		f := func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			// associate request ID and correlation ID with the request context
			// so that they can be added to the log messages
			ctx := logger.WithRequest(r.Context(), r)
			r = r.WithContext(ctx)

			ww.Header().Set(RequestIDHeader, logger.RequestID(ctx))

			// defer function that logs the request details
			defer func(start time.Time) {
				log.With(ctx,
					"method", r.Method,
					"path", r.URL.Path,
					"proto", r.Proto,
					"remote_addr", r.RemoteAddr,
					"status", ww.Status(),
					"size", ww.BytesWritten(),
					"duration", time.Since(start),
				).Info(statusLabel(ww.Status()))
			}(time.Now())

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(f)
	}
}

func statusLabel(status int) string {
	switch {
	case status >= 100 && status < 300:
		return fmt.Sprintf("%d OK", status)
	case status >= 300 && status < 400:
		return fmt.Sprintf("%d Redirect", status)
	case status >= 400 && status < 500:
		return fmt.Sprintf("%d Client Error", status)
	case status >= 500:
		return fmt.Sprintf("%d Server Error", status)
	default:
		return fmt.Sprintf("%d Unknown", status)
	}
}
