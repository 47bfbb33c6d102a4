package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger returns a middleware that logs one line per request, including the
// caller's request id when it sent one.
func Logger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Printf(
					"%s %s %d %s rid=%s",
					r.Method,
					r.URL.Path,
					ww.Status(),
					time.Since(start),
					r.Header.Get("X-Request-ID"),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
