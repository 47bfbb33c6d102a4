package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/aditya/bakshish/pkg/utils"
)

// Recovery returns a middleware that turns a handler panic into a 500.
func Recovery(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Printf("panic recovered: %v\n%s", err, debug.Stack())
					utils.InternalError(w, "an unexpected error occurred")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
