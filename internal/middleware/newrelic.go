package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// NewRelicMiddleware creates a middleware that instruments requests with New Relic.
// The transaction starts under the raw path and is renamed to the chi route
// pattern once routing has matched, so /api/trips/7/accept/ and
// /api/trips/8/accept/ report as one transaction.
func NewRelicMiddleware(app *newrelic.Application) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if app == nil {
				next.ServeHTTP(w, r)
				return
			}

			txn := app.StartTransaction(r.Method + " " + r.URL.Path)
			defer txn.End()

			txn.SetWebRequestHTTP(r)
			w = txn.SetWebResponse(w)

			// Add transaction to context
			r = newrelic.RequestWithTransactionContext(r, txn)

			next.ServeHTTP(w, r)

			txn.SetName(routeName(r))
		})
	}
}

// routeName is the method plus the matched route pattern, falling back to
// the path when chi has not routed the request.
func routeName(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return r.Method + " " + pattern
		}
	}
	return r.Method + " " + r.URL.Path
}
