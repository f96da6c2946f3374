package clientip

import "net/http"

// Middleware resolves the client IP from headers (see Resolve) and stores it
// in the request context.
func Middleware(headers ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := SetIPToContext(r.Context(), Resolve(r, headers...))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
