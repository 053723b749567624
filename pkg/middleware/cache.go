package middleware

import (
	"net/http"
)

// NoStore marks every response as uncacheable. Listing views and the wish
// list change with each toggle, so intermediaries must not serve stale copies.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
