// Package middleware provides HTTP middleware for passproxy.
package middleware

import (
	"crypto/subtle"
	"net/http"
)

// headerAPIKey is the shared-secret header checked on protected routes.
const headerAPIKey = "x-api-key"

// APIKey returns middleware enforcing the shared-secret header.
// An empty secret disables the gate: every request passes unchecked.
// A missing or mismatched header is answered 401 without invoking the handler.
func APIKey(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			got := r.Header.Get(headerAPIKey)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"success":false,"error":"unauthorized"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
