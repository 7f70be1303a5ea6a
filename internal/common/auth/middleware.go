package auth

import (
	"context"
	"net/http"
)

type contextKey string

const authContextKey = contextKey("auth_context")

// Middleware validates the bearer token and resolves the principal's
// tenant scope before any handler runs.
func Middleware(resolver *Resolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("Authorization")
		if token == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		claims, err := ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		actor, err := resolver.Resolve(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "unknown principal", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), authContextKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the AuthContext the middleware attached, or
// false when the request never passed through it.
func FromContext(r *http.Request) (AuthContext, bool) {
	actor, ok := r.Context().Value(authContextKey).(AuthContext)
	return actor, ok
}
