package middlewarectx

import (
	"context"
	"net/http"
	"strings"
)

// OptionalJWTMiddleware parses the bearer token when one is present and
// annotates the context, but lets anonymous requests through untouched.
// Routes with public and personalized variants (the feed) use this.
func OptionalJWTMiddleware(maker TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := maker.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				// A bad token on an optional route degrades to anonymous.
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), UserID, claims.UserID)
			ctx = context.WithValue(ctx, User, claims.Username)
			ctx = context.WithValue(ctx, Role, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
