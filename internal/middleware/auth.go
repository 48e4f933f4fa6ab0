package middleware

import (
	"context"
	"net/http"
	"strings"

	"inkpress/internal/auth"
)

const (
	// claimsKey is the context key for verified token claims.
	claimsKey contextKey = "claims"
)

// Authenticate verifies a Bearer token if one is present and stores its
// claims in the request context. Downstream handlers can access them via
// ClaimsFromCtx(). This middleware does NOT enforce authentication — a
// missing or invalid token just leaves the request unauthenticated.
func Authenticate(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				// Treat as unauthenticated; enforcement happens downstream.
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests that do not carry a valid admin token.
// Must be applied after Authenticate in the middleware chain.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromCtx(r.Context())
		if claims == nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if claims.Role != auth.RoleAdmin {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClaimsFromCtx extracts verified token claims from the request context.
// Returns nil if the request is not authenticated.
func ClaimsFromCtx(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
