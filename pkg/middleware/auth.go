package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/rangershop/pkg/auth"
	"github.com/shashiranjanraj/rangershop/pkg/response"
)

// claimsKey is the unexported context key for the validated token claims.
type claimsKey struct{}

// Auth returns a middleware that requires a valid Bearer token signed by m.
// The validated claims are stored in the request context for handlers that
// need the client identity.
func Auth(m *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token == "" {
				response.Unauthorized(w)
				return
			}

			claims, err := m.Validate(token)
			if err != nil {
				response.Unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromCtx returns the claims stored by Auth, or nil outside a protected
// route.
func ClaimsFromCtx(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims
}
