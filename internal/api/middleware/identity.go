package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/renshu-app/renshu/internal/api/shared"
)

// UserResolver turns a bearer credential into a user ID. How the
// credential is verified is the caller's concern; the API only needs
// the resulting identity.
type UserResolver interface {
	ResolveUser(ctx context.Context, credential string) (uuid.UUID, error)
}

// IdentityMiddleware resolves the request's user via the given resolver
// and stores the user ID in the context. Requests without a resolvable
// identity get 401.
func IdentityMiddleware(resolver UserResolver) func(http.Handler) http.Handler {
	if resolver == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("resolver cannot be nil for IdentityMiddleware")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := bearerCredential(r)
			if credential == "" {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}

			userID, err := resolver.ResolveUser(r.Context(), credential)
			if err != nil || userID == uuid.Nil {
				shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid credentials", err)
				return
			}

			ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerCredential extracts the credential from the Authorization header,
// accepting both "Bearer <token>" and a bare token.
func bearerCredential(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return header
}
