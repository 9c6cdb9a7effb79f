package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/BradenHooton/tasktrack/internal/models"
	pkghttp "github.com/BradenHooton/tasktrack/pkg/http"
)

type contextKey string

// UserContextKey is the key for storing token claims in the request context
const UserContextKey contextKey = "user"

const unauthenticatedMessage = "Could not validate credentials"

// VerifyFunc validates a raw bearer token and returns its claims.
type VerifyFunc func(token string) (*models.TokenClaims, error)

// AuthMiddleware rejects requests without a valid bearer token and stores the
// verified claims in the request context.
func AuthMiddleware(verify VerifyFunc) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				writeUnauthenticated(w)
				return
			}

			claims, err := verify(tokenString)
			if err != nil {
				writeUnauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext extracts token claims from the request context
func GetUserFromContext(r *http.Request) *models.TokenClaims {
	claims, ok := r.Context().Value(UserContextKey).(*models.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthenticated(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	pkghttp.WriteUnauthorized(w, unauthenticatedMessage)
}
