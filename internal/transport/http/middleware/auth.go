package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/karen-colon/b3-backend-social-net/internal/httputil"
	"github.com/karen-colon/b3-backend-social-net/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for the verified token claims
	ClaimsKey contextKey = "claims"
)

// TokenVerifier checks a token's signature and returns its claims.
type TokenVerifier interface {
	Verify(token string) (*model.Claims, error)
}

// AuthMiddleware requires a signed, unexpired token in the Authorization header.
// The claims are trusted as-is; no user lookup happens here.
func AuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return authMiddleware(verifier, time.Now)
}

func authMiddleware(verifier TokenVerifier, now func() time.Time) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				httputil.WriteForbiddenWithCode(w, model.CodeMissingAuth, "Request has no authentication header")
				return
			}

			claims, err := verifier.Verify(extractToken(authHeader))
			if err != nil {
				httputil.WriteBadRequestWithCode(w, model.CodeInvalidToken, "Invalid token")
				return
			}

			if claims.Expired(now()) {
				httputil.WriteUnauthorizedWithCode(w, model.CodeExpiredToken, "Token has expired")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken accepts quoted values and an optional "Bearer " prefix.
func extractToken(header string) string {
	token := strings.NewReplacer(`'`, "", `"`, "").Replace(header)
	token = strings.TrimSpace(token)
	token = strings.TrimPrefix(token, "Bearer ")
	return strings.ReplaceAll(token, " ", "")
}

// GetClaims returns the verified claims stored by AuthMiddleware.
func GetClaims(ctx context.Context) (*model.Claims, bool) {
	claims, ok := ctx.Value(ClaimsKey).(*model.Claims)
	return claims, ok
}

// GetUserIDFromContext extracts the user ID from the request context
// Returns the user ID and true if found, or 0 and false if not found
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	claims, ok := GetClaims(ctx)
	if !ok {
		return 0, false
	}
	return claims.UserID, true
}
