package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/wolfman30/aika-health/internal/accounts"
	"github.com/wolfman30/aika-health/pkg/logging"
)

// TokenParser verifies a bearer token and returns its claims.
type TokenParser interface {
	Parse(token string) (*accounts.Claims, error)
}

// RevocationChecker reports whether a token id was revoked at logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// UserAuth requires a valid, unrevoked user token and stores its claims on the request context.
func UserAuth(parser TokenParser, revoked RevocationChecker, logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			claims, err := parser.Parse(strings.TrimSpace(strings.TrimPrefix(auth, "Bearer ")))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if revoked != nil {
				isRevoked, err := revoked.IsRevoked(r.Context(), claims.ID)
				if err != nil {
					logger.Error("token revocation lookup failed", "error", err)
					http.Error(w, "authorization unavailable", http.StatusServiceUnavailable)
					return
				}
				if isRevoked {
					http.Error(w, "token revoked", http.StatusUnauthorized)
					return
				}
			}
			next.ServeHTTP(w, r.WithContext(accounts.WithClaims(r.Context(), claims)))
		})
	}
}
