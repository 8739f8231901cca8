package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wolfman30/aika-health/internal/accounts"
)

type errRevoker struct{}

func (errRevoker) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func issueToken(t *testing.T, issuer *accounts.TokenIssuer) (string, *accounts.Claims) {
	t.Helper()
	token, claims, err := issuer.Issue(&accounts.User{ID: "user-1", Username: "alice"})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token, claims
}

func TestUserAuthStoresClaims(t *testing.T) {
	issuer := accounts.NewTokenIssuer("secret", time.Hour)
	token, _ := issueToken(t, issuer)

	var gotUser string
	handler := UserAuth(issuer, accounts.NewMemoryRevoker(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = accounts.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUser != "user-1" {
		t.Fatalf("expected user-1 in context, got %q", gotUser)
	}
}

func TestUserAuthRejects(t *testing.T) {
	issuer := accounts.NewTokenIssuer("secret", time.Hour)
	token, _ := issueToken(t, issuer)
	otherToken, _ := issueToken(t, accounts.NewTokenIssuer("other-secret", time.Hour))

	revoked := accounts.NewMemoryRevoker()
	revokedToken, revokedClaims := issueToken(t, issuer)
	if err := revoked.Revoke(context.Background(), revokedClaims.ID, revokedClaims.ExpiresAt.Time); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	tests := []struct {
		name    string
		header  string
		checker RevocationChecker
		want    int
	}{
		{"missing header", "", revoked, http.StatusUnauthorized},
		{"not bearer", "Basic abc", revoked, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + otherToken, revoked, http.StatusUnauthorized},
		{"revoked", "Bearer " + revokedToken, revoked, http.StatusUnauthorized},
		{"revocation lookup fails", "Bearer " + token, errRevoker{}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := UserAuth(issuer, tt.checker, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if called {
				t.Fatal("expected handler not to be called")
			}
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
