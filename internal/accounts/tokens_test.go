package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenIssuerRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, claims, err := issuer.Issue(&User{ID: "user-1", Username: "alice"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if claims.ID == "" {
		t.Fatalf("expected jti")
	}

	parsed, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed.UserID() != "user-1" || parsed.Username != "alice" {
		t.Fatalf("unexpected claims %+v", parsed)
	}
}

func TestTokenIssuerRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenIssuer("one", time.Hour).Issue(&User{ID: "u"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewTokenIssuer("two", time.Hour).Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestTokenIssuerRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := issuer.Issue(&User{ID: "u"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	issuer.now = time.Now
	if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token rejected, got %v", err)
	}
}

func TestTokenIssuerRejectsNoneAlgorithm(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        "jti",
		Subject:   "u",
		Issuer:    tokenIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewTokenIssuer("secret", time.Hour).Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected none algorithm rejected, got %v", err)
	}
}

func TestClaimsContext(t *testing.T) {
	if _, ok := UserIDFromContext(context.Background()); ok {
		t.Fatalf("expected no user in empty context")
	}
	ctx := WithClaims(context.Background(), &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-9"}})
	if id, ok := UserIDFromContext(ctx); !ok || id != "user-9" {
		t.Fatalf("expected user-9, got %q", id)
	}
}
