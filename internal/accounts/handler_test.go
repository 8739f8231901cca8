package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wolfman30/aika-health/pkg/logging"
)

type stubWelcome struct {
	sent chan string
}

func (s *stubWelcome) SendWelcome(_ context.Context, username, email string) error {
	s.sent <- email
	return nil
}

type failingRepository struct {
	*InMemoryRepository
}

func (f *failingRepository) Create(context.Context, *User) error {
	return errors.New("db down")
}

func newTestHandler(repo Repository) (*Handler, *TokenIssuer, *MemoryRevoker) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	revoker := NewMemoryRevoker()
	return NewHandler(repo, issuer, revoker, nil, logging.Default()), issuer, revoker
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(raw)
}

func register(t *testing.T, h *Handler, username, email string) AuthResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", jsonBody(t, map[string]any{
		"username": username,
		"email":    email,
		"password": "correct-horse",
		"age":      29,
	}))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp AuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func authed(t *testing.T, issuer *TokenIssuer, req *http.Request, token string) *http.Request {
	t.Helper()
	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	return req.WithContext(WithClaims(req.Context(), claims))
}

func TestRegisterCreatesUserAndToken(t *testing.T) {
	repo := NewInMemoryRepository()
	welcome := &stubWelcome{sent: make(chan string, 1)}
	h := NewHandler(repo, NewTokenIssuer("test-secret", time.Hour), nil, welcome, logging.Default())

	resp := register(t, h, "alice", " Alice@Example.com ")
	if resp.Token == "" || resp.User == nil {
		t.Fatalf("expected token and user")
	}
	if resp.User.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %s", resp.User.Email)
	}
	if resp.User.Profile.Age != 29 {
		t.Fatalf("expected profile age stored, got %d", resp.User.Profile.Age)
	}

	stored, err := repo.GetByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("expected stored user: %v", err)
	}
	if stored.PasswordHash == "correct-horse" || CheckPassword(stored.PasswordHash, "correct-horse") != nil {
		t.Fatalf("expected bcrypt hash stored")
	}

	select {
	case email := <-welcome.sent:
		if email != "alice@example.com" {
			t.Fatalf("unexpected welcome recipient %s", email)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("expected welcome email")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, _, _ := newTestHandler(NewInMemoryRepository())
	register(t, h, "alice", "alice@example.com")

	req := httptest.NewRequest(http.MethodPost, "/auth/register", jsonBody(t, map[string]any{
		"username": "alice2",
		"email":    "ALICE@example.com",
		"password": "another-pass",
	}))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "This email is already registered. Please log in instead.") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestRegisterValidation(t *testing.T) {
	h, _, _ := newTestHandler(NewInMemoryRepository())
	tests := []struct {
		name string
		body string
	}{
		{"bad json", "{"},
		{"missing email", `{"username":"alice","password":"longenough"}`},
		{"bad email", `{"username":"alice","email":"nope","password":"longenough"}`},
		{"short password", `{"username":"alice","email":"a@example.com","password":"short"}`},
		{"negative age", `{"username":"alice","email":"a@example.com","password":"longenough","age":-1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Register(rec, httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRegisterRepositoryFailure(t *testing.T) {
	h, _, _ := newTestHandler(&failingRepository{InMemoryRepository: NewInMemoryRepository()})
	req := httptest.NewRequest(http.MethodPost, "/auth/register", jsonBody(t, map[string]any{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "correct-horse",
	}))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	h, _, _ := newTestHandler(NewInMemoryRepository())
	register(t, h, "alice", "alice@example.com")

	tests := []struct {
		name     string
		email    string
		password string
		want     int
	}{
		{"valid", "Alice@example.com", "correct-horse", http.StatusOK},
		{"wrong password", "alice@example.com", "wrong-horse", http.StatusUnauthorized},
		{"unknown email", "bob@example.com", "correct-horse", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", jsonBody(t, map[string]string{
				"email":    tt.email,
				"password": tt.password,
			}))
			rec := httptest.NewRecorder()
			h.Login(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			if tt.want == http.StatusUnauthorized && !strings.Contains(rec.Body.String(), "Invalid credentials.") {
				t.Fatalf("unexpected body %q", rec.Body.String())
			}
		})
	}
}

func TestMeAndUpdateProfile(t *testing.T) {
	h, issuer, _ := newTestHandler(NewInMemoryRepository())
	auth := register(t, h, "alice", "alice@example.com")

	req := authed(t, issuer, httptest.NewRequest(http.MethodPut, "/me/profile", jsonBody(t, Profile{
		Age:           35,
		ActivityLevel: "high",
		Smoking:       true,
	})), auth.Token)
	rec := httptest.NewRecorder()
	h.UpdateProfile(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.Me(rec, authed(t, issuer, httptest.NewRequest(http.MethodGet, "/me", nil), auth.Token))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var user User
	if err := json.NewDecoder(rec.Body).Decode(&user); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if user.Profile.Age != 35 || !user.Profile.Smoking || user.Profile.ActivityLevel != "high" {
		t.Fatalf("unexpected profile %+v", user.Profile)
	}
}

func TestUpdateProfileRejectsInvalid(t *testing.T) {
	h, issuer, _ := newTestHandler(NewInMemoryRepository())
	auth := register(t, h, "alice", "alice@example.com")

	req := authed(t, issuer, httptest.NewRequest(http.MethodPut, "/me/profile", strings.NewReader(`{"sleep_hours": 30}`)), auth.Token)
	rec := httptest.NewRecorder()
	h.UpdateProfile(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMeRequiresClaims(t *testing.T) {
	h, _, _ := newTestHandler(NewInMemoryRepository())
	rec := httptest.NewRecorder()
	h.Me(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	h, issuer, revoker := newTestHandler(NewInMemoryRepository())
	auth := register(t, h, "alice", "alice@example.com")

	req := authed(t, issuer, httptest.NewRequest(http.MethodPost, "/auth/logout", nil), auth.Token)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	claims, _ := issuer.Parse(auth.Token)
	if revoked, _ := revoker.IsRevoked(context.Background(), claims.ID); !revoked {
		t.Fatalf("expected token revoked")
	}
}

func TestDeleteAccount(t *testing.T) {
	repo := NewInMemoryRepository()
	h, issuer, revoker := newTestHandler(repo)
	auth := register(t, h, "alice", "alice@example.com")

	var hooked string
	h.SetDeleteHook(func(_ context.Context, userID string) error {
		hooked = userID
		return errors.New("storage unavailable")
	})

	rec := httptest.NewRecorder()
	h.DeleteAccount(rec, authed(t, issuer, httptest.NewRequest(http.MethodDelete, "/me", nil), auth.Token))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if hooked != auth.User.ID {
		t.Fatalf("expected delete hook for %s, got %s", auth.User.ID, hooked)
	}
	if _, err := repo.GetByID(context.Background(), auth.User.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected user deleted, got %v", err)
	}
	claims, _ := issuer.Parse(auth.Token)
	if revoked, _ := revoker.IsRevoked(context.Background(), claims.ID); !revoked {
		t.Fatalf("expected token revoked after delete")
	}
}
