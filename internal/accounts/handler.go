package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wolfman30/aika-health/pkg/logging"
)

const (
	msgEmailTaken         = "This email is already registered. Please log in instead."
	msgUsernameTaken      = "This username is already taken."
	msgInvalidCredentials = "Invalid credentials."
	welcomeTimeout        = 10 * time.Second
)

// WelcomeSender sends the post-registration greeting.
type WelcomeSender interface {
	SendWelcome(ctx context.Context, username, email string) error
}

// DeleteHook runs before a user row is removed, e.g. to purge stored uploads.
type DeleteHook func(ctx context.Context, userID string) error

// AuthResponse is returned by register and login
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

// Handler handles HTTP requests for accounts
type Handler struct {
	repo       Repository
	tokens     *TokenIssuer
	revoker    Revoker
	welcome    WelcomeSender
	deleteHook DeleteHook
	validate   *validator.Validate
	logger     *logging.Logger
}

// NewHandler creates a new accounts handler. welcome may be nil.
func NewHandler(repo Repository, tokens *TokenIssuer, revoker Revoker, welcome WelcomeSender, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if revoker == nil {
		revoker = NewMemoryRevoker()
	}
	return &Handler{
		repo:     repo,
		tokens:   tokens,
		revoker:  revoker,
		welcome:  welcome,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// SetDeleteHook registers a hook invoked by DeleteAccount.
func (h *Handler) SetDeleteHook(hook DeleteHook) {
	h.deleteHook = hook
}

// Register handles POST /auth/register requests
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = NormalizeEmail(req.Email)
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed to hash password", "error", err)
		http.Error(w, "failed to register", http.StatusInternalServerError)
		return
	}

	user := &User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Profile:      req.Profile,
	}
	if err := h.repo.Create(r.Context(), user); err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			http.Error(w, msgEmailTaken, http.StatusConflict)
		case errors.Is(err, ErrUsernameTaken):
			http.Error(w, msgUsernameTaken, http.StatusConflict)
		default:
			h.logger.Error("failed to create user", "error", err)
			http.Error(w, "failed to register", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	h.sendWelcome(r.Context(), user)
	h.respondWithToken(w, http.StatusCreated, user)
}

// Login handles POST /auth/login requests
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	user, err := h.repo.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			h.logger.Error("failed to load user", "error", err)
		}
		http.Error(w, msgInvalidCredentials, http.StatusUnauthorized)
		return
	}
	if err := CheckPassword(user.PasswordHash, req.Password); err != nil {
		http.Error(w, msgInvalidCredentials, http.StatusUnauthorized)
		return
	}

	h.respondWithToken(w, http.StatusOK, user)
}

// Logout handles POST /auth/logout requests
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if err := h.revoker.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		h.logger.Error("failed to revoke token", "error", err)
		http.Error(w, "failed to log out", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /me requests
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /me/profile requests
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var profile Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&profile); err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return
	}

	user, err := h.repo.UpdateProfile(r.Context(), userID, profile)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update profile", "error", err, "user_id", userID)
		http.Error(w, "failed to update profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// DeleteAccount handles DELETE /me requests
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := claims.UserID()

	if h.deleteHook != nil {
		if err := h.deleteHook(r.Context(), userID); err != nil {
			h.logger.Warn("account delete hook failed", "error", err, "user_id", userID)
		}
	}
	if err := h.repo.Delete(r.Context(), userID); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete user", "error", err, "user_id", userID)
		http.Error(w, "failed to delete account", http.StatusInternalServerError)
		return
	}
	if err := h.revoker.Revoke(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		h.logger.Warn("failed to revoke token after delete", "error", err)
	}

	h.logger.Info("user deleted", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}

// CurrentUser loads the authenticated user, writing an error response when absent.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) (*User, bool) {
	return h.currentUser(w, r)
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*User, bool) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return nil, false
	}
	user, err := h.repo.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return nil, false
		}
		h.logger.Error("failed to load user", "error", err, "user_id", userID)
		http.Error(w, "failed to load user", http.StatusInternalServerError)
		return nil, false
	}
	return user, true
}

func (h *Handler) respondWithToken(w http.ResponseWriter, status int, user *User) {
	token, claims, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err)
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, status, AuthResponse{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      user,
	})
}

func (h *Handler) sendWelcome(ctx context.Context, user *User) {
	if h.welcome == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, welcomeTimeout)
		defer cancel()
		if err := h.welcome.SendWelcome(ctx, user.Username, user.Email); err != nil {
			h.logger.Warn("failed to send welcome email", "error", err, "user_id", user.ID)
		}
	}()
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return "invalid " + strings.ToLower(fe.Field()) + ": failed " + fe.Tag()
	}
	return "invalid request"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
