package journal

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/aika-health/internal/accounts"
	"github.com/wolfman30/aika-health/pkg/logging"
)

const defaultMaxUploadBytes int64 = 10 << 20

// UserLoader resolves the authenticated user, writing an error response when it cannot.
type UserLoader interface {
	CurrentUser(w http.ResponseWriter, r *http.Request) (*accounts.User, bool)
}

// DashboardResponse is returned by GET /dashboard.
type DashboardResponse struct {
	User   *accounts.User `json:"user"`
	Advice string         `json:"advice"`
}

type symptomRequest struct {
	Text string `json:"text"`
}

// Handler handles HTTP requests for the journal
type Handler struct {
	service        *Service
	users          UserLoader
	maxUploadBytes int64
	logger         *logging.Logger
}

// NewHandler creates a new journal handler
func NewHandler(service *Service, users UserLoader, maxUploadBytes int64, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{
		service:        service,
		users:          users,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Dashboard handles GET /dashboard requests
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := h.users.CurrentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, DashboardResponse{
		User:   user,
		Advice: h.service.DashboardAdvice(r.Context(), user.Profile),
	})
}

// ListSymptoms handles GET /symptoms requests
func (h *Handler) ListSymptoms(w http.ResponseWriter, r *http.Request) {
	userID, ok := accounts.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	symptoms, err := h.service.Symptoms(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list symptoms", "error", err, "user_id", userID)
		http.Error(w, "failed to list symptoms", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, symptoms)
}

// LogSymptom handles POST /symptoms requests
func (h *Handler) LogSymptom(w http.ResponseWriter, r *http.Request) {
	userID, ok := accounts.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req symptomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	symptom, err := h.service.LogSymptom(r.Context(), userID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyText):
			http.Error(w, "Please describe your symptom.", http.StatusBadRequest)
		case errors.Is(err, ErrTextTooLong):
			http.Error(w, "Symptom description is too long.", http.StatusBadRequest)
		default:
			h.logger.Error("failed to log symptom", "error", err, "user_id", userID)
			http.Error(w, "failed to log symptom", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, symptom)
}

// UploadPhoto handles POST /photos multipart requests
func (h *Handler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID, ok := accounts.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "File is too large.", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("photo")
	if err != nil {
		http.Error(w, "No file selected.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	photo, err := h.service.UploadPhoto(r.Context(), userID, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidFilename):
			http.Error(w, "Invalid filename.", http.StatusBadRequest)
		case errors.Is(err, ErrUnsupportedType):
			http.Error(w, "Unsupported file type.", http.StatusBadRequest)
		default:
			h.logger.Error("failed to upload photo", "error", err, "user_id", userID)
			http.Error(w, "failed to upload photo", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, photo)
}

// PhotoImage handles GET /photos/{id}/image requests
func (h *Handler) PhotoImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := accounts.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	photo, rc, err := h.service.OpenPhoto(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "photo not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to open photo", "error", err, "user_id", userID)
		http.Error(w, "failed to open photo", http.StatusInternalServerError)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", photo.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("failed to stream photo", "error", err, "photo_id", photo.ID)
	}
}

// NewTip handles POST /tips requests
func (h *Handler) NewTip(w http.ResponseWriter, r *http.Request) {
	userID, ok := accounts.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	tip, err := h.service.NewTip(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to store tip", "error", err, "user_id", userID)
		http.Error(w, "failed to generate tip", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, tip)
}

// History handles GET /history requests
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := accounts.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	history, err := h.service.History(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("failed to load history", "error", err, "user_id", userID)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
