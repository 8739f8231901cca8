package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/aika-health/internal/accounts"
	httpmiddleware "github.com/wolfman30/aika-health/internal/http/middleware"
	"github.com/wolfman30/aika-health/internal/journal"
	"github.com/wolfman30/aika-health/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger          *logging.Logger
	AccountsHandler *accounts.Handler
	JournalHandler  *journal.Handler
	Tokens          httpmiddleware.TokenParser
	Revoker         httpmiddleware.RevocationChecker
	AdviceProvider  string
	MetricsHandler  http.Handler

	CORSAllowedOrigins []string

	// Per-IP limits for /auth routes. Zero disables limiting.
	AuthRateLimitRPS   float64
	AuthRateLimitBurst int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthHandler(cfg.AdviceProvider))
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	requireUser := httpmiddleware.UserAuth(cfg.Tokens, cfg.Revoker, cfg.Logger)

	r.Route("/auth", func(auth chi.Router) {
		if cfg.AuthRateLimitRPS > 0 {
			auth.Use(httpmiddleware.RateLimit(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst))
		}
		auth.Post("/register", cfg.AccountsHandler.Register)
		auth.Post("/login", cfg.AccountsHandler.Login)
		auth.With(requireUser).Post("/logout", cfg.AccountsHandler.Logout)
	})

	r.Group(func(authed chi.Router) {
		authed.Use(requireUser)

		authed.Get("/me", cfg.AccountsHandler.Me)
		authed.Put("/me/profile", cfg.AccountsHandler.UpdateProfile)
		authed.Delete("/me", cfg.AccountsHandler.DeleteAccount)

		if cfg.JournalHandler != nil {
			authed.Get("/dashboard", cfg.JournalHandler.Dashboard)
			authed.Get("/symptoms", cfg.JournalHandler.ListSymptoms)
			authed.Post("/symptoms", cfg.JournalHandler.LogSymptom)
			authed.Post("/photos", cfg.JournalHandler.UploadPhoto)
			authed.Get("/photos/{id}/image", cfg.JournalHandler.PhotoImage)
			authed.Post("/tips", cfg.JournalHandler.NewTip)
			authed.Get("/history", cfg.JournalHandler.History)
		}
	})

	return r
}

func healthHandler(provider string) http.HandlerFunc {
	if provider == "" {
		provider = "none"
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":   "ok",
			"provider": provider,
		})
	}
}
