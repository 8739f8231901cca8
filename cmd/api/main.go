package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/aika-health/cmd/mainconfig"
	"github.com/wolfman30/aika-health/internal/accounts"
	"github.com/wolfman30/aika-health/internal/api/router"
	"github.com/wolfman30/aika-health/internal/app/bootstrap"
	appconfig "github.com/wolfman30/aika-health/internal/config"
	"github.com/wolfman30/aika-health/internal/database"
	"github.com/wolfman30/aika-health/internal/journal"
	"github.com/wolfman30/aika-health/internal/notify"
	"github.com/wolfman30/aika-health/internal/observability/metrics"
	"github.com/wolfman30/aika-health/pkg/logging"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg := appconfig.Load()
	logger := logging.NewWithFormat(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting aika-health API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	fmt.Println("Server exited gracefully")
}

func run(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) error {
	metricsHandler, adviceMetrics := setupMetrics()

	var awsCfg *aws.Config
	if mainconfig.NeedsAWS(cfg) {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		awsCfg = &loaded
	}

	pool, err := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}
	usersRepo, journalRepo := buildRepositories(pool, logger)

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer redisClient.Close()
	}
	revoker := bootstrap.BuildRevoker(redisClient, logger)

	adapter, err := bootstrap.BuildAdviceAdapter(ctx, cfg, awsCfg, adviceMetrics, logger)
	if err != nil {
		logger.Warn("continuing without advice provider", "error", err)
	}
	defer func() {
		if err := adapter.Close(); err != nil {
			logger.Warn("advice client close failed", "error", err)
		}
	}()

	photoStore, err := bootstrap.BuildPhotoStore(cfg, awsCfg, logger)
	if err != nil {
		return fmt.Errorf("photo store: %w", err)
	}

	emailSender, emailKind := bootstrap.BuildEmailSender(cfg, awsCfg, logger)
	logger.Info("email sender configured", "sender", emailKind)
	welcomer := notify.NewWelcomer(emailSender, logger.WithComponent("notify"))

	tokens := accounts.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	accountsHandler := accounts.NewHandler(usersRepo, tokens, revoker, welcomer, logger.WithComponent("accounts"))
	journalService := journal.NewService(journalRepo, adapter, photoStore, adviceMetrics, logger.WithComponent("journal"))
	accountsHandler.SetDeleteHook(journalService.PurgeUser)
	journalHandler := journal.NewHandler(journalService, accountsHandler, cfg.MaxUploadBytes, logger.WithComponent("journal"))

	r := router.New(&router.Config{
		Logger:             logger,
		AccountsHandler:    accountsHandler,
		JournalHandler:     journalHandler,
		Tokens:             tokens,
		Revoker:            revoker,
		AdviceProvider:     adapter.Provider().String(),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		AuthRateLimitRPS:   cfg.AuthRateLimitRPS,
		AuthRateLimitBurst: cfg.AuthRateLimitBurst,
	})

	writeTimeout := cfg.AdviceTimeout + 30*time.Second
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func setupMetrics() (http.Handler, *metrics.AdviceMetrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	adviceMetrics := metrics.NewAdviceMetrics(reg)
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), adviceMetrics
}

// connectPostgresPool returns a nil pool when no URL is configured. A
// configured but unreachable database is an error.
func connectPostgresPool(ctx context.Context, url string, logger *logging.Logger) (*pgxpool.Pool, error) {
	pool, err := database.Connect(ctx, url)
	if errors.Is(err, database.ErrNoURL) {
		logger.Warn("DATABASE_URL not set; using in-memory repositories")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	logger.Info("connected to postgres")
	return pool, nil
}

func buildRepositories(pool *pgxpool.Pool, logger *logging.Logger) (accounts.Repository, journal.Repository) {
	if pool == nil {
		return accounts.NewInMemoryRepository(), journal.NewInMemoryRepository()
	}
	logger.Debug("using postgres repositories")
	return accounts.NewPostgresRepository(pool), journal.NewPostgresRepository(pool)
}
