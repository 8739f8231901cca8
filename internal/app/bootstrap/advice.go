package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/wolfman30/aika-health/internal/advice"
	appconfig "github.com/wolfman30/aika-health/internal/config"
	"github.com/wolfman30/aika-health/internal/observability/metrics"
	"github.com/wolfman30/aika-health/pkg/logging"
)

// AdviceSettings maps configuration onto advice.Settings.
func AdviceSettings(cfg *appconfig.Config) advice.Settings {
	return advice.Settings{
		Provider:       advice.ParseProvider(cfg.AIProvider),
		Timeout:        cfg.AdviceTimeout,
		OpenAIAPIKey:   cfg.OpenAIAPIKey,
		OpenAIModel:    cfg.OpenAIModel,
		OpenAIBaseURL:  cfg.OpenAIBaseURL,
		HFAPIKey:       cfg.HFAPIKey,
		HFModel:        cfg.HFModel,
		HFBaseURL:      cfg.HFBaseURL,
		HFMaxNewTokens: cfg.HFMaxNewTokens,
		OllamaURL:      cfg.OllamaURL,
		OllamaModel:    cfg.OllamaModel,
		GeminiAPIKey:   cfg.GeminiAPIKey,
		GeminiModel:    cfg.GeminiModel,
		BedrockModelID: cfg.BedrockModelID,
	}
}

// BuildAdviceAdapter resolves the configured provider once. awsCfg is only
// used for Bedrock and may be nil otherwise. A provider that cannot be
// constructed degrades to the fallback pool and the error is returned for logging.
func BuildAdviceAdapter(ctx context.Context, cfg *appconfig.Config, awsCfg *aws.Config, m *metrics.AdviceMetrics, logger *logging.Logger) (*advice.Adapter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}

	settings := AdviceSettings(cfg)
	raw := strings.TrimSpace(cfg.AIProvider)
	if settings.Provider == advice.ProviderNone && raw != "" && !strings.EqualFold(raw, "none") {
		logger.Warn("unknown AI_PROVIDER; advice will use fallback sentences", "provider", raw)
	}

	deps := advice.Deps{
		HTTPClient: advice.NewHTTPClient(cfg.AdviceTimeout),
		Logger:     logger.WithComponent("advice"),
	}
	if settings.Provider == advice.ProviderBedrock && awsCfg != nil {
		deps.Bedrock = bedrockruntime.NewFromConfig(*awsCfg)
	}

	strategy, resolveErr := advice.Resolve(ctx, settings, deps)
	if resolveErr != nil {
		logger.Error("advice provider unavailable", "provider", settings.Provider.String(), "error", resolveErr)
	}
	if strategy.Provider() == advice.ProviderNone && settings.Provider != advice.ProviderNone {
		logger.Warn("advice provider missing credentials; using fallback sentences", "provider", settings.Provider.String())
	}

	adapter := advice.NewAdapter(strategy,
		advice.WithPolicy(advice.NewDiagnosticPolicy(cfg.AdviceVerboseProviders)),
		advice.WithMetrics(m),
		advice.WithLogger(logger.WithComponent("advice")),
	)
	logger.Info("advice provider resolved", "provider", adapter.Provider().String())
	return adapter, resolveErr
}
