package advice

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/wolfman30/aika-health/internal/observability/metrics"
	"github.com/wolfman30/aika-health/pkg/logging"
	"go.opentelemetry.io/otel/attribute"
)

// Adapter turns strategy results into user-facing advice. GetAdvice never
// fails and always returns non-empty text carrying the disclaimer.
type Adapter struct {
	strategy Strategy
	policy   DiagnosticPolicy
	metrics  *metrics.AdviceMetrics
	logger   *logging.Logger
	intn     func(int) int
}

// Option customizes an Adapter.
type Option func(*Adapter)

// WithPolicy overrides which providers surface upstream failures verbatim.
func WithPolicy(policy DiagnosticPolicy) Option {
	return func(a *Adapter) {
		if policy != nil {
			a.policy = policy
		}
	}
}

// WithMetrics records outcomes and latency.
func WithMetrics(m *metrics.AdviceMetrics) Option {
	return func(a *Adapter) {
		a.metrics = m
	}
}

// WithLogger sets the operator log channel.
func WithLogger(logger *logging.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRandom replaces the source used to pick fallback sentences.
func WithRandom(intn func(int) int) Option {
	return func(a *Adapter) {
		if intn != nil {
			a.intn = intn
		}
	}
}

// NewAdapter wraps strategy. A nil strategy behaves like NoneStrategy.
func NewAdapter(strategy Strategy, opts ...Option) *Adapter {
	if strategy == nil {
		strategy = NoneStrategy{}
	}
	a := &Adapter{
		strategy: strategy,
		policy:   DefaultDiagnosticPolicy(),
		logger:   logging.Default(),
		intn:     rand.IntN,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Provider reports the provider resolved at startup.
func (a *Adapter) Provider() Provider {
	return a.strategy.Provider()
}

// Close releases the strategy's client when it holds one.
func (a *Adapter) Close() error {
	if a == nil {
		return nil
	}
	if c, ok := a.strategy.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// GetAdvice produces advice text for prompt.
func (a *Adapter) GetAdvice(ctx context.Context, prompt string) string {
	provider := a.strategy.Provider()
	ctx, span := tracer.Start(ctx, "advice.get")
	defer span.End()
	span.SetAttributes(attribute.String("aika.advice.provider", provider.String()))

	start := time.Now()
	text, err := a.strategy.Generate(ctx, prompt)
	result, outcome := a.settle(provider, text, err)
	span.SetAttributes(attribute.String("aika.advice.outcome", outcome))
	a.metrics.ObserveAdvice(provider.String(), outcome, time.Since(start).Seconds())
	return result
}

func (a *Adapter) settle(provider Provider, text string, err error) (string, string) {
	if err == nil {
		if text = strings.TrimSpace(text); text != "" {
			return WithDisclaimer(text), metrics.OutcomeOK
		}
		err = ErrEmptyResponse
	}

	if errors.Is(err, ErrNotConfigured) {
		return pickFallback(a.intn), metrics.OutcomeFallback
	}

	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr) && a.policy.Verbose(provider):
		a.logger.Warn("advice provider returned error status",
			"provider", provider.String(),
			"status", statusErr.StatusCode,
		)
		return statusErr.Diagnostic(), metrics.OutcomeDiagnostic
	case errors.Is(err, ErrEmptyResponse) && provider == ProviderLocalGeneration:
		a.logger.Warn("advice provider returned empty response", "provider", provider.String())
		return emptyLocalResponse, metrics.OutcomeEmpty
	case errors.Is(err, ErrMalformedResponse) && provider == ProviderHostedInference && a.policy.Verbose(provider):
		a.logger.Warn("advice provider returned malformed response",
			"provider", provider.String(),
			"error", err.Error(),
		)
		return malformedInferenceBody, metrics.OutcomeDiagnostic
	}

	a.logger.Warn("advice provider failed, using fallback",
		"provider", provider.String(),
		"error", err.Error(),
	)
	return pickFallback(a.intn), metrics.OutcomeFallback
}
