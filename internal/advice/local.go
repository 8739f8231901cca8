package advice

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wolfman30/aika-health/pkg/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultOllamaURL = "http://127.0.0.1:11434"
	maxStreamLine    = 1 << 20
)

// LocalConfig configures the local-generation strategy.
type LocalConfig struct {
	URL   string
	Model string
}

// LocalStrategy calls a local generation server and buffers its NDJSON stream.
type LocalStrategy struct {
	cfg        LocalConfig
	httpClient *http.Client
	logger     *logging.Logger
}

type localRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type localFragment struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// NewLocalStrategy returns a strategy posting to {URL}/api/generate.
func NewLocalStrategy(cfg LocalConfig, httpClient *http.Client, logger *logging.Logger) (*LocalStrategy, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("advice: ollama model is required")
	}
	if cfg.URL == "" {
		cfg.URL = defaultOllamaURL
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if httpClient == nil {
		httpClient = NewHTTPClient(0)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LocalStrategy{cfg: cfg, httpClient: httpClient, logger: logger}, nil
}

func (s *LocalStrategy) Provider() Provider { return ProviderLocalGeneration }

func (s *LocalStrategy) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "advice.ollama")
	defer span.End()
	span.SetAttributes(attribute.String("aika.advice.model", s.cfg.Model))

	payload, err := json.Marshal(localRequest{
		Model:  s.cfg.Model,
		Prompt: EnglishOnlyPrefix + prompt,
		Stream: true,
	})
	if err != nil {
		return "", fmt.Errorf("advice: encode ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("advice: build ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("advice: ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		return "", &StatusError{
			Provider:   ProviderLocalGeneration,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	text, err := s.readStream(resp.Body)
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return text, nil
}

// readStream concatenates the response fragments of an NDJSON body. Blank and
// undecodable lines are skipped.
func (s *LocalStrategy) readStream(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)

	var out strings.Builder
	skipped := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var frag localFragment
		if err := json.Unmarshal(line, &frag); err != nil {
			skipped++
			continue
		}
		if frag.Error != "" {
			return "", fmt.Errorf("advice: ollama stream error: %s", frag.Error)
		}
		out.WriteString(frag.Response)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("advice: read ollama stream: %w", err)
	}
	if skipped > 0 {
		s.logger.Debug("skipped undecodable ollama fragments", "count", skipped)
	}

	text := strings.TrimSpace(out.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
