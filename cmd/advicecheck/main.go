package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/joho/godotenv"

	"github.com/wolfman30/aika-health/cmd/mainconfig"
	"github.com/wolfman30/aika-health/internal/advice"
	"github.com/wolfman30/aika-health/internal/app/bootstrap"
	appconfig "github.com/wolfman30/aika-health/internal/config"
	"github.com/wolfman30/aika-health/pkg/logging"
)

const defaultPrompt = "I have had a mild headache since this morning."

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	prompt := flag.String("prompt", "", "symptom text to ask about")
	provider := flag.String("provider", "", "override AI_PROVIDER")
	flag.Parse()

	cfg := appconfig.Load()
	if *provider != "" {
		cfg.AIProvider = *provider
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.AdviceTimeout+10*time.Second)
	defer cancel()

	if err := run(ctx, os.Stdout, cfg, *prompt, logging.NewWithFormat("warn", "text")); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, out io.Writer, cfg *appconfig.Config, prompt string, logger *logging.Logger) error {
	var awsCfg *aws.Config
	if mainconfig.NeedsAWS(cfg) {
		loaded, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		awsCfg = &loaded
	}

	adapter, err := bootstrap.BuildAdviceAdapter(ctx, cfg, awsCfg, nil, logger)
	if err != nil {
		fmt.Fprintf(out, "provider setup failed: %v\n", err)
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		prompt = defaultPrompt
	}

	fmt.Fprintf(out, "Provider: %s\n", adapter.Provider())
	fmt.Fprintf(out, "Prompt:   %s\n", prompt)

	start := time.Now()
	text := adapter.GetAdvice(ctx, advice.SymptomPrompt(prompt))
	elapsed := time.Since(start)

	fmt.Fprintf(out, "Advice (%v):\n  %s\n", elapsed.Round(time.Millisecond), text)
	if advice.IsFallback(text) {
		fmt.Fprintln(out, "Note: this is a fallback sentence; the provider did not answer.")
	}
	return nil
}
