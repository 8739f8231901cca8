package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const developmentJWTSecret = "aika-dev-secret-change-me"

// Config holds application configuration
type Config struct {
	Port               string
	Env                string
	LogLevel           string
	LogFormat          string
	DatabaseURL        string
	JWTSecret          string
	TokenTTL           time.Duration
	CORSAllowedOrigins []string

	// Advice provider configuration
	AIProvider             string
	AdviceTimeout          time.Duration
	AdviceVerboseProviders []string
	OpenAIAPIKey           string
	OpenAIModel            string
	OpenAIBaseURL          string
	HFAPIKey               string
	HFModel                string
	HFBaseURL              string
	HFMaxNewTokens         int
	OllamaURL              string
	OllamaModel            string
	GeminiAPIKey           string
	GeminiModel            string
	BedrockModelID         string

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Photo uploads
	PhotoBucket    string
	UploadDir      string
	MaxUploadBytes int64

	RedisAddr     string
	RedisPassword string

	// Email configuration
	SendGridAPIKey string
	EmailFrom      string
	EmailFromName  string
	SESEnabled     bool

	AuthRateLimitRPS   float64
	AuthRateLimitBurst int
}

// Load reads configuration from a .env file (when present) and environment variables
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          getEnv("LOG_FORMAT", "json"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		TokenTTL:           getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),

		AIProvider:             strings.ToLower(strings.TrimSpace(getEnv("AI_PROVIDER", "openai"))),
		AdviceTimeout:          getEnvAsDuration("ADVICE_TIMEOUT", 90*time.Second),
		AdviceVerboseProviders: getEnvAsSlice("ADVICE_VERBOSE_PROVIDERS", []string{"huggingface", "ollama"}),
		OpenAIAPIKey:           getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:            getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:          getEnv("OPENAI_BASE_URL", ""),
		HFAPIKey:               getEnv("HF_API_KEY", ""),
		HFModel:                getEnv("HF_MODEL", "HuggingFaceTB/SmolLM3-3B"),
		HFBaseURL:              getEnv("HF_BASE_URL", "https://api-inference.huggingface.co"),
		HFMaxNewTokens:         getEnvAsInt("HF_MAX_NEW_TOKENS", 180),
		OllamaURL:              getEnv("OLLAMA_URL", "http://127.0.0.1:11434"),
		OllamaModel:            getEnv("OLLAMA_MODEL", "mistral"),
		GeminiAPIKey:           getEnv("GEMINI_API_KEY", ""),
		GeminiModel:            getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		BedrockModelID:         getEnv("BEDROCK_MODEL_ID", ""),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		PhotoBucket:    getEnv("PHOTO_BUCKET", ""),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 10<<20)),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		EmailFrom:      getEnv("EMAIL_FROM", ""),
		EmailFromName:  getEnv("EMAIL_FROM_NAME", "Aika Health"),
		SESEnabled:     getEnvAsBool("SES_ENABLED", false),

		AuthRateLimitRPS:   getEnvAsFloat("AUTH_RATE_LIMIT_RPS", 1),
		AuthRateLimitBurst: getEnvAsInt("AUTH_RATE_LIMIT_BURST", 5),
	}
	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = developmentJWTSecret
	}
	return cfg
}

// IsProduction reports whether the service runs with production safeguards.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// Validate checks settings that have no safe default.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required in production")
	}
	if c.AdviceTimeout <= 0 {
		return errors.New("config: ADVICE_TIMEOUT must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("config: MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsSlice splits a comma-separated variable. A variable that is set but
// blank yields an empty slice; an unset variable yields the default.
func getEnvAsSlice(key string, defaultValue []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
