package config

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Netflix/go-env"

	"github.com/information-sharing-networks/kyc-demo/internal/sumsub"
)

// Environment variables with defaults
type Environment struct {

	// general settings
	Environment string `env:"ENVIRONMENT,default=dev"`
	LogLevel    string `env:"LOG_LEVEL,default=debug"`

	// http server settings
	Host                  string        `env:"HOST,default=0.0.0.0"`
	Port                  int           `env:"PORT,default=8080"`
	ReadTimeout           time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout          time.Duration `env:"WRITE_TIMEOUT,default=60s"`
	IdleTimeout           time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=10s"`
	RateLimitRPS          int32         `env:"RATE_LIMIT_RPS,default=100"`
	RateLimitBurst        int32         `env:"RATE_LIMIT_BURST,default=200"`
	MaxRequestBodyBytes   int64         `env:"MAX_REQUEST_BODY_BYTES,default=4096"`

	// Sumsub API settings.
	// The app token and secret key are not validated here: if they are missing, Sumsub rejects the signed request with a 401.
	SumsubBaseURL        string        `env:"SUMSUB_BASE_URL,default=https://api.sumsub.com"`
	SumsubAppToken       string        `env:"SUMSUB_APP_TOKEN"`
	SumsubSecretKey      string        `env:"SUMSUB_SECRET_KEY"`
	SumsubLevelName      string        `env:"SUMSUB_LEVEL_NAME,default=basic-kyc-level"`
	SumsubHTTPTimeout    time.Duration `env:"SUMSUB_HTTP_TIMEOUT,default=30s"`
	SumsubRateLimitRPS   int32         `env:"SUMSUB_RATE_LIMIT_RPS,default=0"`
	SumsubRateLimitBurst int32         `env:"SUMSUB_RATE_LIMIT_BURST,default=1"`
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"prod":    true,
	"staging": true,
}

// NewConfig loads environment variables and returns an Environment struct that contains the values
func NewConfig() (*Environment, error) {
	var cfg Environment

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Credentials returns the Sumsub credentials
func (c *Environment) Credentials() sumsub.Credentials {
	return sumsub.Credentials{
		AppToken:  c.SumsubAppToken,
		SecretKey: c.SumsubSecretKey,
	}
}

// SumsubClient creates the Sumsub API client. SUMSUB_HTTP_TIMEOUT applies to every call.
func (c *Environment) SumsubClient(logger *slog.Logger) *sumsub.Client {
	return sumsub.NewClient(
		c.SumsubBaseURL,
		sumsub.NewSigner(c.Credentials()),
		sumsub.WithHTTPClient(&http.Client{Timeout: c.SumsubHTTPTimeout}),
		sumsub.WithLogger(logger.With(slog.String("component", "sumsub"))),
		sumsub.WithRateLimit(float64(c.SumsubRateLimitRPS), int(c.SumsubRateLimitBurst)),
	)
}

// validateConfig checks the env variables
func validateConfig(cfg *Environment) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid ENVIRONMENT: %s", cfg.Environment)
	}

	u, err := url.Parse(cfg.SumsubBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("SUMSUB_BASE_URL must be an absolute URL, got %q", cfg.SumsubBaseURL)
	}
	if u.Path != "" && u.Path != "/" {
		return fmt.Errorf("SUMSUB_BASE_URL must not include a path, got %q", cfg.SumsubBaseURL)
	}

	if cfg.SumsubLevelName == "" {
		return fmt.Errorf("SUMSUB_LEVEL_NAME must not be empty")
	}
	if cfg.SumsubHTTPTimeout < 0 {
		return fmt.Errorf("SUMSUB_HTTP_TIMEOUT must be 0 (no timeout) or greater")
	}
	if cfg.SumsubRateLimitRPS < 0 {
		return fmt.Errorf("SUMSUB_RATE_LIMIT_RPS must be 0 (disabled) or greater")
	}
	if cfg.MaxRequestBodyBytes < 1 {
		return fmt.Errorf("MAX_REQUEST_BODY_BYTES must be at least 1")
	}

	return nil
}
