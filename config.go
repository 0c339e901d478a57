package acp

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// DefaultAPIVersion is sent in the API-Version header unless overridden.
const DefaultAPIVersion = "2025-09-29"

// DefaultAcceptLanguage is sent in the Accept-Language header unless overridden.
const DefaultAcceptLanguage = "en-US"

// Config holds the connection settings of a [Client].
type Config struct {
	BaseURL        string        `env:"BASE_URL"`
	APIKey         string        `env:"API_KEY"`
	SigningSecret  string        `env:"SIGNING_SECRET"`
	WebhookSecret  string        `env:"WEBHOOK_SECRET"`
	APIVersion     string        `env:"API_VERSION" envDefault:"2025-09-29"`
	AcceptLanguage string        `env:"ACCEPT_LANGUAGE" envDefault:"en-US"`
	Timeout        time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// LoadConfig reads Config from ACP_-prefixed environment variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "ACP_"}); err != nil {
		return Config{}, fmt.Errorf("acp: load config: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.BaseURL == "" {
		return validationErrorf("base URL is required")
	}
	if c.APIKey == "" {
		return validationErrorf("API key is required")
	}
	if c.SigningSecret == "" {
		return validationErrorf("signing secret is required")
	}
	return nil
}
