// Package config provides configuration for the companion.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/xiaot623/gogo/companion/internal/domain"
)

// Config holds the companion configuration.
type Config struct {
	// Server settings
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"file:companion.db?cache=shared&mode=rwc"`

	// Logging
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogProduction bool   `env:"LOG_PRODUCTION" envDefault:"false"`

	Personality domain.Personality `env:"THERAPIST_PERSONALITY" envDefault:"empathetic"`
	// PolicyFile replaces the built-in technique policy with a rego module.
	PolicyFile string `env:"POLICY_FILE"`
	// RandomSeed seeds every random source; 0 seeds from the clock.
	RandomSeed uint64 `env:"RANDOM_SEED" envDefault:"0"`

	Delay DelayConfig
	LLM   LLMConfig
	WS    WSConfig
}

// DelayConfig configures reply pacing.
type DelayConfig struct {
	Enabled     bool    `env:"DELAY_ENABLED" envDefault:"true"`
	BaseMs      int     `env:"DELAY_BASE_MS" envDefault:"1000"`
	Variability float64 `env:"DELAY_VARIABILITY" envDefault:"0.3"`
	ReadingWPM  float64 `env:"DELAY_READING_WPM" envDefault:"200"`
	TypingWPM   float64 `env:"DELAY_TYPING_WPM" envDefault:"40"`
}

// Base returns the base thinking delay.
func (d DelayConfig) Base() time.Duration {
	return time.Duration(d.BaseMs) * time.Millisecond
}

// LLMConfig configures the optional external text generator.
type LLMConfig struct {
	Enabled     bool          `env:"LLM_ENABLED" envDefault:"false"`
	BaseURL     string        `env:"LLM_BASE_URL" envDefault:"https://api.venice.ai/api/v1"`
	APIKey      string        `env:"LLM_API_KEY"`
	Model       string        `env:"LLM_MODEL" envDefault:"venice-uncensored"`
	TimeoutMs   int           `env:"LLM_TIMEOUT_MS" envDefault:"15000"`
	RatePerMin  int           `env:"LLM_RATE_PER_MIN" envDefault:"20"`
	ValidateTTL time.Duration `env:"LLM_VALIDATE_TTL" envDefault:"10m"`
}

// Timeout returns the per-call generation timeout.
func (l LLMConfig) Timeout() time.Duration {
	return time.Duration(l.TimeoutMs) * time.Millisecond
}

// WSConfig configures the WebSocket live feed.
type WSConfig struct {
	PingInterval   time.Duration `env:"WS_PING_INTERVAL" envDefault:"30s"`
	ReadTimeout    time.Duration `env:"WS_READ_TIMEOUT" envDefault:"60s"`
	WriteTimeout   time.Duration `env:"WS_WRITE_TIMEOUT" envDefault:"10s"`
	MaxMessageSize int64         `env:"WS_MAX_MESSAGE_SIZE" envDefault:"65536"`
}

// Load reads dotenv files (".env" when none are given), then the
// environment. Variables already set in the environment win over dotenv
// values, and missing dotenv files are skipped.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.HTTPPort < 1 || c.HTTPPort > 65535:
		return fmt.Errorf("%w: HTTP_PORT %d out of range", domain.ErrInvalidConfiguration, c.HTTPPort)
	case !c.Personality.Valid():
		return fmt.Errorf("%w: unknown THERAPIST_PERSONALITY %q", domain.ErrInvalidConfiguration, c.Personality)
	case c.Delay.BaseMs < 0:
		return fmt.Errorf("%w: DELAY_BASE_MS must not be negative", domain.ErrInvalidConfiguration)
	case c.Delay.Variability < 0 || c.Delay.Variability > 1:
		return fmt.Errorf("%w: DELAY_VARIABILITY must be within [0,1]", domain.ErrInvalidConfiguration)
	case c.Delay.ReadingWPM <= 0 || c.Delay.TypingWPM <= 0:
		return fmt.Errorf("%w: reading and typing speeds must be positive", domain.ErrInvalidConfiguration)
	case c.LLM.Enabled && c.LLM.BaseURL == "":
		return fmt.Errorf("%w: LLM_BASE_URL is required when LLM_ENABLED", domain.ErrInvalidConfiguration)
	}
	return nil
}
