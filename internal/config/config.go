package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/p-blackswan/site-agent/internal/site"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	DBPath      string `envconfig:"DB_PATH" default:"siteagent.db"`

	// Model transport (optional: without a key the chat endpoint is disabled)
	AnthropicAPIKey string        `envconfig:"ANTHROPIC_API_KEY"`
	AnthropicModel  string        `envconfig:"ANTHROPIC_MODEL"`
	LLMMaxTokens    int           `envconfig:"LLM_MAX_TOKENS" default:"4096"`
	LLMTemperature  *float64      `envconfig:"LLM_TEMPERATURE"`
	LLMTimeout      time.Duration `envconfig:"LLM_TIMEOUT" default:"90s"`
	LLMRetries      int           `envconfig:"LLM_RETRIES" default:"3"`
	HistoryLimit    int           `envconfig:"HISTORY_LIMIT" default:"20"`

	// API
	AuthMode       string `envconfig:"AUTH_MODE" default:"api-key"` // "api-key", "jwt" or "none"
	APIKey         string `envconfig:"API_KEY"`
	JWTSecret      string `envconfig:"JWT_SECRET"`
	RateLimitRPS   int    `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst int    `envconfig:"RATE_LIMIT_BURST" default:"40"`
	CORSOrigins    string `envconfig:"CORS_ORIGINS"`

	// Style fallbacks for fields a site leaves unset
	DefaultAccentColor string `envconfig:"DEFAULT_ACCENT_COLOR" default:"#f59e0b"`
	DefaultHeadingFont string `envconfig:"DEFAULT_HEADING_FONT" default:"Inter"`
	DefaultBodyFont    string `envconfig:"DEFAULT_BODY_FONT" default:"Inter"`

	// Path to a YAML business-type catalog; empty uses the built-in one.
	DefaultsCatalog string `envconfig:"DEFAULTS_CATALOG"`
}

// LLMEnabled returns true if a model API key is configured.
func (c *Config) LLMEnabled() bool {
	return c.AnthropicAPIKey != ""
}

// StyleDefaults returns the configured style fallbacks.
func (c *Config) StyleDefaults() site.StyleDefaults {
	return site.StyleDefaults{
		AccentColor: c.DefaultAccentColor,
		HeadingFont: c.DefaultHeadingFont,
		BodyFont:    c.DefaultBodyFont,
	}
}

// CORSOriginList returns the parsed list of allowed CORS origins.
func (c *Config) CORSOriginList() []string {
	if c.CORSOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, o := range parts {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch c.AuthMode {
	case "none":
	case "api-key":
		if c.APIKey == "" {
			return fmt.Errorf("AUTH_MODE=api-key requires API_KEY")
		}
	case "jwt":
		if c.JWTSecret == "" {
			return fmt.Errorf("AUTH_MODE=jwt requires JWT_SECRET")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}
	if c.LLMTemperature != nil && (*c.LLMTemperature < 0 || *c.LLMTemperature > 1) {
		return fmt.Errorf("LLM_TEMPERATURE must be within [0, 1], got %v", *c.LLMTemperature)
	}
	if !site.IsHexColor(c.DefaultAccentColor) {
		return fmt.Errorf("DEFAULT_ACCENT_COLOR %q is not a hex color", c.DefaultAccentColor)
	}
	return nil
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	return LoadWithPrefix("")
}

// LoadWithPrefix reads configuration with a prefix.
func LoadWithPrefix(prefix string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("loading config with prefix %q: %w", prefix, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
