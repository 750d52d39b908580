package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (VESTI_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:8080" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (VESTI_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	Rates       RateAPIConfig
	Lookup      LookupAPIConfig
	Payment     PaymentConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// RateAPIConfig connects the shipping rate API.
type RateAPIConfig struct {
	BaseURL string        `usage:"Shipping rate API base URL" flag:"rates-url"`
	APIKey  string        `usage:"Shipping rate API key" flag:"rates-key"`
	Timeout time.Duration `default:"10s" usage:"Shipping rate API request timeout" flag:"rates-timeout"`
}

// LookupAPIConfig connects the destination lookup API.
type LookupAPIConfig struct {
	BaseURL string        `usage:"Destination lookup API base URL" flag:"lookup-url"`
	APIKey  string        `usage:"Destination lookup API key" flag:"lookup-key"`
	Timeout time.Duration `default:"5s" usage:"Destination lookup request timeout" flag:"lookup-timeout"`
}

// PaymentConfig connects the payment gateway.
type PaymentConfig struct {
	BaseURL   string        `usage:"Payment gateway base URL" flag:"payment-url"`
	ServerKey string        `usage:"Payment gateway server key" flag:"payment-key"`
	Timeout   time.Duration `default:"15s" usage:"Payment gateway request timeout" flag:"payment-timeout"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "VESTI",
		Files:     []string{"config.yaml", "/etc/vesti/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set VESTI_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like DATABASE_URL and PORT to the
// application's VESTI_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
