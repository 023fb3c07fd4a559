package config

import (
	"fmt"
	"net"
	"time"

	"github.com/caarlos0/env/v6"

	"shorty/internal/shortener"
)

// Store backends
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all application configurations
type Config struct {
	// Server Configuration
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Host        string `env:"SHORTENER_HOST" envDefault:"127.0.0.1"`
	Port        string `env:"SHORTENER_PORT" envDefault:"8088"`

	// Store selection
	StoreBackend  string        `env:"SHORTENER_STORE_BACKEND" envDefault:"redis"`
	PostgresDSN   string        `env:"SHORTENER_POSTGRES_DSN"`
	PurgeInterval time.Duration `env:"SHORTENER_PURGE_INTERVAL" envDefault:"10m"`

	// Redis configuration
	RedisHost     string `env:"SHORTENER_REDIS_HOST" envDefault:"127.0.0.1"`
	RedisPort     string `env:"SHORTENER_REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"SHORTENER_REDIS_PASSWORD"`
	RedisDB       int    `env:"SHORTENER_REDIS_DB" envDefault:"0"`

	// Shortener settings
	RateLimitPeriod         int    `env:"SHORTENER_RATE_LIMIT_PERIOD" envDefault:"600"` // seconds
	RateLimit               int64  `env:"SHORTENER_RATE_LIMIT" envDefault:"10"`         // <= 0 disables
	IDLength                int    `env:"SHORTENER_ID_LENGTH" envDefault:"10"`
	IDAlphabetChars         string `env:"SHORTENER_ID_ALPHABET"`
	IDGenerationMaxAttempts int    `env:"SHORTENER_ID_GENERATION_MAX_ATTEMPTS" envDefault:"10"`
	APIKeyMandatory         bool   `env:"SHORTENER_API_KEY_MANDATORY" envDefault:"true"`

	// Per client IP throttle in front of the HTTP server, <= 0 disables
	IPRateLimitPerMinute int `env:"SHORTENER_IP_RATE_LIMIT_PER_MINUTE" envDefault:"0"`
	// Proxies whose X-Forwarded-For is believed; empty trusts none
	TrustedProxies []string `env:"SHORTENER_TRUSTED_PROXIES" envSeparator:","`
}

// LoadConfig loads configuration from environment variables
// Returns error if a value cannot be parsed or fails validation
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration is present and valid
func (c *Config) Validate() error {
	if c.IDLength < 1 || c.IDLength > 64 {
		return fmt.Errorf("SHORTENER_ID_LENGTH must be between 1 and 64, got %d", c.IDLength)
	}

	if c.IDGenerationMaxAttempts < 1 {
		return fmt.Errorf("SHORTENER_ID_GENERATION_MAX_ATTEMPTS must be at least 1, got %d", c.IDGenerationMaxAttempts)
	}

	if c.RateLimit > 0 && c.RateLimitPeriod < 1 {
		return fmt.Errorf("SHORTENER_RATE_LIMIT_PERIOD must be at least 1 second when rate limiting is enabled")
	}

	if c.Port == "" {
		return fmt.Errorf("SHORTENER_PORT is required")
	}

	switch c.StoreBackend {
	case BackendRedis:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("SHORTENER_POSTGRES_DSN is required when SHORTENER_STORE_BACKEND is postgres")
		}
	default:
		return fmt.Errorf("SHORTENER_STORE_BACKEND must be %q or %q, got %q", BackendRedis, BackendPostgres, c.StoreBackend)
	}

	return nil
}

// IDAlphabet returns the configured alphabet, a-zA-Z0-9 when unset
func (c *Config) IDAlphabet() []rune {
	if c.IDAlphabetChars == "" {
		return []rune(shortener.DefaultAlphabet)
	}
	return []rune(c.IDAlphabetChars)
}

// RateLimitWindow returns the rate limit period as a duration
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitPeriod) * time.Second
}

// RedisAddr returns host:port of the Redis server
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, c.RedisPort)
}

// ListenAddr returns host:port the HTTP server binds to
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
