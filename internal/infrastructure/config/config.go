// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml)
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	dbPath := cfg.Storage.DatabasePath
//	cookieFile := cfg.Session.CookieFile
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	Providers     ProvidersConfig     `yaml:"providers"`
	Session       SessionConfig       `yaml:"session"`
	Storage       StorageConfig       `yaml:"storage"`
	API           APIConfig           `yaml:"api"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// SessionConfig holds browser session configuration.
//
// CookieFile points at a JSON cookie export covering every storefront
// domain the enabled providers need.
type SessionConfig struct {
	CookieFile string `yaml:"cookie_file"`
}

// APIConfig holds HTTP API server settings
type APIConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ProvidersConfig holds provider-specific configuration
type ProvidersConfig struct {
	Amazon  AmazonConfig  `yaml:"amazon"`
	Costco  CostcoConfig  `yaml:"costco"`
	Walmart WalmartConfig `yaml:"walmart"`
}

// AmazonConfig holds Amazon-specific settings.
//
// Amazon is the only storefront whose order history paginates, so it is
// the only provider with a MaxPages knob.
type AmazonConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Year        int     `yaml:"year"`
	MaxPages    int     `yaml:"max_pages"`
	Concurrency int     `yaml:"concurrency"`
	RateLimit   float64 `yaml:"rate_limit"`
}

// CostcoConfig holds Costco-specific settings
type CostcoConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Year        int     `yaml:"year"`
	Concurrency int     `yaml:"concurrency"`
	RateLimit   float64 `yaml:"rate_limit"`
}

// WalmartConfig holds Walmart-specific settings
type WalmartConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Year        int     `yaml:"year"`
	Concurrency int     `yaml:"concurrency"`
	RateLimit   float64 `yaml:"rate_limit"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and parses the config file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${SYNC_COOKIE_FILE})
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	return &Config{
		Storage: StorageConfig{
			DatabasePath: getEnv("SYNC_DB_PATH", "order_sync.db"),
		},
		Session: SessionConfig{
			CookieFile: getEnv("SYNC_COOKIE_FILE", "cookies.json"),
		},
		API: APIConfig{
			Port:           getEnvInt("API_PORT", 8080),
			AllowedOrigins: splitList(getEnv("API_ALLOWED_ORIGINS", "")),
		},
		Providers: ProvidersConfig{
			Amazon: AmazonConfig{
				Enabled:     true,
				Year:        getEnvInt("AMAZON_YEAR", 0),
				MaxPages:    getEnvInt("AMAZON_MAX_PAGES", 0),
				Concurrency: getEnvInt("AMAZON_CONCURRENCY", 0),
				RateLimit:   getEnvFloat("AMAZON_RATE_LIMIT", 0),
			},
			Costco: CostcoConfig{
				Enabled:     true,
				Year:        getEnvInt("COSTCO_YEAR", 0),
				Concurrency: getEnvInt("COSTCO_CONCURRENCY", 0),
				RateLimit:   getEnvFloat("COSTCO_RATE_LIMIT", 0),
			},
			Walmart: WalmartConfig{
				Enabled:     true,
				Year:        getEnvInt("WALMART_YEAR", 0),
				Concurrency: getEnvInt("WALMART_CONCURRENCY", 0),
				RateLimit:   getEnvFloat("WALMART_RATE_LIMIT", 0),
			},
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "text"),
			},
		},
	}
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnv_WithPath("config.yaml")
}

// LoadOrEnv_WithPath tries to load from specified path, falls back to environment variables
func LoadOrEnv_WithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

// getEnvFloat retrieves a float environment variable with a fallback default
func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		var result float64
		if _, err := fmt.Sscanf(val, "%f", &result); err == nil {
			return result
		}
	}
	return fallback
}

// splitList splits a comma-separated environment value into a slice,
// dropping empty entries
func splitList(val string) []string {
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Resolve returns the first non-empty value among the config value and the
// named environment variables, in order
// Usage: Resolve(cfg.Session.CookieFile, "SYNC_COOKIE_FILE")
func (c *Config) Resolve(configValue string, envVarNames ...string) string {
	// First, try the config value
	if configValue != "" {
		return configValue
	}

	// Then try each environment variable in order
	for _, envVar := range envVarNames {
		if val := os.Getenv(envVar); val != "" {
			return val
		}
	}

	return ""
}
