package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds application configuration
type Config struct {
	DatabaseURL     string
	ServerPort      string
	FrontendURL     string
	AuthIssuer      string
	AuthJWKSURL     string
	AuthAudience    string
	RedisURL        string
	RateLimitRate   string
	EnableHSTS      bool
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables. REDIS_URL is
// optional; leaving it empty disables rate limiting.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		FrontendURL:     getEnv("FRONTEND_URL", "http://localhost:3000"),
		AuthIssuer:      getEnv("AUTH_ISSUER", ""),
		AuthJWKSURL:     getEnv("AUTH_JWKS_URL", ""),
		AuthAudience:    getEnv("AUTH_AUDIENCE", ""),
		RedisURL:        getEnv("REDIS_URL", ""),
		RateLimitRate:   getEnv("RATE_LIMIT", "100-M"),
		EnableHSTS:      getEnvBool("ENABLE_HSTS", false),
		ServerDebugMode: getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:     getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.AuthIssuer == "" {
		return nil, fmt.Errorf("AUTH_ISSUER is required")
	}

	if cfg.AuthJWKSURL == "" {
		cfg.AuthJWKSURL = strings.TrimSuffix(cfg.AuthIssuer, "/") + "/.well-known/jwks.json"
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
