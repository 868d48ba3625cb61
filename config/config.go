package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultFreeTierModels are the text-generation models open to free-tier accounts.
var DefaultFreeTierModels = []string{
	"google/gemma-3-27b-it:free",
	"openai/gpt-oss-20b:free",
	"moonshotai/kimi-k2:free",
	"z-ai/glm-4.5-air:free",
}

// DefaultFreeTierMessageLimit is the free-tier message allowance. It is
// enforced elsewhere; this service only reports it.
const DefaultFreeTierMessageLimit = 6

// Config represents the complete application configuration
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Access        AccessConfig
	Catalog       CatalogConfig
	Enrichment    EnrichmentConfig
	Observability ObservabilityConfig
	Environment   string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig holds PostgreSQL configuration for plan-tier lookups.
// The database is optional; when neither DATABASE_URL nor DB_HOST is set,
// plan tiers come from session token claims only.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	PlanCacheSize    int
	PlanCacheTTL     time.Duration
}

// AuthConfig holds session token validation settings
type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
}

// AccessConfig holds the allow-lists and demo mode baseline.
// A policy file, when present, overrides these values and can be hot-reloaded.
type AccessConfig struct {
	GuestModels          []string
	DemoModels           []string
	FreeTierModels       []string
	DemoModeEnabled      bool
	DemoRestrictLoggedIn bool
	DemoRestrictGuests   bool
	FreeTierMessageLimit int
	PolicyFile           string
	WatchPolicyFile      bool
}

// CatalogConfig holds model catalog settings
type CatalogConfig struct {
	File string
}

// EnrichmentConfig holds background enrichment settings
type EnrichmentConfig struct {
	Enabled      bool
	BaseURL      string
	APIKey       string
	WaitTimeout  time.Duration
	FetchTimeout time.Duration
}

// ObservabilityConfig holds monitoring and logging configuration
type ObservabilityConfig struct {
	LogLevel       string
	LogFormat      string // json or console
	MetricsEnabled bool
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:*", "https://*"}),
		},
		Database: loadDatabaseConfig(),
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", ""),
			JWTIssuer: getEnv("AUTH_JWT_ISSUER", ""),
		},
		Access: AccessConfig{
			GuestModels:          getEnvAsList("GUEST_ALLOWED_MODELS", DefaultFreeTierModels),
			DemoModels:           getEnvAsList("DEMO_ALLOWED_MODELS", DefaultFreeTierModels),
			FreeTierModels:       getEnvAsList("FREE_TIER_ALLOWED_MODELS", DefaultFreeTierModels),
			DemoModeEnabled:      getEnvAsBool("DEMO_MODE_ENABLED", false),
			DemoRestrictLoggedIn: getEnvAsBool("DEMO_RESTRICT_LOGGED_IN", true),
			DemoRestrictGuests:   getEnvAsBool("DEMO_RESTRICT_GUESTS", true),
			FreeTierMessageLimit: getEnvAsInt("FREE_TIER_MESSAGE_LIMIT", DefaultFreeTierMessageLimit),
			PolicyFile:           getEnv("ACCESS_POLICY_FILE", ""),
			WatchPolicyFile:      getEnvAsBool("ACCESS_POLICY_WATCH", true),
		},
		Catalog: CatalogConfig{
			File: getEnv("MODEL_CATALOG_FILE", ""),
		},
		Enrichment: EnrichmentConfig{
			Enabled:      getEnvAsBool("ENRICHMENT_ENABLED", true),
			BaseURL:      getEnv("ENRICHMENT_BASE_URL", "https://openrouter.ai/api/v1"),
			APIKey:       getEnv("OPENROUTER_API_KEY", ""),
			WaitTimeout:  getEnvAsDuration("ENRICHMENT_WAIT_TIMEOUT", 10*time.Second),
			FetchTimeout: getEnvAsDuration("ENRICHMENT_FETCH_TIMEOUT", 60*time.Second),
		},
		Observability: ObservabilityConfig{
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFormat:      getEnv("LOG_FORMAT", "json"),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	if c.Database.Enabled() && c.Database.ConnectionString == "" {
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	// Session tokens must be verifiable in production
	if c.IsProduction() && c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth JWT secret is required in production")
	}

	if c.Access.FreeTierMessageLimit < 0 {
		return fmt.Errorf("free tier message limit cannot be negative")
	}

	if c.Enrichment.Enabled {
		if _, err := url.ParseRequestURI(c.Enrichment.BaseURL); err != nil {
			return fmt.Errorf("invalid enrichment base URL: %w", err)
		}
	}
	if c.Enrichment.WaitTimeout < 0 {
		return fmt.Errorf("enrichment wait timeout cannot be negative")
	}

	// Observability validation
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("log level is required")
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool {
	return c.ConnectionString != "" || c.Host != ""
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password). Parses ConnectionString when set.
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			host := u.Hostname()
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			db := strings.TrimPrefix(u.Path, "/")
			return fmt.Sprintf("host=%s port=%s database=%s", host, port, db)
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// loadDatabaseConfig loads database config from DATABASE_URL or DB_* env vars
func loadDatabaseConfig() DatabaseConfig {
	cfg := DatabaseConfig{
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		PlanCacheSize:   getEnvAsInt("PLAN_CACHE_SIZE", 10000),
		PlanCacheTTL:    getEnvAsDuration("PLAN_CACHE_TTL", time.Minute),
	}

	if dbURL := getEnv("DATABASE_URL", ""); dbURL != "" {
		cfg.ConnectionString = dbURL
		return cfg
	}

	cfg.Host = getEnv("DB_HOST", "")
	cfg.Port = getEnvAsInt("DB_PORT", 5432)
	cfg.User = getEnv("DB_USER", "")
	cfg.Password = getEnv("DB_PASSWORD", "")
	cfg.Database = getEnv("DB_NAME", "")
	cfg.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 8080)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 8080
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsList parses a comma-separated list. A variable set to "-" yields an
// empty list, so an allow-list can be emptied without falling back to defaults.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(valueStr) == "" {
		return append([]string(nil), defaultValue...)
	}
	if strings.TrimSpace(valueStr) == "-" {
		return []string{}
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
