// Package config loads service configuration from environment variables and
// an optional YAML file. Defaults are applied for unset values and the result
// is validated on startup so that misconfiguration fails fast.
package config

import (
	"strconv"
	"time"
)

// Config holds all service configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Validation ValidationConfig
	Rate       RateLimitConfig
	Security   SecurityConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout bounds reading the request, including the upload (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout bounds writing the response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds run history storage settings. History is kept in
// memory when URL is empty.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether runs are persisted to PostgreSQL.
func (c *DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// ValidationConfig holds workbook validation settings.
type ValidationConfig struct {
	// MaxFileSize is the maximum accepted workbook size in bytes (default: 50MB)
	MaxFileSize int64 `env:"VALIDATE_MAX_FILE_SIZE" default:"52428800"`

	// MaxConcurrent is the maximum number of parallel validations (default: 5)
	MaxConcurrent int `env:"VALIDATE_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for a validation slot (default: 30s)
	MaxWaitTime time.Duration `env:"VALIDATE_MAX_WAIT_TIME" default:"30s"`

	// SchemaFile is an optional YAML file adding columns to the built-in tables
	SchemaFile string `env:"SCHEMA_FILE"`

	// HistorySize is the number of runs kept in memory without a database (default: 100)
	HistorySize int `env:"VALIDATE_HISTORY_SIZE" default:"100"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// ValidateLimit is requests per minute for the validate endpoint (default: 20)
	ValidateLimit int `env:"RATE_LIMIT_VALIDATE" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// APIKeys is a comma-separated list of keys accepted on /api routes
	APIKeys []string `env:"API_KEYS"`

	// RequireAPIKey enforces API key auth on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
