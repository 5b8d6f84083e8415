package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Config represents the complete application configuration.
// Configuration is loaded from a JSON file (see Load).
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Engine    EngineConfig    `json:"engine"`
	Auth      AuthConfig      `json:"auth"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	// Port is the HTTP server port (default: 8080)
	Port string `json:"port"`

	// Host is the server bind address (default: "0.0.0.0")
	Host string `json:"host"`

	// TLSEnabled determines if HTTPS should be used
	TLSEnabled bool `json:"tls_enabled"`

	// TLSCertFile is the path to the TLS certificate
	TLSCertFile string `json:"tls_cert_file"`

	// TLSKeyFile is the path to the TLS private key
	TLSKeyFile string `json:"tls_key_file"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	// Driver is the database driver. Only "postgres" is supported.
	Driver string `json:"driver"`

	// Host is the database server hostname
	Host string `json:"host"`

	// Port is the database server port
	Port int `json:"port"`

	// Database is the database name
	Database string `json:"database"`

	// Username for database authentication
	Username string `json:"username"`

	// Password for database authentication (should be loaded from environment)
	Password string `json:"password"`

	// SSLMode for PostgreSQL connections (disable, require, verify-ca, verify-full)
	SSLMode string `json:"ssl_mode"`

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int `json:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int `json:"max_idle_conns"`
}

// EngineConfig controls the deconfliction engine's broad-phase index.
type EngineConfig struct {
	// GridSize is the spatial index cell edge length in metres.
	GridSize float64 `json:"grid_size"`
}

// AuthConfig contains operator authentication settings.
type AuthConfig struct {
	// JWTSecret signs and verifies operator session tokens. Must be
	// overridden in any non-development deployment.
	JWTSecret string `json:"jwt_secret"`

	// TokenDurationMinutes is how long an issued token remains valid.
	TokenDurationMinutes int `json:"token_duration_minutes"`
}

// RateLimitConfig bounds the request rate the analyze-mission
// endpoint will accept from a single client.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate allowed per client.
	RequestsPerSecond float64 `json:"requests_per_second"`

	// Burst is the number of requests allowed instantaneously above
	// the sustained rate.
	Burst int `json:"burst"`
}

// Load reads configuration from a JSON file.
// If the file doesn't exist, returns a default configuration.
func Load(path string) (*Config, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse JSON
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvironmentOverrides()

	return &cfg, nil
}

// Save writes the configuration to a JSON file.
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Marshal to JSON with indentation
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:       "8080",
			Host:       "0.0.0.0",
			TLSEnabled: false,
		},
		Database: DatabaseConfig{
			Driver:       "postgres",
			Host:         "localhost",
			Port:         5432,
			Database:     "deconfliction",
			Username:     "deconfliction",
			SSLMode:      "disable",
			MaxOpenConns: 25,
			MaxIdleConns: 5,
		},
		Engine: EngineConfig{
			GridSize: 50.0,
		},
		Auth: AuthConfig{
			TokenDurationMinutes: 60,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5.0,
			Burst:             10,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
// This allows sensitive data like passwords and the JWT signing key to be kept
// out of config files committed to disk.
func (c *Config) applyEnvironmentOverrides() {
	if port := os.Getenv("DECONFLICTION_PORT"); port != "" {
		c.Server.Port = port
	}
	if dbPassword := os.Getenv("DECONFLICTION_DB_PASSWORD"); dbPassword != "" {
		c.Database.Password = dbPassword
	}
	if secret := os.Getenv("DECONFLICTION_JWT_SECRET"); secret != "" {
		c.Auth.JWTSecret = secret
	}
	if gridSize := os.Getenv("DECONFLICTION_GRID_SIZE"); gridSize != "" {
		if v, err := strconv.ParseFloat(gridSize, 64); err == nil {
			c.Engine.GridSize = v
		}
	}
}
