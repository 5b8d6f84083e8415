package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestDefaultConfig verifies that DefaultConfig returns valid defaults.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Server defaults
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Expected default host 0.0.0.0, got %s", cfg.Server.Host)
	}
	if cfg.Server.TLSEnabled {
		t.Error("Expected TLS disabled by default")
	}

	// Database defaults
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Expected postgres driver, got %s", cfg.Database.Driver)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("Expected default postgres port 5432, got %d", cfg.Database.Port)
	}
	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("Expected max open conns 25, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns != 5 {
		t.Errorf("Expected max idle conns 5, got %d", cfg.Database.MaxIdleConns)
	}

	// Engine defaults
	if cfg.Engine.GridSize != 50.0 {
		t.Errorf("Expected default grid size 50.0, got %f", cfg.Engine.GridSize)
	}

	// Auth defaults
	if cfg.Auth.TokenDurationMinutes != 60 {
		t.Errorf("Expected token duration 60 minutes, got %d", cfg.Auth.TokenDurationMinutes)
	}

	// Rate limit defaults
	if cfg.RateLimit.RequestsPerSecond != 5.0 {
		t.Errorf("Expected 5.0 requests/sec, got %f", cfg.RateLimit.RequestsPerSecond)
	}
	if cfg.RateLimit.Burst != 10 {
		t.Errorf("Expected burst 10, got %d", cfg.RateLimit.Burst)
	}
}

// TestLoadNonExistentFile tests that Load returns default config when file doesn't exist.
func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.json")
	if err != nil {
		t.Fatalf("Expected no error for non-existent file, got: %v", err)
	}
	if cfg == nil {
		t.Fatal("Expected default config, got nil")
	}
	// Verify it's actually the default config
	if cfg.Server.Port != "8080" {
		t.Error("Did not get default config for non-existent file")
	}
}

// TestLoadValidConfig tests loading a valid configuration file.
func TestLoadValidConfig(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test-config.json")

	testConfig := &Config{
		Server: ServerConfig{
			Port:       "9090",
			Host:       "127.0.0.1",
			TLSEnabled: true,
		},
		Database: DatabaseConfig{
			Driver:   "postgres",
			Host:     "db.example.com",
			Port:     5433,
			Database: "testdb",
			Username: "testuser",
		},
		Engine: EngineConfig{
			GridSize: 100.0,
		},
		Auth: AuthConfig{
			TokenDurationMinutes: 30,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2.0,
			Burst:             4,
		},
	}

	// Write config to file
	data, err := json.MarshalIndent(testConfig, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal test config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	// Load config
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify loaded values
	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.example.com" {
		t.Errorf("Expected db.example.com, got %s", cfg.Database.Host)
	}
	if cfg.Engine.GridSize != 100.0 {
		t.Errorf("Expected grid size 100.0, got %f", cfg.Engine.GridSize)
	}
	if cfg.RateLimit.Burst != 4 {
		t.Errorf("Expected burst 4, got %d", cfg.RateLimit.Burst)
	}
}

// TestLoadInvalidJSON tests error handling for malformed JSON.
func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.json")

	// Write invalid JSON
	if err := os.WriteFile(configPath, []byte("{ invalid json }"), 0644); err != nil {
		t.Fatalf("Failed to write invalid config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Expected error for invalid JSON, got nil")
	}
	if err != nil && !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("Expected parse error, got: %v", err)
	}
}

// TestSaveConfig tests saving configuration to file.
func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "saved-config.json")

	cfg := DefaultConfig()
	cfg.Server.Port = "9999"
	cfg.Engine.GridSize = 25.0

	// Save config
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}

	// Verify file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	// Load it back and verify
	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load saved config: %v", err)
	}

	if loaded.Server.Port != "9999" {
		t.Errorf("Expected port 9999, got %s", loaded.Server.Port)
	}
	if loaded.Engine.GridSize != 25.0 {
		t.Errorf("Expected grid size 25.0, got %f", loaded.Engine.GridSize)
	}
}

// TestSaveConfigCreatesDirectory tests that Save creates missing directories.
func TestSaveConfigCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "dir", "config.json")

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Failed to save config with nested directory: %v", err)
	}

	// Verify directory was created
	dir := filepath.Dir(configPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("Directory was not created")
	}

	// Verify file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Error("Config file was not created")
	}
}

// TestEnvironmentOverrides tests environment variable overrides.
func TestEnvironmentOverrides(t *testing.T) {
	os.Setenv("DECONFLICTION_PORT", "7777")
	os.Setenv("DECONFLICTION_DB_PASSWORD", "env-password")
	os.Setenv("DECONFLICTION_JWT_SECRET", "env-secret")
	os.Setenv("DECONFLICTION_GRID_SIZE", "75.5")
	defer func() {
		os.Unsetenv("DECONFLICTION_PORT")
		os.Unsetenv("DECONFLICTION_DB_PASSWORD")
		os.Unsetenv("DECONFLICTION_JWT_SECRET")
		os.Unsetenv("DECONFLICTION_GRID_SIZE")
	}()

	// Create config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	testCfg := DefaultConfig()
	testCfg.Server.Port = "8080"
	testCfg.Database.Password = "original-password"

	data, _ := json.Marshal(testCfg)
	os.WriteFile(configPath, data, 0644)

	// Load config (should apply env overrides)
	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Verify overrides
	if cfg.Server.Port != "7777" {
		t.Errorf("Expected port 7777 from env, got %s", cfg.Server.Port)
	}
	if cfg.Database.Password != "env-password" {
		t.Errorf("Expected env-password from env, got %s", cfg.Database.Password)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Errorf("Expected JWT secret from env, got %s", cfg.Auth.JWTSecret)
	}
	if cfg.Engine.GridSize != 75.5 {
		t.Errorf("Expected grid size 75.5 from env, got %f", cfg.Engine.GridSize)
	}
}

// TestConfigRoundTrip tests saving and loading config preserves data.
func TestConfigRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "roundtrip.json")

	original := DefaultConfig()
	original.Server.Port = "3000"
	original.Server.TLSEnabled = true
	original.Engine.GridSize = 42.0
	original.RateLimit.Burst = 20

	if err := original.Save(configPath); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}

	if loaded.Server.Port != original.Server.Port {
		t.Errorf("Expected port %s, got %s", original.Server.Port, loaded.Server.Port)
	}
	if loaded.Server.TLSEnabled != original.Server.TLSEnabled {
		t.Errorf("Expected TLSEnabled %v, got %v", original.Server.TLSEnabled, loaded.Server.TLSEnabled)
	}
	if loaded.Engine.GridSize != original.Engine.GridSize {
		t.Errorf("Expected grid size %f, got %f", original.Engine.GridSize, loaded.Engine.GridSize)
	}
	if loaded.RateLimit.Burst != original.RateLimit.Burst {
		t.Errorf("Expected burst %d, got %d", original.RateLimit.Burst, loaded.RateLimit.Burst)
	}
}
