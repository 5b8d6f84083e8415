package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/aerosentry/deconfliction/pkg/config"
)

//go:embed schema.sql
var schemaSQL embed.FS

// DB wraps a database connection with helper methods.
type DB struct {
	*sql.DB
	config config.DatabaseConfig
}

// Connect establishes a connection to the PostgreSQL database.
func Connect(cfg config.DatabaseConfig) (*DB, error) {
	// Build connection string
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.Username,
		cfg.Password,
		cfg.Database,
		cfg.SSLMode,
	)

	// Open connection
	sqlDB, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{
		DB:     sqlDB,
		config: cfg,
	}

	return db, nil
}

// InitSchema creates or updates the database schema.
// This should be called once at application startup.
func (db *DB) InitSchema(ctx context.Context) error {
	// Read schema SQL
	schemaBytes, err := schemaSQL.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	// Execute schema
	if _, err := db.ExecContext(ctx, string(schemaBytes)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// CleanupOldData removes mission analyses older than maxAge from the
// audit log, preventing unbounded growth of a table that is written
// once per /analyze-mission call and never updated.
func (db *DB) CleanupOldData(ctx context.Context, maxAge time.Duration) error {
	cutoff := time.Now().UTC().Add(-maxAge)

	_, err := db.ExecContext(ctx,
		`DELETE FROM mission_analyses WHERE analyzed_at < $1`,
		cutoff,
	)
	if err != nil {
		return fmt.Errorf("failed to delete old mission analyses: %w", err)
	}

	return nil
}

// GetStats returns catalogue statistics.
func (db *DB) GetStats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var operatorCount int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM operators`,
	).Scan(&operatorCount); err != nil {
		return nil, err
	}
	stats["operators"] = operatorCount

	var flightCount int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scheduled_flights`,
	).Scan(&flightCount); err != nil {
		return nil, err
	}
	stats["scheduled_flights"] = flightCount

	var activeFlightCount int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM scheduled_flights WHERE end_time > EXTRACT(EPOCH FROM NOW())`,
	).Scan(&activeFlightCount); err != nil {
		return nil, err
	}
	stats["active_flights"] = activeFlightCount

	var analysisCount int64
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM mission_analyses`,
	).Scan(&analysisCount); err != nil {
		return nil, err
	}
	stats["mission_analyses"] = analysisCount

	return stats, nil
}
