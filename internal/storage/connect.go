package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/astra-ai/astra/libs/chat-engine/internal/config"
	"github.com/astra-ai/astra/libs/chat-engine/internal/observability"
)

// Store wraps the live database connection with provenance about which
// driver ended up serving it.
type Store struct {
	DB            *sql.DB
	Driver        string
	UsingFallback bool
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Connect opens the vehicle store. The configured primary (Postgres) is tried
// first; if it cannot be reached the embedded SQLite fallback is opened
// instead, its schema created and, when configured, a sample fleet seeded.
// The caller learns about the downgrade through Store.UsingFallback, not an
// error.
func Connect(ctx context.Context, cfg config.DatabaseConfig, logger *observability.Logger) (*Store, error) {
	if cfg.Driver == "postgres" {
		store, err := connectPostgres(ctx, cfg.Postgres)
		if err == nil {
			logger.Info().Str("driver", "postgres").Msg("vehicle store connected")
			return store, nil
		}
		logger.Warn().
			Err(err).
			Str("fallback", cfg.SQLite.Path).
			Msg("primary database unreachable, falling back to sqlite")
	}

	store, err := connectSQLite(ctx, cfg.SQLite)
	if err != nil {
		return nil, fmt.Errorf("open sqlite fallback: %w", err)
	}
	store.UsingFallback = cfg.Driver == "postgres"
	logger.Info().
		Str("driver", "sqlite").
		Bool("fallback", store.UsingFallback).
		Msg("vehicle store connected")
	return store, nil
}

func connectPostgres(ctx context.Context, cfg config.PostgresConfig) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{DB: db, Driver: "postgres"}, nil
}

func connectSQLite(ctx context.Context, cfg config.SQLiteConfig) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=%s&_foreign_keys=on", cfg.Path, cfg.JournalMode)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	maxConns := cfg.MaxOpenConns
	if maxConns < 1 {
		maxConns = 1
	}
	db.SetMaxOpenConns(maxConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := createSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	store := &Store{DB: db, Driver: "sqlite"}
	if cfg.Seed {
		if err := SeedIfEmpty(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("seed store: %w", err)
		}
	}
	return store, nil
}

func createSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cars (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			manufacturer TEXT NOT NULL,
			model TEXT NOT NULL,
			year INTEGER NOT NULL,
			price REAL NOT NULL DEFAULT 0,
			engine_info TEXT NOT NULL DEFAULT '',
			transmission TEXT NOT NULL DEFAULT '',
			fuel_type TEXT NOT NULL DEFAULT '',
			mpg REAL NOT NULL DEFAULT 0,
			body_type TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id TEXT PRIMARY KEY,
			car_id INTEGER NOT NULL REFERENCES cars(id),
			review_title TEXT NOT NULL,
			review_text TEXT NOT NULL,
			rating REAL NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			pros TEXT NOT NULL DEFAULT '',
			cons TEXT NOT NULL DEFAULT '',
			review_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cars_manufacturer ON cars(manufacturer)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_car_id ON reviews(car_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
