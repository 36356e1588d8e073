// Package mmtdb stores snapshots of the ticket office (services, passengers
// and their committed itineraries) in SQLite.
package mmtdb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"mmt.ticketoffice.org/internal/appconf"
	"mmt.ticketoffice.org/internal/logging"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

//go:embed schema.sql
var ddl string

const memoryPath = ":memory:"

// Config holds configuration options for the Client
type Config struct {
	DBPath string // Path to SQLite database file, or ":memory:"
	Env    appconf.Environment
	Logger *slog.Logger
}

func NewConfig(dbPath string, env appconf.Environment, logger *slog.Logger) Config {
	return Config{
		DBPath: dbPath,
		Env:    env,
		Logger: logger,
	}
}

// Client is the main entry point for the store
type Client struct {
	config Config
	logger *slog.Logger
	DB     *sql.DB
}

// NewClient opens the database and applies the schema.
func NewClient(config Config) (*Client, error) {
	if config.Env == appconf.Test && config.DBPath != memoryPath {
		return nil, errors.New("test database must use in-memory storage")
	}
	if config.DBPath == "" {
		return nil, errors.New("database path is required")
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// SQLite serializes writers, and every connection to ":memory:" would
	// otherwise see its own empty database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		logging.SafeCloseWithLogging(db, logger, "close_db_after_pragma_failure")
		return nil, fmt.Errorf("error enabling foreign keys: %w", err)
	}
	if err := performDatabaseMigration(ctx, db); err != nil {
		logging.SafeCloseWithLogging(db, logger, "close_db_after_migration_failure")
		return nil, fmt.Errorf("error performing database migration: %w", err)
	}

	logging.LogOperation(logger, "snapshot_store_opened",
		slog.String("component", "mmtdb"),
		slog.String("path", config.DBPath))

	return &Client{config: config, logger: logger, DB: db}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

func performDatabaseMigration(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(ddl, "-- migrate") {
		trimmed := strings.TrimSpace(stmt)
		if trimmed == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, trimmed); err != nil {
			return fmt.Errorf("error executing DDL statement [%s]: %w", trimmed, err)
		}
	}
	return nil
}
