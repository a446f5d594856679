// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

// Package database provides the DuckDB-backed stores for users, cases,
// documents, access grants, access requests, and audit events.
//
// The DB type implements the store ports consumed by the authorization
// engine and the access-request lifecycle. Write paths that must observe
// check-then-insert semantics (access requests, grants) are serialized by
// a package mutex and additionally protected by UNIQUE constraints in the
// schema; the constraint is the authoritative guard, the in-Go check just
// produces a friendlier error.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/docket-hq/docket/internal/config"
	"github.com/docket-hq/docket/internal/logging"
)

// accessMutex serializes access-request and grant write paths.
var accessMutex sync.Mutex

// DB wraps the DuckDB connection and provides data access methods.
type DB struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens the database and initializes the schema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	path := cfg.Path
	if path != "" && path != ":memory:" {
		dbDir := filepath.Dir(path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	connStr := path
	if connStr == ":memory:" {
		connStr = ""
	}
	if cfg.MaxMemory != "" {
		connStr = fmt.Sprintf("%s?max_memory=%s&threads=%d", connStr, cfg.MaxMemory, numThreads)
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// DuckDB is effectively single-writer; keep the pool small.
	conn.SetMaxOpenConns(4)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	db := &DB{conn: conn, cfg: cfg}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.conn.PingContext(ctx); err != nil {
		_ = conn.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := db.migrate(ctx); err != nil {
		_ = conn.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.Info().Str("path", cfg.Path).Msg("Database initialized")
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}
