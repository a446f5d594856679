// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
schema.go - Schema Migrations

Migrations run at startup inside New(). Each statement is idempotent
(CREATE ... IF NOT EXISTS), so restarts are safe without a migration
version table.

Constraint notes:
  - case_access_grants has UNIQUE(case_id, lawyer_id): at most one grant
    per pair, enforced by the database regardless of application checks.
  - case_access_requests cannot use a partial unique index on the pending
    status (DuckDB has no partial indexes), so the one-pending-per-pair
    invariant is enforced by the serialized check-then-insert in access.go.
    Resolved rows are kept for history, so a plain UNIQUE(case_id,
    lawyer_id) would be wrong.
*/

package database

import (
	"context"
	"fmt"
)

// migrationStatements lists schema DDL in execution order.
var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR PRIMARY KEY,
		username VARCHAR NOT NULL UNIQUE,
		email VARCHAR NOT NULL,
		password_hash VARCHAR NOT NULL,
		role VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS cases (
		id VARCHAR PRIMARY KEY,
		owner_id VARCHAR NOT NULL,
		title VARCHAR NOT NULL,
		description VARCHAR NOT NULL DEFAULT '',
		category VARCHAR NOT NULL,
		status VARCHAR NOT NULL,
		priority VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_cases_owner ON cases (owner_id)`,

	`CREATE TABLE IF NOT EXISTS case_documents (
		id VARCHAR PRIMARY KEY,
		case_id VARCHAR NOT NULL,
		uploaded_by VARCHAR NOT NULL,
		filename VARCHAR NOT NULL,
		mime_type VARCHAR NOT NULL,
		size_bytes BIGINT NOT NULL,
		checksum VARCHAR NOT NULL,
		status VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_case ON case_documents (case_id)`,

	`CREATE TABLE IF NOT EXISTS case_access_grants (
		case_id VARCHAR NOT NULL,
		lawyer_id VARCHAR NOT NULL,
		granted_at TIMESTAMP NOT NULL,
		granted_by VARCHAR NOT NULL,
		UNIQUE (case_id, lawyer_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_grants_lawyer ON case_access_grants (lawyer_id)`,

	`CREATE TABLE IF NOT EXISTS case_access_requests (
		id VARCHAR PRIMARY KEY,
		case_id VARCHAR NOT NULL,
		lawyer_id VARCHAR NOT NULL,
		status VARCHAR NOT NULL,
		requested_at TIMESTAMP NOT NULL,
		reviewed_at TIMESTAMP,
		reviewed_by VARCHAR
	)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_case ON case_access_requests (case_id)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_lawyer ON case_access_requests (lawyer_id)`,

	`CREATE TABLE IF NOT EXISTS audit_events (
		id VARCHAR PRIMARY KEY,
		occurred_at TIMESTAMP NOT NULL,
		event VARCHAR NOT NULL,
		case_id VARCHAR,
		actor_id VARCHAR,
		subject_id VARCHAR,
		request_id VARCHAR,
		detail VARCHAR
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_case ON audit_events (case_id)`,
}

// migrate applies all schema statements.
func (db *DB) migrate(ctx context.Context) error {
	for _, stmt := range migrationStatements {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
