// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
cases.go - Case Store Operations

Key Operations:
  - GetCase / CreateCase / UpdateCase / DeleteCase
  - ListCasesByIDs: fetch a page of cases restricted to a pre-computed ID
    set. Listing endpoints scope by accessible IDs BEFORE fetching so no
    pagination edge case can leak a row the caller may not see.
  - ListCaseIDsByOwner / ListAllCaseIDs: ID-set queries for the
    authorization engine.
*/

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/docket-hq/docket/internal/models"
)

const caseColumns = "id, owner_id, title, description, category, status, priority, created_at, updated_at"

// scanCaseRow scans a row into a Case.
func scanCaseRow(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Case, error) {
	c := &models.Case{}
	err := scanner.Scan(
		&c.ID, &c.OwnerID, &c.Title, &c.Description,
		&c.Category, &c.Status, &c.Priority,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetCase retrieves a case by ID.
// Returns ErrCaseNotFound if no case exists.
func (db *DB) GetCase(ctx context.Context, id string) (*models.Case, error) {
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = ?`
	c, err := scanCaseRow(db.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to query case: %w", err)
	}
	return c, nil
}

// CreateCase inserts a new case.
func (db *DB) CreateCase(ctx context.Context, c *models.Case) error {
	query := `INSERT INTO cases (` + caseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.conn.ExecContext(ctx, query,
		c.ID, c.OwnerID, c.Title, c.Description,
		c.Category, c.Status, c.Priority,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}
	return nil
}

// UpdateCase applies a partial update to a case and returns the updated row.
// Returns ErrCaseNotFound if no case exists. Only fields present in the
// update are written.
func (db *DB) UpdateCase(ctx context.Context, id string, update *models.CaseUpdate) (*models.Case, error) {
	c, err := db.GetCase(ctx, id)
	if err != nil {
		return nil, err
	}

	update.Apply(c)

	query := `UPDATE cases
		SET title = ?, description = ?, category = ?, status = ?, priority = ?, updated_at = ?
		WHERE id = ?`
	res, err := db.conn.ExecContext(ctx, query,
		c.Title, c.Description, c.Category, c.Status, c.Priority, c.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update case: %w", err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrCaseNotFound
	}
	return c, nil
}

// DeleteCase removes a case and its dependent rows (documents metadata,
// grants, requests). Returns ErrCaseNotFound if no case exists.
func (db *DB) DeleteCase(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM cases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete case: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if rows == 0 {
		return ErrCaseNotFound
	}

	// Dependent rows; best-effort cleanup in separate statements since
	// DuckDB has no ON DELETE CASCADE here.
	for _, stmt := range []string{
		`DELETE FROM case_documents WHERE case_id = ?`,
		`DELETE FROM case_access_grants WHERE case_id = ?`,
		`DELETE FROM case_access_requests WHERE case_id = ?`,
	} {
		if _, err := db.conn.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("failed to clean up case dependents: %w", err)
		}
	}
	return nil
}

// CaseFilter narrows a case listing.
type CaseFilter struct {
	Status   string
	Category string
	Limit    int
	Offset   int
}

// ListCasesByIDs returns cases restricted to the given ID set, newest
// first, with optional status/category filters. An empty ID set returns
// an empty slice without querying.
func (db *DB) ListCasesByIDs(ctx context.Context, ids []string, filter *CaseFilter) ([]*models.Case, int, error) {
	if len(ids) == 0 {
		return []*models.Case{}, 0, nil
	}
	if filter == nil {
		filter = &CaseFilter{}
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	where := `WHERE id IN (` + placeholders + `)`
	args := make([]interface{}, 0, len(ids)+4)
	for _, id := range ids {
		args = append(args, id)
	}
	if filter.Status != "" {
		where += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		where += ` AND category = ?`
		args = append(args, filter.Category)
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM cases ` + where
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count cases: %w", err)
	}

	query := `SELECT ` + caseColumns + ` FROM cases ` + where + ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	cases := make([]*models.Case, 0)
	for rows.Next() {
		c, err := scanCaseRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate cases: %w", err)
	}
	return cases, total, nil
}

// ListAllCases returns a page over every case, newest first. Used by the
// lawyer discovery listing and admin listing.
func (db *DB) ListAllCases(ctx context.Context, filter *CaseFilter) ([]*models.Case, int, error) {
	if filter == nil {
		filter = &CaseFilter{}
	}

	where := `WHERE 1=1`
	args := make([]interface{}, 0, 4)
	if filter.Status != "" {
		where += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if filter.Category != "" {
		where += ` AND category = ?`
		args = append(args, filter.Category)
	}

	var total int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM cases `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count cases: %w", err)
	}

	query := `SELECT ` + caseColumns + ` FROM cases ` + where + ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	cases := make([]*models.Case, 0)
	for rows.Next() {
		c, err := scanCaseRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan case: %w", err)
		}
		cases = append(cases, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate cases: %w", err)
	}
	return cases, total, nil
}

// ListCaseIDsByOwner returns the IDs of every case owned by the user.
func (db *DB) ListCaseIDsByOwner(ctx context.Context, ownerID string) ([]string, error) {
	return db.queryIDs(ctx, `SELECT id FROM cases WHERE owner_id = ? ORDER BY id`, ownerID)
}

// ListAllCaseIDs returns every case ID in the store.
func (db *DB) ListAllCaseIDs(ctx context.Context) ([]string, error) {
	return db.queryIDs(ctx, `SELECT id FROM cases ORDER BY id`)
}

// queryIDs runs a single-column string query.
func (db *DB) queryIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ids: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ids: %w", err)
	}
	return ids, nil
}
