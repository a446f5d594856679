// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
access.go - Access Grant and Access Request Store Operations

Thread Safety:
  - Every write path in this file takes accessMutex before touching the
    database. DuckDB has no partial unique indexes, so the one-pending-
    request-per-(case, lawyer) invariant cannot live in the schema; the
    mutex serializes the check-then-insert instead. Grants additionally
    carry UNIQUE(case_id, lawyer_id) as the authoritative guard.
  - Approve is a single transaction: flip the request row only while it
    is still pending, then insert the grant. A request that was resolved
    concurrently yields ErrRequestNotPending, never a double grant.
*/

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/docket-hq/docket/internal/models"
)

const requestColumns = "id, case_id, lawyer_id, status, requested_at, reviewed_at, reviewed_by"

// scanRequestRow scans a row into a CaseAccessRequest.
func scanRequestRow(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.CaseAccessRequest, error) {
	r := &models.CaseAccessRequest{}
	var reviewedAt sql.NullTime
	var reviewedBy sql.NullString
	err := scanner.Scan(
		&r.ID, &r.CaseID, &r.LawyerID, &r.Status,
		&r.RequestedAt, &reviewedAt, &reviewedBy,
	)
	if err != nil {
		return nil, err
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		r.ReviewedAt = &t
	}
	if reviewedBy.Valid {
		r.ReviewedBy = reviewedBy.String
	}
	return r, nil
}

// scanGrantRow scans a row into a CaseAccessGrant.
func scanGrantRow(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.CaseAccessGrant, error) {
	g := &models.CaseAccessGrant{}
	err := scanner.Scan(&g.CaseID, &g.LawyerID, &g.GrantedAt, &g.GrantedBy)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// GrantExists reports whether a grant exists for the (case, lawyer) pair.
func (db *DB) GrantExists(ctx context.Context, caseID, lawyerID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM case_access_grants WHERE case_id = ? AND lawyer_id = ?`
	if err := db.conn.QueryRowContext(ctx, query, caseID, lawyerID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query grant: %w", err)
	}
	return count > 0, nil
}

// GetGrant retrieves the grant for the (case, lawyer) pair.
// Returns ErrGrantNotFound if no grant exists.
func (db *DB) GetGrant(ctx context.Context, caseID, lawyerID string) (*models.CaseAccessGrant, error) {
	query := `SELECT case_id, lawyer_id, granted_at, granted_by
		FROM case_access_grants WHERE case_id = ? AND lawyer_id = ?`
	g, err := scanGrantRow(db.conn.QueryRowContext(ctx, query, caseID, lawyerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGrantNotFound
		}
		return nil, fmt.Errorf("failed to query grant: %w", err)
	}
	return g, nil
}

// CreateGrant inserts a grant for the (case, lawyer) pair.
// Returns ErrDuplicateGrant when a grant already exists.
func (db *DB) CreateGrant(ctx context.Context, grant *models.CaseAccessGrant) error {
	accessMutex.Lock()
	defer accessMutex.Unlock()

	query := `INSERT INTO case_access_grants (case_id, lawyer_id, granted_at, granted_by)
		VALUES (?, ?, ?, ?)`
	_, err := db.conn.ExecContext(ctx, query,
		grant.CaseID, grant.LawyerID, grant.GrantedAt, grant.GrantedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateGrant
		}
		return fmt.Errorf("failed to create grant: %w", err)
	}
	return nil
}

// DeleteGrant removes the grant for the (case, lawyer) pair.
// Returns ErrGrantNotFound if no grant exists.
func (db *DB) DeleteGrant(ctx context.Context, caseID, lawyerID string) error {
	accessMutex.Lock()
	defer accessMutex.Unlock()

	query := `DELETE FROM case_access_grants WHERE case_id = ? AND lawyer_id = ?`
	res, err := db.conn.ExecContext(ctx, query, caseID, lawyerID)
	if err != nil {
		return fmt.Errorf("failed to delete grant: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if rows == 0 {
		return ErrGrantNotFound
	}
	return nil
}

// ListGrantsForCase returns every grant on a case, oldest first.
func (db *DB) ListGrantsForCase(ctx context.Context, caseID string) ([]*models.CaseAccessGrant, error) {
	query := `SELECT case_id, lawyer_id, granted_at, granted_by
		FROM case_access_grants WHERE case_id = ? ORDER BY granted_at, lawyer_id`
	rows, err := db.conn.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	grants := make([]*models.CaseAccessGrant, 0)
	for rows.Next() {
		g, err := scanGrantRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan grant: %w", err)
		}
		grants = append(grants, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate grants: %w", err)
	}
	return grants, nil
}

// ListCaseIDsGrantedTo returns the IDs of every case the lawyer holds a
// grant on.
func (db *DB) ListCaseIDsGrantedTo(ctx context.Context, lawyerID string) ([]string, error) {
	return db.queryIDs(ctx,
		`SELECT case_id FROM case_access_grants WHERE lawyer_id = ? ORDER BY case_id`,
		lawyerID)
}

// GetRequest retrieves an access request by ID.
// Returns ErrRequestNotFound if no request exists.
func (db *DB) GetRequest(ctx context.Context, id string) (*models.CaseAccessRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM case_access_requests WHERE id = ?`
	r, err := scanRequestRow(db.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to query request: %w", err)
	}
	return r, nil
}

// FindPendingRequest returns the pending request for the (case, lawyer)
// pair, or ErrRequestNotFound when none exists.
func (db *DB) FindPendingRequest(ctx context.Context, caseID, lawyerID string) (*models.CaseAccessRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM case_access_requests
		WHERE case_id = ? AND lawyer_id = ? AND status = ?`
	r, err := scanRequestRow(db.conn.QueryRowContext(ctx, query, caseID, lawyerID, models.RequestStatusPending))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to query pending request: %w", err)
	}
	return r, nil
}

// CreateRequest inserts a pending access request.
// Returns ErrDuplicatePendingRequest when a pending request already exists
// for the (case, lawyer) pair.
func (db *DB) CreateRequest(ctx context.Context, req *models.CaseAccessRequest) error {
	accessMutex.Lock()
	defer accessMutex.Unlock()

	var count int
	check := `SELECT COUNT(*) FROM case_access_requests
		WHERE case_id = ? AND lawyer_id = ? AND status = ?`
	if err := db.conn.QueryRowContext(ctx, check,
		req.CaseID, req.LawyerID, models.RequestStatusPending).Scan(&count); err != nil {
		return fmt.Errorf("failed to check pending request: %w", err)
	}
	if count > 0 {
		return ErrDuplicatePendingRequest
	}

	query := `INSERT INTO case_access_requests (` + requestColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	var reviewedAt interface{}
	if req.ReviewedAt != nil {
		reviewedAt = *req.ReviewedAt
	}
	var reviewedBy interface{}
	if req.ReviewedBy != "" {
		reviewedBy = req.ReviewedBy
	}
	_, err := db.conn.ExecContext(ctx, query,
		req.ID, req.CaseID, req.LawyerID, req.Status,
		req.RequestedAt, reviewedAt, reviewedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return nil
}

// ApproveRequest resolves a pending request as approved and inserts the
// matching grant in one transaction.
// Returns ErrRequestNotPending when the request was already resolved, and
// ErrDuplicateGrant when a grant already exists for the pair.
func (db *DB) ApproveRequest(ctx context.Context, requestID, reviewerID string) (*models.CaseAccessRequest, error) {
	accessMutex.Lock()
	defer accessMutex.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx,
		`UPDATE case_access_requests
			SET status = ?, reviewed_at = ?, reviewed_by = ?
			WHERE id = ? AND status = ?`,
		models.RequestStatusApproved, now, reviewerID,
		requestID, models.RequestStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to approve request: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read approve result: %w", err)
	}
	if rows == 0 {
		return nil, ErrRequestNotPending
	}

	r, err := scanRequestRow(tx.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM case_access_requests WHERE id = ?`, requestID))
	if err != nil {
		return nil, fmt.Errorf("failed to reload request: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO case_access_grants (case_id, lawyer_id, granted_at, granted_by)
			VALUES (?, ?, ?, ?)`,
		r.CaseID, r.LawyerID, now, reviewerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateGrant
		}
		return nil, fmt.Errorf("failed to insert grant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}
	return r, nil
}

// RejectRequest resolves a pending request as rejected.
// Returns ErrRequestNotPending when the request was already resolved.
func (db *DB) RejectRequest(ctx context.Context, requestID, reviewerID string) (*models.CaseAccessRequest, error) {
	accessMutex.Lock()
	defer accessMutex.Unlock()

	now := time.Now().UTC()
	res, err := db.conn.ExecContext(ctx,
		`UPDATE case_access_requests
			SET status = ?, reviewed_at = ?, reviewed_by = ?
			WHERE id = ? AND status = ?`,
		models.RequestStatusRejected, now, reviewerID,
		requestID, models.RequestStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reject request: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read reject result: %w", err)
	}
	if rows == 0 {
		return nil, ErrRequestNotPending
	}
	return db.GetRequest(ctx, requestID)
}

// DeleteRequest removes a request row. Used for withdrawal; the deletion
// is recorded in the audit log by the lifecycle.
// Returns ErrRequestNotFound if no request exists.
func (db *DB) DeleteRequest(ctx context.Context, requestID string) error {
	accessMutex.Lock()
	defer accessMutex.Unlock()

	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM case_access_requests WHERE id = ?`, requestID)
	if err != nil {
		return fmt.Errorf("failed to delete request: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if rows == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// ListRequestsForCase returns every request on a case, newest first,
// optionally filtered by status.
func (db *DB) ListRequestsForCase(ctx context.Context, caseID, status string) ([]*models.CaseAccessRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM case_access_requests WHERE case_id = ?`
	args := []interface{}{caseID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY requested_at DESC, id`
	return db.queryRequests(ctx, query, args...)
}

// ListRequestsByLawyer returns every request made by a lawyer, newest
// first, optionally filtered by status.
func (db *DB) ListRequestsByLawyer(ctx context.Context, lawyerID, status string) ([]*models.CaseAccessRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM case_access_requests WHERE lawyer_id = ?`
	args := []interface{}{lawyerID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY requested_at DESC, id`
	return db.queryRequests(ctx, query, args...)
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...interface{}) ([]*models.CaseAccessRequest, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	requests := make([]*models.CaseAccessRequest, 0)
	for rows.Next() {
		r, err := scanRequestRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}
	return requests, nil
}
