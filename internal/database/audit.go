// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/docket-hq/docket/internal/models"
)

const auditColumns = "id, occurred_at, event, case_id, actor_id, subject_id, request_id, detail"

// InsertAuditEvent appends an audit event row.
func (db *DB) InsertAuditEvent(ctx context.Context, ev *models.AuditEvent) error {
	query := `INSERT INTO audit_events (` + auditColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.conn.ExecContext(ctx, query,
		ev.ID, ev.OccurredAt, ev.Event,
		nullIfEmpty(ev.CaseID), nullIfEmpty(ev.ActorID),
		nullIfEmpty(ev.SubjectID), nullIfEmpty(ev.RequestID),
		nullIfEmpty(ev.Detail),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit event: %w", err)
	}
	return nil
}

// ListAuditEvents returns audit events newest first, optionally filtered
// by case. Limit <= 0 means no limit.
func (db *DB) ListAuditEvents(ctx context.Context, caseID string, limit int) ([]*models.AuditEvent, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_events`
	args := make([]interface{}, 0, 2)
	if caseID != "" {
		query += ` WHERE case_id = ?`
		args = append(args, caseID)
	}
	query += ` ORDER BY occurred_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	events := make([]*models.AuditEvent, 0)
	for rows.Next() {
		ev := &models.AuditEvent{}
		var caseID, actorID, subjectID, requestID, detail sql.NullString
		if err := rows.Scan(
			&ev.ID, &ev.OccurredAt, &ev.Event,
			&caseID, &actorID, &subjectID, &requestID, &detail,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		ev.CaseID = caseID.String
		ev.ActorID = actorID.String
		ev.SubjectID = subjectID.String
		ev.RequestID = requestID.String
		ev.Detail = detail.String
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit events: %w", err)
	}
	return events, nil
}

// nullIfEmpty maps "" to SQL NULL so optional audit fields stay nullable.
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
