// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/docket-hq/docket/internal/models"
)

const documentColumns = "id, case_id, uploaded_by, filename, mime_type, size_bytes, checksum, status, created_at"

// scanDocumentRow scans a row into a Document.
func scanDocumentRow(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Document, error) {
	d := &models.Document{}
	err := scanner.Scan(
		&d.ID, &d.CaseID, &d.UploadedBy, &d.Filename,
		&d.MimeType, &d.Size, &d.Checksum, &d.Status, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetDocument retrieves an active document by ID.
// Returns ErrDocumentNotFound if no active document exists.
func (db *DB) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM case_documents
		WHERE id = ? AND status = ?`
	d, err := scanDocumentRow(db.conn.QueryRowContext(ctx, query, id, models.DocumentStatusActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return d, nil
}

// CreateDocument inserts a document metadata row.
func (db *DB) CreateDocument(ctx context.Context, d *models.Document) error {
	query := `INSERT INTO case_documents (` + documentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.conn.ExecContext(ctx, query,
		d.ID, d.CaseID, d.UploadedBy, d.Filename,
		d.MimeType, d.Size, d.Checksum, d.Status, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// DeleteDocument marks a document deleted. The blob stays in the docstore
// because other documents may share the same checksum.
// Returns ErrDocumentNotFound if no active document exists.
func (db *DB) DeleteDocument(ctx context.Context, id string) error {
	query := `UPDATE case_documents SET status = ? WHERE id = ? AND status = ?`
	res, err := db.conn.ExecContext(ctx, query,
		models.DocumentStatusDeleted, id, models.DocumentStatusActive)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if rows == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// ListDocumentsForCase returns the active documents on a case, newest first.
func (db *DB) ListDocumentsForCase(ctx context.Context, caseID string) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM case_documents
		WHERE case_id = ? AND status = ? ORDER BY created_at DESC, id`
	rows, err := db.conn.QueryContext(ctx, query, caseID, models.DocumentStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only cursor

	docs := make([]*models.Document, 0)
	for rows.Next() {
		d, err := scanDocumentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}
