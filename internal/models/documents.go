// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package models

import (
	"time"

	"github.com/google/uuid"
)

// Document status constants.
const (
	DocumentStatusActive  = "active"
	DocumentStatusDeleted = "deleted"
)

// Document is the metadata row for an uploaded case document. The payload
// itself lives in the filesystem docstore, addressed by checksum.
type Document struct {
	// ID is the primary key (UUID).
	ID string `json:"id"`

	// CaseID is the case this document belongs to. Document visibility is
	// gated by the same access verdict as the case itself.
	CaseID string `json:"case_id"`

	// UploadedBy is the user who uploaded the document (owner or a
	// granted lawyer).
	UploadedBy string `json:"uploaded_by"`

	// Filename is the client-supplied name, sanitized to a base name.
	Filename string `json:"filename"`

	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`

	// Checksum is the hex SHA-256 of the payload; it is also the blob
	// address in the docstore.
	Checksum string `json:"checksum"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDocument creates an active Document with a fresh ID.
func NewDocument(caseID, uploadedBy, filename, mimeType string, size int64, checksum string) *Document {
	return &Document{
		ID:         uuid.New().String(),
		CaseID:     caseID,
		UploadedBy: uploadedBy,
		Filename:   filename,
		MimeType:   mimeType,
		Size:       size,
		Checksum:   checksum,
		Status:     DocumentStatusActive,
		CreatedAt:  time.Now().UTC(),
	}
}
