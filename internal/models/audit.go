// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent is a persisted record of an access-lifecycle action. Events
// are append-only; a withdrawn request survives only here.
type AuditEvent struct {
	// ID is the primary key (UUID).
	ID string `json:"id"`

	OccurredAt time.Time `json:"occurred_at"`

	// Event is the event name, e.g. "access.request.created".
	Event string `json:"event"`

	CaseID string `json:"case_id,omitempty"`

	// ActorID is the user who performed the action.
	ActorID string `json:"actor_id,omitempty"`

	// SubjectID is the user the action was about (the lawyer, for
	// grant/revoke events performed by the owner).
	SubjectID string `json:"subject_id,omitempty"`

	// RequestID is the access request the event relates to, when any.
	RequestID string `json:"request_id,omitempty"`

	// Detail carries free-form context, e.g. the resolved status.
	Detail string `json:"detail,omitempty"`
}

// NewAuditEvent creates an audit event stamped with the current time.
func NewAuditEvent(event string) *AuditEvent {
	return &AuditEvent{
		ID:         uuid.New().String(),
		OccurredAt: time.Now().UTC(),
		Event:      event,
	}
}
