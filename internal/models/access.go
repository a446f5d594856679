// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
access.go - Access Grant and Access Request Models

A CaseAccessGrant is the durable record that gives a lawyer access to one
case. A CaseAccessRequest is the workflow item that precedes a grant:
requested by a lawyer, resolved by the case owner.

Invariants (enforced by the store and the lifecycle):
  - at most one grant per (case, lawyer) pair
  - at most one PENDING request per (case, lawyer) pair
  - approve/reject only transition a PENDING request; withdraw deletes it
*/

package models

import (
	"time"

	"github.com/google/uuid"
)

// Access request status constants. Withdrawal is not a status: a withdrawn
// request is deleted and survives only in the audit log.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// CaseAccessGrant gives a lawyer durable access to a case.
type CaseAccessGrant struct {
	// CaseID and LawyerID form the unique pair.
	CaseID   string `json:"case_id"`
	LawyerID string `json:"lawyer_id"`

	GrantedAt time.Time `json:"granted_at"`

	// GrantedBy is the user who created the grant: the case owner, both
	// for direct grants and for request approvals.
	GrantedBy string `json:"granted_by"`
}

// NewCaseAccessGrant creates a grant stamped with the current time.
func NewCaseAccessGrant(caseID, lawyerID, grantedBy string) *CaseAccessGrant {
	return &CaseAccessGrant{
		CaseID:    caseID,
		LawyerID:  lawyerID,
		GrantedAt: time.Now().UTC(),
		GrantedBy: grantedBy,
	}
}

// CaseAccessRequest is a lawyer's pending or resolved request for access
// to a case.
type CaseAccessRequest struct {
	// ID is the primary key (UUID).
	ID string `json:"id"`

	CaseID   string `json:"case_id"`
	LawyerID string `json:"lawyer_id"`

	// Status is pending, approved, or rejected.
	Status string `json:"status"`

	RequestedAt time.Time `json:"requested_at"`

	// ReviewedAt/ReviewedBy are set when the owner resolves the request.
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy string     `json:"reviewed_by,omitempty"`
}

// NewCaseAccessRequest creates a pending request with a fresh ID.
func NewCaseAccessRequest(caseID, lawyerID string) *CaseAccessRequest {
	return &CaseAccessRequest{
		ID:          uuid.New().String(),
		CaseID:      caseID,
		LawyerID:    lawyerID,
		Status:      RequestStatusPending,
		RequestedAt: time.Now().UTC(),
	}
}

// IsPending reports whether the request is still awaiting review.
func (r *CaseAccessRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}
