// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
cases.go - Case Models

A Case is owned by exactly one client (OwnerID). Content mutation is
restricted to the owner; lawyers gain read/contribute access only through
CaseAccessGrant records (see access.go).

CaseUpdate carries partial updates: nil means "field omitted", a non-nil
pointer means "set to this value". An explicit empty string clears the
description. This keeps "omitted" and "cleared" distinguishable at the
type level.
*/

package models

import (
	"time"

	"github.com/google/uuid"
)

// Case status constants.
const (
	CaseStatusOpen           = "open"
	CaseStatusInProgress     = "in_progress"
	CaseStatusUnderReview    = "under_review"
	CaseStatusAwaitingClient = "awaiting_client"
	CaseStatusClosed         = "closed"
	CaseStatusArchived       = "archived"
)

// ValidCaseStatuses contains all valid case statuses.
var ValidCaseStatuses = []string{
	CaseStatusOpen,
	CaseStatusInProgress,
	CaseStatusUnderReview,
	CaseStatusAwaitingClient,
	CaseStatusClosed,
	CaseStatusArchived,
}

// IsValidCaseStatus checks if a case status is valid.
func IsValidCaseStatus(status string) bool {
	for _, s := range ValidCaseStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Case priority constants.
const (
	CasePriorityLow    = "low"
	CasePriorityMedium = "medium"
	CasePriorityHigh   = "high"
	CasePriorityUrgent = "urgent"
)

// ValidCasePriorities contains all valid case priorities.
var ValidCasePriorities = []string{
	CasePriorityLow,
	CasePriorityMedium,
	CasePriorityHigh,
	CasePriorityUrgent,
}

// IsValidCasePriority checks if a case priority is valid.
func IsValidCasePriority(priority string) bool {
	for _, p := range ValidCasePriorities {
		if p == priority {
			return true
		}
	}
	return false
}

// Case represents a legal case owned by a client.
type Case struct {
	// ID is the primary key (UUID).
	ID string `json:"id"`

	// OwnerID is the client who owns this case.
	OwnerID string `json:"owner_id"`

	Title       string `json:"title"`
	Description string `json:"description"`

	// Category is a free-form practice area (family, criminal, corporate...).
	Category string `json:"category"`

	// Status is one of the case status constants.
	Status string `json:"status"`

	// Priority is one of the case priority constants.
	Priority string `json:"priority"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCase creates an open Case with a fresh ID.
func NewCase(ownerID, title, description, category, priority string) *Case {
	now := time.Now().UTC()
	if priority == "" {
		priority = CasePriorityMedium
	}
	return &Case{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Category:    category,
		Status:      CaseStatusOpen,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// CaseUpdate is a partial case update. Nil fields are left unchanged.
type CaseUpdate struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=10000"`
	Category    *string `json:"category" validate:"omitempty,min=1,max=100"`
	Status      *string `json:"status" validate:"omitempty,oneof=open in_progress under_review awaiting_client closed archived"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

// IsEmpty reports whether the update contains no fields.
func (u *CaseUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Category == nil &&
		u.Status == nil && u.Priority == nil
}

// Apply copies the provided fields onto the case and bumps UpdatedAt.
// Description may be cleared with an explicit empty string; the other
// fields reject empty values at validation time.
func (u *CaseUpdate) Apply(c *Case) {
	if u.Title != nil {
		c.Title = *u.Title
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.Category != nil {
		c.Category = *u.Category
	}
	if u.Status != nil {
		c.Status = *u.Status
	}
	if u.Priority != nil {
		c.Priority = *u.Priority
	}
	c.UpdatedAt = time.Now().UTC()
}

// CaseSummary is the redacted listing shape used by the lawyer discovery
// endpoint: no description, no owner identity beyond the ID being hidden.
type CaseSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary returns the redacted view of the case.
func (c *Case) Summary() CaseSummary {
	return CaseSummary{
		ID:        c.ID,
		Title:     c.Title,
		Category:  c.Category,
		Status:    c.Status,
		CreatedAt: c.CreatedAt,
	}
}
