// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package models

import "time"

// APIResponse is the envelope used by every HTTP endpoint.
//
// Success:
//
//	{"success": true, "data": {...}, "message": "Case created"}
//
// Failure:
//
//	{"success": false, "error": "Case not found"}
//
// The error string is the entire client-visible failure detail. Read-path
// denials use the exact same body whether the case is missing or merely
// inaccessible, so a response never reveals whether a case ID exists.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=1,max=256"`
}

// RegisterRequest is the self-signup payload. Admin accounts are seeded,
// never self-registered.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64,alphanum"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=256"`
	Role     string `json:"role" validate:"required,oneof=client lawyer"`
}

// LoginResponse is returned on successful login. The token is also set as
// an HTTP-only cookie; the body copy supports Bearer-header clients.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

// CreateCaseRequest is the case creation payload.
type CreateCaseRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=10000"`
	Category    string `json:"category" validate:"required,min=1,max=100"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

// GrantRequest is the direct-grant payload.
type GrantRequest struct {
	LawyerID string `json:"lawyer_id" validate:"required,uuid4"`
}

// CaseListResponse wraps a case listing with paging info.
type CaseListResponse struct {
	Cases  []*Case `json:"cases"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// CaseSummaryListResponse wraps the redacted discovery listing.
type CaseSummaryListResponse struct {
	Cases  []CaseSummary `json:"cases"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}
