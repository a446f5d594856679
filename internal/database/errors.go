// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

// errors.go - Sentinel errors for store lookups and constraint violations.
package database

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUsername is returned when a username is already taken.
	ErrDuplicateUsername = errors.New("username already exists")

	// ErrCaseNotFound is returned when no case matches the lookup.
	ErrCaseNotFound = errors.New("case not found")

	// ErrDocumentNotFound is returned when no document matches the lookup.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrGrantNotFound is returned when no grant exists for the pair.
	ErrGrantNotFound = errors.New("access grant not found")

	// ErrDuplicateGrant is returned when a grant already exists for the pair.
	ErrDuplicateGrant = errors.New("access grant already exists")

	// ErrRequestNotFound is returned when no access request matches the lookup.
	ErrRequestNotFound = errors.New("access request not found")

	// ErrDuplicatePendingRequest is returned when a pending request already
	// exists for the (case, lawyer) pair.
	ErrDuplicatePendingRequest = errors.New("pending access request already exists")

	// ErrRequestNotPending is returned when a transition targets a request
	// that has already been resolved.
	ErrRequestNotPending = errors.New("access request is not pending")
)
