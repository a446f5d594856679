// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package authz

import "errors"

// Verdict errors. The API layer maps these onto HTTP statuses; the
// mapping is the only place the distinction becomes client-visible.
var (
	// ErrCaseNotFound covers both "no such case" and "case exists but the
	// caller may not see it". Collapsing the two is deliberate: a 403
	// would confirm the case ID exists.
	ErrCaseNotFound = errors.New("case not found or not accessible")

	// ErrRoleForbidden is returned when the caller's role can never
	// perform the operation, independent of the target case.
	ErrRoleForbidden = errors.New("role not permitted")

	// ErrNotOwner is returned when the caller can see the case but the
	// operation is reserved for its owner.
	ErrNotOwner = errors.New("caller is not the case owner")

	// ErrRequestNotFound covers missing requests and requests on cases
	// the caller may not see.
	ErrRequestNotFound = errors.New("access request not found or not accessible")

	// ErrRequestPending is returned when a lawyer re-requests access while
	// an earlier request for the same case is still pending. The repeat is
	// rejected, not merged, so callers can tell a no-op from a new request.
	ErrRequestPending = errors.New("access request already pending")

	// ErrRequestNotPending is returned when a transition targets an
	// already-resolved request.
	ErrRequestNotPending = errors.New("access request is not pending")

	// ErrAlreadyGranted is returned when a grant already exists for the
	// (case, lawyer) pair.
	ErrAlreadyGranted = errors.New("lawyer already has access to this case")

	// ErrGrantNotFound is returned when revoking a grant that does not exist.
	ErrGrantNotFound = errors.New("access grant not found")

	// ErrNotALawyer is returned when the grant target is not a lawyer
	// account.
	ErrNotALawyer = errors.New("grant target is not a lawyer")
)
