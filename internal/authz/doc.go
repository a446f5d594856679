// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

// Package authz is the authorization core of Docket.
//
// It has three layers, checked in order on every protected request:
//
//  1. Role gate (Casbin): can this ROLE hit this route at all? A lawyer
//     calling PATCH /cases/{id} fails here regardless of which case it
//     is. Policies live in the embedded model.conf/policy.csv.
//  2. Engine: can this USER see this CASE? Ownership for clients, grants
//     for lawyers, everything for admins. Read-path denials and missing
//     cases are the same error, so responses never reveal whether a
//     case ID exists.
//  3. Lifecycle: the access-request workflow (request, approve, reject,
//     withdraw, direct grant, revoke) with its conflict and idempotence
//     rules. Every transition emits an event onto the in-process bus;
//     the audit relay persists them.
//
// # Decision Model
//
//	role    read case        mutate case      resolve requests
//	client  owner only       owner only       own cases
//	lawyer  granted only     never            never (may request/withdraw)
//	admin   always           never            never (read oversight)
package authz
