// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
errors.go - Authorization Error Mapping

Translates engine and lifecycle errors to HTTP responses. The mapping is
centralized so every handler produces byte-identical denial bodies: a
case that does not exist and a case the caller may not see both yield

	404 {"success": false, "error": "Case not found"}

which is what keeps case IDs unenumerable.
*/

package api

import (
	"errors"
	"net/http"

	"github.com/docket-hq/docket/internal/authz"
	"github.com/docket-hq/docket/internal/logging"
)

// Client-visible error strings. Handlers must not improvise variants of
// these; uniqueness of phrasing is part of the enumeration defense.
const (
	msgCaseNotFound     = "Case not found"
	msgDocumentNotFound = "Document not found"
	msgRequestNotFound  = "Access request not found"
	msgGrantNotFound    = "Access grant not found"
	msgForbidden        = "Forbidden"
	msgInternalError    = "Internal server error"
)

// respondAuthzError maps an authorization error to its HTTP response.
// Unknown errors are logged and surface as a plain 500.
func respondAuthzError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, authz.ErrCaseNotFound):
		respondError(w, http.StatusNotFound, msgCaseNotFound)
	case errors.Is(err, authz.ErrRequestNotFound):
		respondError(w, http.StatusNotFound, msgRequestNotFound)
	case errors.Is(err, authz.ErrGrantNotFound):
		respondError(w, http.StatusNotFound, msgGrantNotFound)
	case errors.Is(err, authz.ErrNotOwner), errors.Is(err, authz.ErrRoleForbidden):
		respondError(w, http.StatusForbidden, msgForbidden)
	// Lifecycle guard failures are business-rule rejections, reported as
	// 400 with a message the caller can act on.
	case errors.Is(err, authz.ErrRequestPending):
		respondError(w, http.StatusBadRequest, "An access request is already pending for this case")
	case errors.Is(err, authz.ErrRequestNotPending):
		respondError(w, http.StatusBadRequest, "Access request has already been resolved")
	case errors.Is(err, authz.ErrAlreadyGranted):
		respondError(w, http.StatusBadRequest, "Lawyer already has access to this case")
	case errors.Is(err, authz.ErrNotALawyer):
		respondError(w, http.StatusBadRequest, "Grant target must be a lawyer account")
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Authorization check failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
	}
}
