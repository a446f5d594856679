// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
handlers_access.go - Access Request and Grant Endpoints

Thin wrappers over the authz lifecycle, which owns the workflow rules
and publishes the audit events. Handlers only decode, delegate, and map
errors.
*/

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docket-hq/docket/internal/logging"
	"github.com/docket-hq/docket/internal/models"
	"github.com/docket-hq/docket/internal/validation"
)

// HandleCreateRequest files a lawyer's access request on a case.
// Repeating a still-pending request is rejected with 400.
func (rt *Router) HandleCreateRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	req, err := rt.lifecycle.Request(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		respondAuthzError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Success: true,
		Data:    req,
		Message: "Access request filed",
	})
}

// HandleListCaseRequests lists a case's access requests for its owner
// or an admin. Supports ?status=pending|approved|rejected.
func (rt *Router) HandleListCaseRequests(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	requests, err := rt.lifecycle.ListCaseRequests(r.Context(), id, chi.URLParam(r, "id"), status)
	if err != nil {
		respondAuthzError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{Success: true, Data: requests})
}

// HandleListOwnRequests lists the calling lawyer's own requests.
func (rt *Router) HandleListOwnRequests(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	status := r.URL.Query().Get("status")
	requests, err := rt.lifecycle.ListOwnRequests(r.Context(), id, status)
	if err != nil {
		respondAuthzError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{Success: true, Data: requests})
}

// HandleApproveRequest approves a pending request, creating the grant.
func (rt *Router) HandleApproveRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	req, err := rt.lifecycle.Approve(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		respondAuthzError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().
		Str("request_id", req.ID).
		Str("case_id", req.CaseID).
		Msg("Access request approved")
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success: true,
		Data:    req,
		Message: "Access request approved",
	})
}

// HandleRejectRequest rejects a pending request.
func (rt *Router) HandleRejectRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	req, err := rt.lifecycle.Reject(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		respondAuthzError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().
		Str("request_id", req.ID).
		Str("case_id", req.CaseID).
		Msg("Access request rejected")
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success: true,
		Data:    req,
		Message: "Access request rejected",
	})
}

// HandleWithdrawRequest lets the requesting lawyer withdraw a pending
// request. The row is deleted; the audit log keeps the trace.
func (rt *Router) HandleWithdrawRequest(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	if err := rt.lifecycle.Withdraw(r.Context(), id, chi.URLParam(r, "id")); err != nil {
		respondAuthzError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success: true,
		Message: "Access request withdrawn",
	})
}

// HandleListGrants lists a case's grants for its owner or an admin.
func (rt *Router) HandleListGrants(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	grants, err := rt.lifecycle.ListCaseGrants(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		respondAuthzError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{Success: true, Data: grants})
}

// HandleCreateGrant grants a lawyer access directly, without a request.
// An existing pending request from that lawyer is folded into an
// approval instead of being left dangling.
func (rt *Router) HandleCreateGrant(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.GrantRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	grant, err := rt.lifecycle.GrantDirect(r.Context(), id, chi.URLParam(r, "id"), req.LawyerID)
	if err != nil {
		respondAuthzError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().
		Str("case_id", grant.CaseID).
		Str("lawyer_id", grant.LawyerID).
		Msg("Access granted")
	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Success: true,
		Data:    grant,
		Message: "Access granted",
	})
}

// HandleRevokeGrant revokes a lawyer's access to an owned case.
func (rt *Router) HandleRevokeGrant(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	caseID := chi.URLParam(r, "id")
	lawyerID := chi.URLParam(r, "lawyerID")
	if err := rt.lifecycle.Revoke(r.Context(), id, caseID, lawyerID); err != nil {
		respondAuthzError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().
		Str("case_id", caseID).
		Str("lawyer_id", lawyerID).
		Msg("Access revoked")
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success: true,
		Message: "Access revoked",
	})
}
