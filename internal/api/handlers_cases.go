// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
handlers_cases.go - Case CRUD Endpoints

Listings never run an unrestricted query: the engine first computes the
caller's accessible case ID set and the store filters inside it, so a
case outside the set cannot leak through a filter combination. The
browse endpoint is the one deliberate exception and returns redacted
summaries only.
*/

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docket-hq/docket/internal/auth"
	"github.com/docket-hq/docket/internal/database"
	"github.com/docket-hq/docket/internal/logging"
	"github.com/docket-hq/docket/internal/models"
	"github.com/docket-hq/docket/internal/validation"
)

// identity pulls the authenticated identity from the request context.
// RequireAuth guarantees it; the guard covers misordered middleware.
func identity(w http.ResponseWriter, r *http.Request) (*auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
	}
	return id, ok
}

// caseFilterFromQuery builds the listing filter from query parameters.
func (rt *Router) caseFilterFromQuery(r *http.Request) *database.CaseFilter {
	limit, offset := parsePaging(r, &rt.cfg.API)
	return &database.CaseFilter{
		Status:   r.URL.Query().Get("status"),
		Category: r.URL.Query().Get("category"),
		Limit:    limit,
		Offset:   offset,
	}
}

// HandleCreateCase creates a case owned by the calling client.
func (rt *Router) HandleCreateCase(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	var req models.CreateCaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := models.NewCase(id.ID, req.Title, req.Description, req.Category, req.Priority)
	if err := rt.db.CreateCase(r.Context(), c); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Case creation failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	logging.Ctx(r.Context()).Info().
		Str("case_id", c.ID).
		Str("owner_id", id.ID).
		Msg("Case created")
	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Success: true,
		Data:    c,
		Message: "Case created",
	})
}

// HandleListCases lists the cases the caller can see in full: own cases
// for clients, granted cases for lawyers, all cases for admins.
func (rt *Router) HandleListCases(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	ids, err := rt.engine.AccessibleCaseIDs(r.Context(), id)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Accessible case set failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	filter := rt.caseFilterFromQuery(r)
	cases, total, err := rt.db.ListCasesByIDs(r.Context(), ids, filter)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Case listing failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success: true,
		Data: &models.CaseListResponse{
			Cases:  cases,
			Total:  total,
			Limit:  filter.Limit,
			Offset: filter.Offset,
		},
	})
}

// HandleBrowseCases is the discovery listing: redacted summaries of all
// cases, for admins always and for lawyers when discovery is enabled.
func (rt *Router) HandleBrowseCases(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	if !rt.engine.CanBrowseAllCases(id) {
		respondError(w, http.StatusForbidden, msgForbidden)
		return
	}

	filter := rt.caseFilterFromQuery(r)
	cases, total, err := rt.db.ListAllCases(r.Context(), filter)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Case browse failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	summaries := make([]models.CaseSummary, 0, len(cases))
	for _, c := range cases {
		summaries = append(summaries, c.Summary())
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success: true,
		Data: &models.CaseSummaryListResponse{
			Cases:  summaries,
			Total:  total,
			Limit:  filter.Limit,
			Offset: filter.Offset,
		},
	})
}

// HandleGetCase returns a single case, subject to the read verdict.
func (rt *Router) HandleGetCase(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	c, err := rt.engine.AuthorizeRead(r.Context(), id, chi.URLParam(r, "id"))
	if err != nil {
		respondAuthzError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{Success: true, Data: c})
}

// HandleUpdateCase applies a partial update to an owned case.
func (rt *Router) HandleUpdateCase(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	caseID := chi.URLParam(r, "id")
	if _, err := rt.engine.AuthorizeMutate(r.Context(), id, caseID); err != nil {
		respondAuthzError(w, r, err)
		return
	}

	var update models.CaseUpdate
	if !decodeJSON(w, r, &update) {
		return
	}
	if update.IsEmpty() {
		respondError(w, http.StatusBadRequest, "Update contains no fields")
		return
	}
	if err := validation.ValidateStruct(&update); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := rt.db.UpdateCase(r.Context(), caseID, &update)
	if err != nil {
		if errors.Is(err, database.ErrCaseNotFound) {
			respondError(w, http.StatusNotFound, msgCaseNotFound)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Case update failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	logging.Ctx(r.Context()).Info().Str("case_id", caseID).Msg("Case updated")
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success: true,
		Data:    c,
		Message: "Case updated",
	})
}

// HandleDeleteCase deletes an owned case and its dependent records.
func (rt *Router) HandleDeleteCase(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}

	caseID := chi.URLParam(r, "id")
	if _, err := rt.engine.AuthorizeMutate(r.Context(), id, caseID); err != nil {
		respondAuthzError(w, r, err)
		return
	}

	if err := rt.db.DeleteCase(r.Context(), caseID); err != nil {
		if errors.Is(err, database.ErrCaseNotFound) {
			respondError(w, http.StatusNotFound, msgCaseNotFound)
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("Case deletion failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}

	logging.Ctx(r.Context()).Info().Str("case_id", caseID).Msg("Case deleted")
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success: true,
		Message: "Case deleted",
	})
}
