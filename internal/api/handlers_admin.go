// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package api

import (
	"net/http"

	"github.com/docket-hq/docket/internal/logging"
	"github.com/docket-hq/docket/internal/models"
)

// HandleAuditLog returns access audit events, newest first. Admin-only
// via the role gate. Supports ?case_id= to scope to one case and
// ?limit= with the usual bounds.
func (rt *Router) HandleAuditLog(w http.ResponseWriter, r *http.Request) {
	limit, _ := parsePaging(r, &rt.cfg.API)
	events, err := rt.db.ListAuditEvents(r.Context(), r.URL.Query().Get("case_id"), limit)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Audit listing failed")
		respondError(w, http.StatusInternalServerError, msgInternalError)
		return
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{Success: true, Data: events})
}
