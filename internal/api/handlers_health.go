// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package api

import (
	"net/http"

	"github.com/docket-hq/docket/internal/logging"
	"github.com/docket-hq/docket/internal/metrics"
	"github.com/docket-hq/docket/internal/models"
)

// HandleHealth is the liveness probe. It answers as long as the process
// serves HTTP; dependency health belongs to the readiness probe.
func (rt *Router) HandleHealth(w http.ResponseWriter, r *http.Request) {
	metrics.UpdateUptime()
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success: true,
		Data:    map[string]string{"status": "ok"},
	})
}

// HandleReady is the readiness probe: healthy only when the database
// answers a ping.
func (rt *Router) HandleReady(w http.ResponseWriter, r *http.Request) {
	if err := rt.db.Ping(r.Context()); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Readiness ping failed")
		respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
			Success: false,
			Error:   "Database unavailable",
		})
		return
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Success: true,
		Data:    map[string]string{"status": "ready"},
	})
}
