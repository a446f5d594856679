// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package api

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/docket-hq/docket/internal/config"
	"github.com/docket-hq/docket/internal/logging"
	"github.com/docket-hq/docket/internal/models"
)

// respondJSON writes the envelope with the given status.
func respondJSON(w http.ResponseWriter, status int, resp *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError writes a failure envelope.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, &models.APIResponse{Success: false, Error: message})
}

// decodeJSON decodes the request body into dst, responding 400 on
// failure. Returns false when the caller should stop.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// parsePaging extracts limit/offset query parameters, clamping them to
// the configured bounds. Bad values fall back to defaults rather than
// erroring; paging is a hint, not a contract.
func parsePaging(r *http.Request, cfg *config.APIConfig) (limit, offset int) {
	limit = cfg.DefaultPageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > cfg.MaxPageSize {
		limit = cfg.MaxPageSize
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
