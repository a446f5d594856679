// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package authz

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/docket-hq/docket/internal/auth"
	"github.com/docket-hq/docket/internal/logging"
	"github.com/docket-hq/docket/internal/models"
)

// RoleGate enforces the Casbin role policy on every request before the
// handler runs. It sits between authentication and the handlers, so the
// engine only ever evaluates requests whose role may reach the route.
//
// A gate denial is a plain 403: at this layer no case ID has been looked
// at, so there is nothing to hide behind a 404.
func (e *Enforcer) RoleGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			gateRespond(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		allowed, err := e.Enforce(identity.Role, r.URL.Path, r.Method)
		if err != nil {
			logging.Ctx(r.Context()).Error().Err(err).Msg("Role gate enforcement error")
			gateRespond(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		if !allowed {
			RoleGateDeniedTotal.WithLabelValues(identity.Role, r.Method).Inc()
			logging.Ctx(r.Context()).Debug().
				Str("role", identity.Role).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg("Role gate denied")
			gateRespond(w, http.StatusForbidden, "Forbidden")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func gateRespond(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(&models.APIResponse{ //nolint:errcheck // best-effort write
		Success: false,
		Error:   message,
	})
}
