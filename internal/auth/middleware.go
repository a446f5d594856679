// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
middleware.go - Authentication Middleware

Token resolution order:
 1. "token" cookie (set by the login handler, HTTP-only)
 2. Authorization: Bearer header (API clients)

Every failure mode (missing token, bad signature, expired, malformed)
produces the identical 401 envelope. The specific reason is logged at
debug level only.
*/

package auth

import (
	"net/http"
	"strings"

	"github.com/docket-hq/docket/internal/logging"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

// RequireAuth wraps handlers that need an authenticated caller. On success
// the request context carries an Identity; on failure the request is
// rejected with 401 and the handler never runs.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := extractToken(r)
		if tokenString == "" {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := s.jwt.ValidateToken(tokenString)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Token validation failed")
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		identity := &Identity{
			ID:       claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

// extractToken pulls the session token from the cookie or Bearer header.
func extractToken(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	authHeader := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}
