// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

// Package middleware provides HTTP middleware shared across routes:
// request IDs and Prometheus instrumentation. Authentication and the
// role gate live in internal/auth and internal/authz.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/docket-hq/docket/internal/logging"
)

// RequestID tags each request with an ID for log correlation. An
// upstream proxy's X-Request-ID is honored; otherwise a fresh UUID is
// generated. The ID is echoed in the response header and threaded into
// the logging context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
