// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
chi_middleware.go - Route-Group Middleware Factories

CORS, rate limiting, and security headers for the chi router. The login
endpoint gets its own much stricter per-IP limit (credential stuffing
moves at a different pace than API usage). Rate limit rejections are
counted per endpoint in Prometheus.
*/

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/docket-hq/docket/internal/config"
	"github.com/docket-hq/docket/internal/metrics"
)

// ChiMiddleware bundles the rate limiting and CORS configuration shared
// by the route groups.
type ChiMiddleware struct {
	cfg *config.SecurityConfig
}

// NewChiMiddleware creates the middleware factory from security config.
func NewChiMiddleware(cfg *config.SecurityConfig) *ChiMiddleware {
	return &ChiMiddleware{cfg: cfg}
}

// CORS returns the CORS handler built from the configured origins.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   m.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}

// RateLimit returns the general per-IP API limiter.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.limitByIP(m.cfg.RateLimitReqs, m.cfg.RateLimitWindow)
}

// RateLimitLogin returns the strict per-IP limiter for credential
// endpoints.
func (m *ChiMiddleware) RateLimitLogin() func(http.Handler) http.Handler {
	return m.limitByIP(m.cfg.LoginRateLimitReqs, m.cfg.LoginRateLimitWindow)
}

func (m *ChiMiddleware) limitByIP(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			metrics.APIRateLimitHits.WithLabelValues(r.URL.Path).Inc()
			respondError(w, http.StatusTooManyRequests, "Rate limit exceeded")
		}),
	)
}

// SecurityHeaders sets the browser-hardening response headers. HSTS is
// only meaningful when cookies are marked Secure (i.e. behind TLS).
func (m *ChiMiddleware) SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if m.cfg.CookieSecure {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}
