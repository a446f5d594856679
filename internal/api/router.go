// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
router.go - HTTP Route Composition

Every authenticated route passes through three layers in order:

 1. auth.Service.RequireAuth - validates the JWT, attaches the identity
 2. authz.Enforcer.RoleGate  - casbin role/route/method gate
 3. the handler              - per-case decisions via the engine

Public routes (health, login, register, metrics) skip all three. The
login and register endpoints carry a strict per-IP rate limit on top of
the general one.
*/

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docket-hq/docket/internal/auth"
	"github.com/docket-hq/docket/internal/authz"
	"github.com/docket-hq/docket/internal/config"
	"github.com/docket-hq/docket/internal/database"
	"github.com/docket-hq/docket/internal/docstore"
	"github.com/docket-hq/docket/internal/middleware"
)

// Router builds the Docket HTTP handler from its collaborators.
type Router struct {
	cfg       *config.Config
	db        *database.DB
	auth      *auth.Service
	enforcer  *authz.Enforcer
	engine    *authz.Engine
	lifecycle *authz.Lifecycle
	docs      *docstore.Store
	mw        *ChiMiddleware
}

// NewRouter creates the router.
func NewRouter(
	cfg *config.Config,
	db *database.DB,
	authSvc *auth.Service,
	enforcer *authz.Enforcer,
	engine *authz.Engine,
	lifecycle *authz.Lifecycle,
	docs *docstore.Store,
) *Router {
	return &Router{
		cfg:       cfg,
		db:        db,
		auth:      authSvc,
		enforcer:  enforcer,
		engine:    engine,
		lifecycle: lifecycle,
		docs:      docs,
		mw:        NewChiMiddleware(&cfg.Security),
	}
}

// Handler assembles the chi mux.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	// Global middleware, outermost first.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.mw.CORS())
	r.Use(rt.mw.SecurityHeaders)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(rt.mw.RateLimit())

		// Public surface.
		r.Get("/health", rt.HandleHealth)
		r.Get("/health/ready", rt.HandleReady)
		r.Group(func(r chi.Router) {
			r.Use(rt.mw.RateLimitLogin())
			r.Post("/auth/login", rt.auth.HandleLogin)
			r.Post("/auth/register", rt.auth.HandleRegister)
		})

		// Authenticated surface.
		r.Group(func(r chi.Router) {
			r.Use(rt.auth.RequireAuth)
			r.Use(rt.enforcer.RoleGate)

			r.Get("/auth/me", rt.auth.HandleMe)
			r.Post("/auth/logout", rt.auth.HandleLogout)

			r.Route("/cases", func(r chi.Router) {
				r.Post("/", rt.HandleCreateCase)
				r.Get("/", rt.HandleListCases)
				r.Get("/browse", rt.HandleBrowseCases)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", rt.HandleGetCase)
					r.Patch("/", rt.HandleUpdateCase)
					r.Delete("/", rt.HandleDeleteCase)

					r.Route("/documents", func(r chi.Router) {
						r.Get("/", rt.HandleListDocuments)
						r.Post("/", rt.HandleUploadDocument)
						r.Get("/{docID}", rt.HandleGetDocument)
						r.Get("/{docID}/download", rt.HandleDownloadDocument)
						r.Delete("/{docID}", rt.HandleDeleteDocument)
					})

					r.Route("/grants", func(r chi.Router) {
						r.Get("/", rt.HandleListGrants)
						r.Post("/", rt.HandleCreateGrant)
						r.Delete("/{lawyerID}", rt.HandleRevokeGrant)
					})

					r.Route("/access-requests", func(r chi.Router) {
						r.Get("/", rt.HandleListCaseRequests)
						r.Post("/", rt.HandleCreateRequest)
					})
				})
			})

			r.Route("/access-requests", func(r chi.Router) {
				r.Get("/", rt.HandleListOwnRequests)
				r.Delete("/{id}", rt.HandleWithdrawRequest)
				r.Post("/{id}/approve", rt.HandleApproveRequest)
				r.Post("/{id}/reject", rt.HandleRejectRequest)
			})

			r.Get("/admin/audit", rt.HandleAuditLog)
		})
	})

	return r
}
