// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
Docket server entrypoint.

Composition order: config, logging, database, blob store, message bus,
authorization (enforcer, engine, lifecycle), authentication, HTTP
router. The audit relay and the HTTP server then run under a suture
supervisor tree until SIGINT/SIGTERM.
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/docket-hq/docket/internal/api"
	"github.com/docket-hq/docket/internal/audit"
	"github.com/docket-hq/docket/internal/auth"
	"github.com/docket-hq/docket/internal/authz"
	"github.com/docket-hq/docket/internal/config"
	"github.com/docket-hq/docket/internal/database"
	"github.com/docket-hq/docket/internal/docstore"
	"github.com/docket-hq/docket/internal/logging"
	"github.com/docket-hq/docket/internal/metrics"
	"github.com/docket-hq/docket/internal/supervisor"
	"github.com/docket-hq/docket/internal/supervisor/services"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Msg("Starting Docket")
	metrics.SetAppInfo(version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck // best effort on shutdown

	if cfg.Database.SeedDemoData {
		if err := db.SeedDemoData(ctx); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	docs, err := docstore.New(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open document store: %w", err)
	}

	// In-process pub/sub carrying access lifecycle events to the audit
	// relay. The relay logs through zerolog itself; watermill's own
	// chatter stays off.
	bus := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermill.NopLogger{})
	defer bus.Close() //nolint:errcheck // best effort on shutdown

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		return fmt.Errorf("failed to build role enforcer: %w", err)
	}
	defer enforcer.Stop()

	engine := authz.NewEngine(db, db, authz.EngineConfig{
		LawyerDiscovery: cfg.Security.LawyerDiscovery,
	})
	lifecycle := authz.NewLifecycle(engine, db, db, db, bus)

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("failed to build JWT manager: %w", err)
	}
	authSvc := auth.NewService(db, jwtManager, &cfg.Security)

	router := api.NewRouter(cfg, db, authSvc, enforcer, engine, lifecycle, docs)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Handler(),
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	tree, err := supervisor.NewSupervisorTree(slog.New(logging.NewSlogHandler()), treeCfg)
	if err != nil {
		return fmt.Errorf("failed to build supervisor tree: %w", err)
	}
	// Subscribe before the HTTP surface can publish anything.
	relay, err := audit.NewRelay(ctx, bus, db)
	if err != nil {
		return fmt.Errorf("failed to start audit relay: %w", err)
	}
	tree.AddMessagingService(relay)
	tree.AddAPIService(services.NewHTTPServerService(server, treeCfg.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("Serving HTTP")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree failed: %w", err)
	}

	logging.Info().Msg("Shutdown complete")
	return nil
}
