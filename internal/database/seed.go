// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
seed.go - Demo Data Seeding

Seeds a small fixture set for local development: one admin, two clients,
two lawyers, a handful of cases, one standing grant, and one pending
access request. Runs only when database.seed_demo_data is enabled and the
users table is empty, so restarting a seeded instance is a no-op.

Never enable seeding in production: the fixture passwords are public.
*/

package database

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/docket-hq/docket/internal/logging"
	"github.com/docket-hq/docket/internal/models"
)

// demoPassword is the shared password for every seeded account.
const demoPassword = "docket-demo"

type seedUser struct {
	username string
	email    string
	role     string
}

var seedUsers = []seedUser{
	{"admin", "admin@docket.local", models.RoleAdmin},
	{"carla.client", "carla@docket.local", models.RoleClient},
	{"devon.client", "devon@docket.local", models.RoleClient},
	{"lena.lawyer", "lena@docket.local", models.RoleLawyer},
	{"marco.lawyer", "marco@docket.local", models.RoleLawyer},
}

// SeedDemoData loads the development fixture set if the database is empty.
func (db *DB) SeedDemoData(ctx context.Context) error {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("failed to check for existing users: %w", err)
	}
	if count > 0 {
		logging.Debug().Msg("Demo seed skipped: users already present")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	users := make(map[string]*models.User, len(seedUsers))
	for _, su := range seedUsers {
		u := models.NewUser(su.username, su.email, string(hash), su.role)
		if err := db.CreateUser(ctx, u); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", su.username, err)
		}
		users[su.username] = u
	}

	carla := users["carla.client"]
	devon := users["devon.client"]
	lena := users["lena.lawyer"]
	marco := users["marco.lawyer"]

	contract := models.NewCase(carla.ID, "Vendor contract dispute",
		"Disagreement over delivery terms in the Q2 supply contract.", "contract", models.CasePriorityHigh)
	injury := models.NewCase(carla.ID, "Workplace injury claim",
		"Slip incident in the warehouse, medical records attached.", "personal_injury", "")
	injury.Status = models.CaseStatusInProgress
	lease := models.NewCase(devon.ID, "Commercial lease renewal",
		"Landlord refuses the renewal option in clause 14.", "real_estate", "")

	for _, c := range []*models.Case{contract, injury, lease} {
		if err := db.CreateCase(ctx, c); err != nil {
			return fmt.Errorf("failed to seed case %q: %w", c.Title, err)
		}
	}

	// Lena already works the injury case; Marco has asked for the contract
	// dispute and is waiting on Carla.
	if err := db.CreateGrant(ctx, models.NewCaseAccessGrant(injury.ID, lena.ID, carla.ID)); err != nil {
		return fmt.Errorf("failed to seed grant: %w", err)
	}
	if err := db.CreateRequest(ctx, models.NewCaseAccessRequest(contract.ID, marco.ID)); err != nil {
		return fmt.Errorf("failed to seed access request: %w", err)
	}

	logging.Info().
		Int("users", len(seedUsers)).
		Int("cases", 3).
		Msg("Demo data seeded")
	return nil
}
