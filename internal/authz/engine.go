// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
engine.go - Case Access Decision Engine

The Engine answers one question: may THIS user perform THIS operation on
THIS case? It is the single choke point for case visibility; handlers
never query grants or ownership directly.

Key Properties:
  - Read denials are indistinguishable from missing cases (ErrCaseNotFound
    either way). Probing IDs yields no signal.
  - Listing is computed the other way around: AccessibleCaseIDs produces
    the caller's visible ID set first, and the store fetches only within
    it. A pagination bug can therefore never widen a listing.
  - Content mutation is owner-only, and ownership is a client-role
    property. Admin oversight is read-only and a lawyer's grant never
    escalates to write.

Thread Safety:
  - The Engine is stateless; all methods are safe for concurrent use.
*/

package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/docket-hq/docket/internal/auth"
	"github.com/docket-hq/docket/internal/database"
	"github.com/docket-hq/docket/internal/models"
)

// CaseReader is the case lookup port the engine needs.
// *database.DB satisfies it; tests substitute a mock.
type CaseReader interface {
	GetCase(ctx context.Context, id string) (*models.Case, error)
	ListCaseIDsByOwner(ctx context.Context, ownerID string) ([]string, error)
	ListAllCaseIDs(ctx context.Context) ([]string, error)
}

// GrantReader is the grant lookup port the engine needs.
type GrantReader interface {
	GrantExists(ctx context.Context, caseID, lawyerID string) (bool, error)
	ListCaseIDsGrantedTo(ctx context.Context, lawyerID string) ([]string, error)
}

// EngineConfig holds the engine's feature switches.
type EngineConfig struct {
	// LawyerDiscovery enables the redacted browse-all listing for
	// lawyers. It widens what lawyers can LIST, never what they can read.
	LawyerDiscovery bool
}

// Engine evaluates case access for authenticated identities.
type Engine struct {
	cases  CaseReader
	grants GrantReader
	config EngineConfig
}

// NewEngine creates the decision engine.
func NewEngine(cases CaseReader, grants GrantReader, config EngineConfig) *Engine {
	return &Engine{cases: cases, grants: grants, config: config}
}

// AuthorizeRead returns the case if the identity may read it.
//
// Returns ErrCaseNotFound when the case does not exist OR the identity
// may not see it; callers cannot tell the difference, and must not try
// to surface one.
func (e *Engine) AuthorizeRead(ctx context.Context, id *auth.Identity, caseID string) (*models.Case, error) {
	c, err := e.cases.GetCase(ctx, caseID)
	if err != nil {
		if errors.Is(err, database.ErrCaseNotFound) {
			recordDecision("read", outcomeNotFound)
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("case lookup failed: %w", err)
	}

	switch id.Role {
	case models.RoleAdmin:
		recordDecision("read", outcomeAllow)
		return c, nil
	case models.RoleClient:
		if c.OwnerID == id.ID {
			recordDecision("read", outcomeAllow)
			return c, nil
		}
	case models.RoleLawyer:
		granted, err := e.grants.GrantExists(ctx, caseID, id.ID)
		if err != nil {
			return nil, fmt.Errorf("grant lookup failed: %w", err)
		}
		if granted {
			recordDecision("read", outcomeAllow)
			return c, nil
		}
	}

	recordDecision("read", outcomeNotFound)
	return nil, ErrCaseNotFound
}

// AuthorizeMutate returns the case if the identity may mutate its content.
//
// Only the owning client mutates content. A caller who cannot even read
// the case gets ErrCaseNotFound; a caller who can read it but does not
// own it gets ErrNotOwner (admins and granted lawyers included).
func (e *Engine) AuthorizeMutate(ctx context.Context, id *auth.Identity, caseID string) (*models.Case, error) {
	c, err := e.AuthorizeRead(ctx, id, caseID)
	if err != nil {
		return nil, err
	}
	if id.Role != models.RoleClient || c.OwnerID != id.ID {
		recordDecision("mutate", outcomeForbidden)
		return nil, ErrNotOwner
	}
	recordDecision("mutate", outcomeAllow)
	return c, nil
}

// IsCaseOwner reports whether the user owns the case.
// A missing case is simply "not the owner".
func (e *Engine) IsCaseOwner(ctx context.Context, userID, caseID string) (bool, error) {
	c, err := e.cases.GetCase(ctx, caseID)
	if err != nil {
		if errors.Is(err, database.ErrCaseNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("case lookup failed: %w", err)
	}
	return c.OwnerID == userID, nil
}

// AccessibleCaseIDs returns every case ID the identity may read:
// all cases for admins, owned cases for clients, granted cases for
// lawyers. Listing endpoints restrict their queries to this set.
func (e *Engine) AccessibleCaseIDs(ctx context.Context, id *auth.Identity) ([]string, error) {
	switch id.Role {
	case models.RoleAdmin:
		return e.cases.ListAllCaseIDs(ctx)
	case models.RoleClient:
		return e.cases.ListCaseIDsByOwner(ctx, id.ID)
	case models.RoleLawyer:
		return e.grants.ListCaseIDsGrantedTo(ctx, id.ID)
	default:
		return []string{}, nil
	}
}

// CanBrowseAllCases reports whether the identity may use the redacted
// discovery listing. Admins always can; lawyers only when the feature
// is enabled.
func (e *Engine) CanBrowseAllCases(id *auth.Identity) bool {
	if id.Role == models.RoleAdmin {
		return true
	}
	return id.Role == models.RoleLawyer && e.config.LawyerDiscovery
}
