// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
lifecycle.go - Access Request Lifecycle

State machine for lawyer access to cases:

	(none) --Request--> PENDING --Approve--> APPROVED (+ grant)
	                    PENDING --Reject---> REJECTED
	                    PENDING --Withdraw-> (row deleted, event kept)

	(none) --GrantDirect--> grant          (owner skips the request step)
	grant  --Revoke-------> (none)

Rules:
  - Only lawyers request; only the owning client resolves or grants.
  - At most one PENDING request per (case, lawyer): a repeat Request
    fails with ErrRequestPending instead of creating a duplicate.
  - Approve/Reject/Withdraw apply only to PENDING requests; a resolved
    request yields ErrRequestNotPending, never a silent re-resolution.
  - A lawyer who already holds a grant cannot open a request for it.
  - Resolved requests are kept as history. Withdrawal deletes the row;
    the withdrawn event in the audit log is the only remaining trace.
*/

package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/docket-hq/docket/internal/auth"
	"github.com/docket-hq/docket/internal/database"
	"github.com/docket-hq/docket/internal/logging"
	"github.com/docket-hq/docket/internal/models"
)

// AccessStore is the persistence port for grants and requests.
// *database.DB satisfies it; tests substitute a mock.
type AccessStore interface {
	GrantExists(ctx context.Context, caseID, lawyerID string) (bool, error)
	GetGrant(ctx context.Context, caseID, lawyerID string) (*models.CaseAccessGrant, error)
	CreateGrant(ctx context.Context, grant *models.CaseAccessGrant) error
	DeleteGrant(ctx context.Context, caseID, lawyerID string) error
	ListGrantsForCase(ctx context.Context, caseID string) ([]*models.CaseAccessGrant, error)

	GetRequest(ctx context.Context, id string) (*models.CaseAccessRequest, error)
	FindPendingRequest(ctx context.Context, caseID, lawyerID string) (*models.CaseAccessRequest, error)
	CreateRequest(ctx context.Context, req *models.CaseAccessRequest) error
	ApproveRequest(ctx context.Context, requestID, reviewerID string) (*models.CaseAccessRequest, error)
	RejectRequest(ctx context.Context, requestID, reviewerID string) (*models.CaseAccessRequest, error)
	DeleteRequest(ctx context.Context, requestID string) error
	ListRequestsForCase(ctx context.Context, caseID, status string) ([]*models.CaseAccessRequest, error)
	ListRequestsByLawyer(ctx context.Context, lawyerID, status string) ([]*models.CaseAccessRequest, error)
}

// UserReader is the user lookup port, used to verify grant targets.
type UserReader interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// Lifecycle orchestrates the access-request workflow.
type Lifecycle struct {
	engine *Engine
	cases  CaseReader
	store  AccessStore
	users  UserReader
	pub    message.Publisher
}

// NewLifecycle creates the lifecycle service.
func NewLifecycle(engine *Engine, cases CaseReader, store AccessStore, users UserReader, pub message.Publisher) *Lifecycle {
	return &Lifecycle{engine: engine, cases: cases, store: store, users: users, pub: pub}
}

// Request opens a pending access request from a lawyer to a case.
//
// A repeat request while one is still pending fails with
// ErrRequestPending; the store keeps exactly one pending row per pair.
// A lawyer who already holds a grant gets ErrAlreadyGranted instead.
func (l *Lifecycle) Request(ctx context.Context, id *auth.Identity, caseID string) (*models.CaseAccessRequest, error) {
	if id.Role != models.RoleLawyer {
		return nil, ErrRoleForbidden
	}

	if _, err := l.cases.GetCase(ctx, caseID); err != nil {
		if errors.Is(err, database.ErrCaseNotFound) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("case lookup failed: %w", err)
	}

	granted, err := l.store.GrantExists(ctx, caseID, id.ID)
	if err != nil {
		return nil, fmt.Errorf("grant lookup failed: %w", err)
	}
	if granted {
		return nil, ErrAlreadyGranted
	}

	if _, err := l.store.FindPendingRequest(ctx, caseID, id.ID); err == nil {
		return nil, ErrRequestPending
	} else if !errors.Is(err, database.ErrRequestNotFound) {
		return nil, fmt.Errorf("pending request lookup failed: %w", err)
	}

	req := models.NewCaseAccessRequest(caseID, id.ID)
	if err := l.store.CreateRequest(ctx, req); err != nil {
		if errors.Is(err, database.ErrDuplicatePendingRequest) {
			// Lost a race with a concurrent identical request.
			return nil, ErrRequestPending
		}
		return nil, fmt.Errorf("request creation failed: %w", err)
	}

	ev := newAccessEvent(EventRequestCreated)
	ev.CaseID = caseID
	ev.ActorID = id.ID
	ev.SubjectID = id.ID
	ev.RequestID = req.ID
	publish(l.pub, ev)

	logging.Ctx(ctx).Info().
		Str("request_id", req.ID).
		Str("case_id", caseID).
		Str("lawyer_id", id.ID).
		Msg("Access request created")
	return req, nil
}

// Approve resolves a pending request and creates the grant.
//
// Only the owner of the underlying case may approve. Callers who cannot
// see the case get ErrRequestNotFound; admins, who can see it, get
// ErrNotOwner.
func (l *Lifecycle) Approve(ctx context.Context, id *auth.Identity, requestID string) (*models.CaseAccessRequest, error) {
	req, err := l.loadRequestForReview(ctx, id, requestID)
	if err != nil {
		return nil, err
	}

	resolved, err := l.store.ApproveRequest(ctx, requestID, id.ID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrRequestNotPending):
			return nil, ErrRequestNotPending
		case errors.Is(err, database.ErrDuplicateGrant):
			return nil, ErrAlreadyGranted
		}
		return nil, fmt.Errorf("request approval failed: %w", err)
	}

	for _, name := range []string{EventRequestApproved, EventGrantCreated} {
		ev := newAccessEvent(name)
		ev.CaseID = req.CaseID
		ev.ActorID = id.ID
		ev.SubjectID = req.LawyerID
		ev.RequestID = req.ID
		publish(l.pub, ev)
	}

	logging.Ctx(ctx).Info().
		Str("request_id", req.ID).
		Str("case_id", req.CaseID).
		Str("lawyer_id", req.LawyerID).
		Msg("Access request approved")
	return resolved, nil
}

// Reject resolves a pending request without creating a grant. Same
// visibility rules as Approve.
func (l *Lifecycle) Reject(ctx context.Context, id *auth.Identity, requestID string) (*models.CaseAccessRequest, error) {
	req, err := l.loadRequestForReview(ctx, id, requestID)
	if err != nil {
		return nil, err
	}

	resolved, err := l.store.RejectRequest(ctx, requestID, id.ID)
	if err != nil {
		if errors.Is(err, database.ErrRequestNotPending) {
			return nil, ErrRequestNotPending
		}
		return nil, fmt.Errorf("request rejection failed: %w", err)
	}

	ev := newAccessEvent(EventRequestRejected)
	ev.CaseID = req.CaseID
	ev.ActorID = id.ID
	ev.SubjectID = req.LawyerID
	ev.RequestID = req.ID
	publish(l.pub, ev)

	logging.Ctx(ctx).Info().
		Str("request_id", req.ID).
		Str("case_id", req.CaseID).
		Str("lawyer_id", req.LawyerID).
		Msg("Access request rejected")
	return resolved, nil
}

// loadRequestForReview fetches a request and checks the caller may
// resolve it.
func (l *Lifecycle) loadRequestForReview(ctx context.Context, id *auth.Identity, requestID string) (*models.CaseAccessRequest, error) {
	req, err := l.store.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, database.ErrRequestNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("request lookup failed: %w", err)
	}

	c, err := l.cases.GetCase(ctx, req.CaseID)
	if err != nil {
		if errors.Is(err, database.ErrCaseNotFound) {
			// Request outlived its case.
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("case lookup failed: %w", err)
	}

	switch {
	case id.Role == models.RoleClient && c.OwnerID == id.ID:
		return req, nil
	case id.Role == models.RoleAdmin:
		// Admins see the request but resolution stays with the owner.
		return nil, ErrNotOwner
	default:
		return nil, ErrRequestNotFound
	}
}

// Withdraw deletes a pending request. Only the requesting lawyer may
// withdraw; anyone else gets ErrRequestNotFound. The deletion is
// permanent, the withdrawn event is the remaining trace.
func (l *Lifecycle) Withdraw(ctx context.Context, id *auth.Identity, requestID string) error {
	req, err := l.store.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, database.ErrRequestNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("request lookup failed: %w", err)
	}
	if req.LawyerID != id.ID {
		return ErrRequestNotFound
	}
	if !req.IsPending() {
		return ErrRequestNotPending
	}

	if err := l.store.DeleteRequest(ctx, requestID); err != nil {
		if errors.Is(err, database.ErrRequestNotFound) {
			return ErrRequestNotFound
		}
		return fmt.Errorf("request deletion failed: %w", err)
	}

	ev := newAccessEvent(EventRequestWithdrawn)
	ev.CaseID = req.CaseID
	ev.ActorID = id.ID
	ev.SubjectID = id.ID
	ev.RequestID = req.ID
	publish(l.pub, ev)

	logging.Ctx(ctx).Info().
		Str("request_id", req.ID).
		Str("case_id", req.CaseID).
		Msg("Access request withdrawn")
	return nil
}

// GrantDirect gives a lawyer access without a preceding request. Owner
// only. When a pending request from that lawyer exists it is resolved as
// approved instead of leaving a dangling pending row.
func (l *Lifecycle) GrantDirect(ctx context.Context, id *auth.Identity, caseID, lawyerID string) (*models.CaseAccessGrant, error) {
	if _, err := l.engine.AuthorizeMutate(ctx, id, caseID); err != nil {
		return nil, err
	}

	target, err := l.users.GetUser(ctx, lawyerID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrNotALawyer
		}
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	if target.Role != models.RoleLawyer {
		return nil, ErrNotALawyer
	}

	granted, err := l.store.GrantExists(ctx, caseID, lawyerID)
	if err != nil {
		return nil, fmt.Errorf("grant lookup failed: %w", err)
	}
	if granted {
		return nil, ErrAlreadyGranted
	}

	// Fold an open request into the grant rather than leaving it pending
	// against an already-granted case.
	if pending, err := l.store.FindPendingRequest(ctx, caseID, lawyerID); err == nil {
		if _, err := l.store.ApproveRequest(ctx, pending.ID, id.ID); err != nil {
			if errors.Is(err, database.ErrDuplicateGrant) {
				return nil, ErrAlreadyGranted
			}
			if !errors.Is(err, database.ErrRequestNotPending) {
				return nil, fmt.Errorf("request approval failed: %w", err)
			}
		} else {
			for _, name := range []string{EventRequestApproved, EventGrantCreated} {
				ev := newAccessEvent(name)
				ev.CaseID = caseID
				ev.ActorID = id.ID
				ev.SubjectID = lawyerID
				ev.RequestID = pending.ID
				publish(l.pub, ev)
			}
			// The approval inserted the grant row; return that row, not a
			// freshly stamped stand-in.
			grant, err := l.store.GetGrant(ctx, caseID, lawyerID)
			if err != nil {
				return nil, fmt.Errorf("grant lookup failed: %w", err)
			}
			return grant, nil
		}
	} else if !errors.Is(err, database.ErrRequestNotFound) {
		return nil, fmt.Errorf("pending request lookup failed: %w", err)
	}

	grant := models.NewCaseAccessGrant(caseID, lawyerID, id.ID)
	if err := l.store.CreateGrant(ctx, grant); err != nil {
		if errors.Is(err, database.ErrDuplicateGrant) {
			return nil, ErrAlreadyGranted
		}
		return nil, fmt.Errorf("grant creation failed: %w", err)
	}

	ev := newAccessEvent(EventGrantCreated)
	ev.CaseID = caseID
	ev.ActorID = id.ID
	ev.SubjectID = lawyerID
	publish(l.pub, ev)

	logging.Ctx(ctx).Info().
		Str("case_id", caseID).
		Str("lawyer_id", lawyerID).
		Msg("Access granted directly")
	return grant, nil
}

// Revoke removes a lawyer's grant. Owner only; revocation takes effect
// on the lawyer's next request since there is no session state to purge.
func (l *Lifecycle) Revoke(ctx context.Context, id *auth.Identity, caseID, lawyerID string) error {
	if _, err := l.engine.AuthorizeMutate(ctx, id, caseID); err != nil {
		return err
	}

	if err := l.store.DeleteGrant(ctx, caseID, lawyerID); err != nil {
		if errors.Is(err, database.ErrGrantNotFound) {
			return ErrGrantNotFound
		}
		return fmt.Errorf("grant deletion failed: %w", err)
	}

	ev := newAccessEvent(EventGrantRevoked)
	ev.CaseID = caseID
	ev.ActorID = id.ID
	ev.SubjectID = lawyerID
	publish(l.pub, ev)

	logging.Ctx(ctx).Info().
		Str("case_id", caseID).
		Str("lawyer_id", lawyerID).
		Msg("Access revoked")
	return nil
}

// ListCaseRequests returns the requests on a case, visible to the owner
// and admins. Optional status filter.
func (l *Lifecycle) ListCaseRequests(ctx context.Context, id *auth.Identity, caseID, status string) ([]*models.CaseAccessRequest, error) {
	c, err := l.engine.AuthorizeRead(ctx, id, caseID)
	if err != nil {
		return nil, err
	}
	if id.Role != models.RoleAdmin && c.OwnerID != id.ID {
		// A granted lawyer sees the case, not its request queue.
		return nil, ErrNotOwner
	}
	return l.store.ListRequestsForCase(ctx, caseID, status)
}

// ListOwnRequests returns the caller's requests across cases. Lawyers
// only; there is nothing to list for other roles.
func (l *Lifecycle) ListOwnRequests(ctx context.Context, id *auth.Identity, status string) ([]*models.CaseAccessRequest, error) {
	if id.Role != models.RoleLawyer {
		return nil, ErrRoleForbidden
	}
	return l.store.ListRequestsByLawyer(ctx, id.ID, status)
}

// ListCaseGrants returns the grants on a case, visible to the owner and
// admins.
func (l *Lifecycle) ListCaseGrants(ctx context.Context, id *auth.Identity, caseID string) ([]*models.CaseAccessGrant, error) {
	c, err := l.engine.AuthorizeRead(ctx, id, caseID)
	if err != nil {
		return nil, err
	}
	if id.Role != models.RoleAdmin && c.OwnerID != id.ID {
		return nil, ErrNotOwner
	}
	return l.store.ListGrantsForCase(ctx, caseID)
}
