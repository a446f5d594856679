// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
events.go - Access Lifecycle Events

Every lifecycle transition publishes an AccessEvent onto the in-process
bus. The audit relay subscribes and persists them; nothing in the request
path waits on the subscriber.

Publishing is best-effort: a failed publish is logged and the transition
still succeeds. The database transition is the source of truth, the event
stream is the trace. The one exception worth knowing about: a WITHDRAWN
request exists only in this stream, because withdrawal deletes the row.
*/

package authz

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/docket-hq/docket/internal/logging"
)

// AccessEventsTopic is the bus topic for access lifecycle events.
const AccessEventsTopic = "access.events"

// Access lifecycle event names.
const (
	EventRequestCreated   = "access.request.created"
	EventRequestApproved  = "access.request.approved"
	EventRequestRejected  = "access.request.rejected"
	EventRequestWithdrawn = "access.request.withdrawn"
	EventGrantCreated     = "access.grant.created"
	EventGrantRevoked     = "access.grant.revoked"
)

// AccessEvent is the payload published for every lifecycle transition.
type AccessEvent struct {
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurred_at"`

	CaseID string `json:"case_id,omitempty"`

	// ActorID performed the transition; SubjectID is the lawyer the
	// transition concerns. For lawyer-initiated transitions they match.
	ActorID   string `json:"actor_id,omitempty"`
	SubjectID string `json:"subject_id,omitempty"`

	// RequestID is set for request transitions, empty for direct
	// grant/revoke.
	RequestID string `json:"request_id,omitempty"`

	Detail string `json:"detail,omitempty"`
}

// newAccessEvent creates an event stamped with the current time.
func newAccessEvent(event string) *AccessEvent {
	return &AccessEvent{Event: event, OccurredAt: time.Now().UTC()}
}

// publish marshals and publishes the event. Failures are logged, never
// propagated to the caller.
func publish(pub message.Publisher, ev *AccessEvent) {
	recordTransition(ev.Event)

	payload, err := json.Marshal(ev)
	if err != nil {
		logging.Error().Err(err).Str("event", ev.Event).Msg("Failed to marshal access event")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event", ev.Event)
	if err := pub.Publish(AccessEventsTopic, msg); err != nil {
		logging.Error().Err(err).Str("event", ev.Event).Msg("Failed to publish access event")
	}
}
