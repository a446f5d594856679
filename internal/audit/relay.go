// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

// Package audit persists access-lifecycle events.
//
// The Relay consumes the in-process event bus and appends every
// AccessEvent to the audit_events table. The subscription is established
// in the constructor, before anything can publish: gochannel delivers
// only to topics with a live subscriber, so subscribing any later would
// silently drop early events. The consume loop runs as a supervised
// service; a crash restarts the loop on the same subscription, and the
// subscription's channel holds events published in the meantime.
package audit

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/docket-hq/docket/internal/authz"
	"github.com/docket-hq/docket/internal/logging"
	"github.com/docket-hq/docket/internal/models"
)

// Store is the persistence port for audit rows.
// *database.DB satisfies it; tests substitute a mock.
type Store interface {
	InsertAuditEvent(ctx context.Context, ev *models.AuditEvent) error
}

// Relay consumes access events and writes audit rows.
type Relay struct {
	messages <-chan *message.Message
	store    Store
	name     string
}

// NewRelay subscribes to the access events topic and returns the relay.
// The ctx bounds the subscription's lifetime, not a single Serve run.
func NewRelay(ctx context.Context, sub message.Subscriber, store Store) (*Relay, error) {
	messages, err := sub.Subscribe(ctx, authz.AccessEventsTopic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to access events: %w", err)
	}
	return &Relay{messages: messages, store: store, name: "audit-relay"}, nil
}

// Serve implements suture.Service. It drains the subscription opened by
// NewRelay and persists events until the context is canceled.
//
// Messages that fail to decode are acked and dropped after logging: a
// malformed payload will never decode, so redelivery would loop forever.
// Messages that fail to persist are nacked for redelivery.
func (r *Relay) Serve(ctx context.Context) error {
	logging.Info().Str("topic", authz.AccessEventsTopic).Msg("Audit relay started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-r.messages:
			if !ok {
				return nil
			}
			r.handle(ctx, msg)
		}
	}
}

func (r *Relay) handle(ctx context.Context, msg *message.Message) {
	var ev authz.AccessEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		logging.Error().Err(err).Str("message_id", msg.UUID).Msg("Failed to decode access event")
		msg.Ack()
		return
	}

	row := &models.AuditEvent{
		ID:         msg.UUID,
		OccurredAt: ev.OccurredAt,
		Event:      ev.Event,
		CaseID:     ev.CaseID,
		ActorID:    ev.ActorID,
		SubjectID:  ev.SubjectID,
		RequestID:  ev.RequestID,
		Detail:     ev.Detail,
	}
	if err := r.store.InsertAuditEvent(ctx, row); err != nil {
		logging.Error().Err(err).Str("event", ev.Event).Msg("Failed to persist audit event")
		msg.Nack()
		return
	}

	msg.Ack()
}

// String implements fmt.Stringer for supervisor logging.
func (r *Relay) String() string {
	return r.name
}
