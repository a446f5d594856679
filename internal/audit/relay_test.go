// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/docket-hq/docket/internal/authz"
	"github.com/docket-hq/docket/internal/models"
)

// mockAuditStore records inserted rows and can fail on demand.
type mockAuditStore struct {
	mu       sync.Mutex
	rows     []*models.AuditEvent
	failures int // fail this many inserts before succeeding
	inserted chan struct{}
}

func newMockAuditStore() *mockAuditStore {
	return &mockAuditStore{inserted: make(chan struct{}, 16)}
}

func (m *mockAuditStore) InsertAuditEvent(_ context.Context, ev *models.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures > 0 {
		m.failures--
		return errors.New("insert failed")
	}
	m.rows = append(m.rows, ev)
	select {
	case m.inserted <- struct{}{}:
	default:
	}
	return nil
}

func (m *mockAuditStore) events() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, len(m.rows))
	for i, row := range m.rows {
		names[i] = row.Event
	}
	return names
}

func (m *mockAuditStore) waitForInserts(t *testing.T, n int) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for range n {
		select {
		case <-m.inserted:
		case <-deadline:
			t.Fatalf("timed out waiting for %d audit inserts, have %v", n, m.events())
		}
	}
}

// newRelayFixture builds a relay over a fresh in-process bus. The
// subscription exists once this returns; serve starts the consume loop.
func newRelayFixture(t *testing.T, store Store) (*Relay, message.Publisher) {
	t.Helper()
	bus := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 16,
	}, watermill.NopLogger{})
	t.Cleanup(func() { _ = bus.Close() })

	relay, err := NewRelay(context.Background(), bus, store)
	if err != nil {
		t.Fatalf("NewRelay() error = %v", err)
	}
	return relay, bus
}

func serve(t *testing.T, relay *Relay) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = relay.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

// startRelay runs the relay against a fresh in-process bus.
func startRelay(t *testing.T, store Store) message.Publisher {
	t.Helper()
	relay, bus := newRelayFixture(t, store)
	serve(t, relay)
	return bus
}

func publishEvent(t *testing.T, pub message.Publisher, ev *authz.AccessEvent) {
	t.Helper()
	payload, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := pub.Publish(authz.AccessEventsTopic, msg); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
}

func TestRelayPersistsEvents(t *testing.T) {
	store := newMockAuditStore()
	pub := startRelay(t, store)

	occurred := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	publishEvent(t, pub, &authz.AccessEvent{
		Event:      authz.EventRequestCreated,
		OccurredAt: occurred,
		CaseID:     "case-1",
		ActorID:    "lawyer-1",
		SubjectID:  "lawyer-1",
		RequestID:  "req-1",
	})
	publishEvent(t, pub, &authz.AccessEvent{
		Event:      authz.EventRequestApproved,
		OccurredAt: occurred.Add(time.Minute),
		CaseID:     "case-1",
		ActorID:    "client-1",
		SubjectID:  "lawyer-1",
		RequestID:  "req-1",
	})
	store.waitForInserts(t, 2)

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(store.rows))
	}
	first := store.rows[0]
	if first.Event != authz.EventRequestCreated ||
		first.CaseID != "case-1" ||
		first.ActorID != "lawyer-1" ||
		first.RequestID != "req-1" ||
		!first.OccurredAt.Equal(occurred) {
		t.Errorf("first row = %+v", first)
	}
	if first.ID == "" {
		t.Error("row ID not taken from the message UUID")
	}
	if store.rows[1].Event != authz.EventRequestApproved || store.rows[1].ActorID != "client-1" {
		t.Errorf("second row = %+v", store.rows[1])
	}
}

// The subscription opens in the constructor, so events published before
// the consume loop starts are delivered once it runs instead of being
// dropped by the bus.
func TestRelayDeliversEventsPublishedBeforeServe(t *testing.T) {
	store := newMockAuditStore()
	relay, pub := newRelayFixture(t, store)

	publishEvent(t, pub, &authz.AccessEvent{
		Event:      authz.EventRequestWithdrawn,
		OccurredAt: time.Now().UTC(),
		CaseID:     "case-1",
		ActorID:    "lawyer-1",
	})
	serve(t, relay)
	store.waitForInserts(t, 1)

	if got := store.events(); len(got) != 1 || got[0] != authz.EventRequestWithdrawn {
		t.Errorf("events = %v, want the pre-loop withdrawal persisted", got)
	}
}

// A failed insert is nacked and the message redelivered, so a transient
// store outage loses nothing.
func TestRelayRetriesFailedInserts(t *testing.T) {
	store := newMockAuditStore()
	store.failures = 2
	pub := startRelay(t, store)

	publishEvent(t, pub, &authz.AccessEvent{
		Event:      authz.EventGrantRevoked,
		OccurredAt: time.Now().UTC(),
		CaseID:     "case-1",
	})
	store.waitForInserts(t, 1)

	if got := store.events(); len(got) != 1 || got[0] != authz.EventGrantRevoked {
		t.Errorf("events = %v, want one grant-revoked row", got)
	}
}

// A payload that cannot decode is dropped, not redelivered forever, and
// the relay keeps consuming.
func TestRelayDropsMalformedPayload(t *testing.T) {
	store := newMockAuditStore()
	pub := startRelay(t, store)

	bad := message.NewMessage(watermill.NewUUID(), []byte("{not json"))
	if err := pub.Publish(authz.AccessEventsTopic, bad); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	publishEvent(t, pub, &authz.AccessEvent{
		Event:      authz.EventGrantCreated,
		OccurredAt: time.Now().UTC(),
		CaseID:     "case-1",
	})
	store.waitForInserts(t, 1)

	if got := store.events(); len(got) != 1 || got[0] != authz.EventGrantCreated {
		t.Errorf("events = %v, want only the well-formed event", got)
	}
}
