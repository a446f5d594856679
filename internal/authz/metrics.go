// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

// Prometheus metrics for the authorization system.
//
// Metrics Categories:
//   - Engine decisions: allow / not-found / forbidden per operation
//   - Route gate: casbin role-gate denials
//   - Lifecycle: access-request transitions by event name

package authz

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decision outcome labels.
const (
	outcomeAllow     = "allow"
	outcomeNotFound  = "not_found"
	outcomeForbidden = "forbidden"
)

var (
	// DecisionsTotal counts engine verdicts by operation and outcome.
	// The not_found outcome covers both missing and hidden cases; the
	// metric intentionally mirrors what clients can observe.
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docket_authz_decisions_total",
			Help: "Total number of case access decisions",
		},
		[]string{"operation", "outcome"},
	)

	// RoleGateDeniedTotal counts requests rejected by the Casbin role
	// gate before any case lookup.
	RoleGateDeniedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docket_authz_role_gate_denied_total",
			Help: "Total number of requests denied by the role gate",
		},
		[]string{"role", "method"},
	)

	// LifecycleTransitionsTotal counts access-request lifecycle events.
	LifecycleTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docket_access_lifecycle_transitions_total",
			Help: "Total number of access request lifecycle transitions",
		},
		[]string{"event"},
	)
)

// recordDecision increments the engine decision counter.
func recordDecision(operation, outcome string) {
	DecisionsTotal.WithLabelValues(operation, outcome).Inc()
}

// recordTransition increments the lifecycle transition counter.
func recordTransition(event string) {
	LifecycleTransitionsTotal.WithLabelValues(event).Inc()
}
