// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func ptr(s string) *string { return &s }

func TestNewCaseDefaults(t *testing.T) {
	c := NewCase("owner-1", "Vendor dispute", "details", "contract", "")

	if c.ID == "" {
		t.Error("ID not assigned")
	}
	if c.Status != CaseStatusOpen {
		t.Errorf("Status = %q, want open", c.Status)
	}
	if c.Priority != CasePriorityMedium {
		t.Errorf("Priority = %q, want the medium default", c.Priority)
	}
	if c.CreatedAt.IsZero() || !c.CreatedAt.Equal(c.UpdatedAt) {
		t.Errorf("timestamps = %v / %v", c.CreatedAt, c.UpdatedAt)
	}
}

func TestCaseUpdateIsEmpty(t *testing.T) {
	if !(&CaseUpdate{}).IsEmpty() {
		t.Error("empty update reported non-empty")
	}
	if (&CaseUpdate{Description: ptr("")}).IsEmpty() {
		t.Error("explicit empty description reported empty")
	}
}

func TestCaseUpdateApply(t *testing.T) {
	c := NewCase("owner-1", "Vendor dispute", "details", "contract", CasePriorityHigh)
	before := c.UpdatedAt

	(&CaseUpdate{
		Status:      ptr(CaseStatusClosed),
		Description: ptr(""),
	}).Apply(c)

	if c.Status != CaseStatusClosed {
		t.Errorf("Status = %q, want closed", c.Status)
	}
	if c.Description != "" {
		t.Errorf("Description = %q, want cleared", c.Description)
	}
	// Omitted fields are untouched.
	if c.Title != "Vendor dispute" || c.Category != "contract" || c.Priority != CasePriorityHigh {
		t.Errorf("omitted fields changed: %+v", c)
	}
	if !c.UpdatedAt.After(before) && !c.UpdatedAt.Equal(before) {
		t.Errorf("UpdatedAt went backwards: %v -> %v", before, c.UpdatedAt)
	}
}

// The JSON decoding of a partial update must distinguish an omitted
// field from an explicit empty one.
func TestCaseUpdateDecoding(t *testing.T) {
	var omitted CaseUpdate
	if err := json.Unmarshal([]byte(`{"status":"closed"}`), &omitted); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if omitted.Description != nil {
		t.Error("omitted description decoded non-nil")
	}

	var cleared CaseUpdate
	if err := json.Unmarshal([]byte(`{"description":""}`), &cleared); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cleared.Description == nil || *cleared.Description != "" {
		t.Errorf("explicit empty description decoded as %v", cleared.Description)
	}
}

// The redacted summary must never carry the description or the owner.
func TestCaseSummaryRedaction(t *testing.T) {
	c := NewCase("owner-1", "Vendor dispute", "privileged details", "contract", "")
	payload, err := json.Marshal(c.Summary())
	if err != nil {
		t.Fatalf("marshal summary: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		t.Fatalf("unmarshal summary: %v", err)
	}
	for _, forbidden := range []string{"description", "owner_id", "priority", "updated_at"} {
		if _, ok := fields[forbidden]; ok {
			t.Errorf("summary leaks %q", forbidden)
		}
	}
	if fields["id"] != c.ID || fields["title"] != c.Title {
		t.Errorf("summary fields = %v", fields)
	}
}

func TestCaseStatusAndPriorityValidation(t *testing.T) {
	for _, s := range ValidCaseStatuses {
		if !IsValidCaseStatus(s) {
			t.Errorf("IsValidCaseStatus(%q) = false", s)
		}
	}
	if IsValidCaseStatus("pending") {
		t.Error("IsValidCaseStatus accepted an unknown status")
	}
	for _, p := range ValidCasePriorities {
		if !IsValidCasePriority(p) {
			t.Errorf("IsValidCasePriority(%q) = false", p)
		}
	}
	if IsValidCasePriority("critical") {
		t.Error("IsValidCasePriority accepted an unknown priority")
	}
}
