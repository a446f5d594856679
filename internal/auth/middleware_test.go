// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/docket-hq/docket/internal/config"
)

func newAuthedHandler(t *testing.T, m *JWTManager) (http.Handler, *Identity) {
	t.Helper()
	svc := NewService(nil, m, &config.SecurityConfig{})
	captured := &Identity{}
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Error("handler ran without an identity in context")
			return
		}
		*captured = *id
		w.WriteHeader(http.StatusOK)
	})
	return svc.RequireAuth(inner), captured
}

func TestRequireAuthBearerHeader(t *testing.T) {
	m := newTestJWTManager(t, time.Hour)
	handler, captured := newAuthedHandler(t, m)

	token, err := m.GenerateToken("user-1", "carla", "client")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if captured.ID != "user-1" || captured.Username != "carla" || captured.Role != "client" {
		t.Errorf("identity = %+v", captured)
	}
}

func TestRequireAuthCookie(t *testing.T) {
	m := newTestJWTManager(t, time.Hour)
	handler, captured := newAuthedHandler(t, m)

	token, err := m.GenerateToken("user-2", "lena", "lawyer")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if captured.ID != "user-2" {
		t.Errorf("identity = %+v", captured)
	}
}

// Every rejection answers the identical 401 body, so a probe cannot tell
// a missing token from a bad one.
func TestRequireAuthRejections(t *testing.T) {
	m := newTestJWTManager(t, time.Hour)
	handler, _ := newAuthedHandler(t, m)

	expired := newTestJWTManager(t, -time.Minute)
	expiredToken, err := expired.GenerateToken("user-1", "carla", "client")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"no credentials", func(*http.Request) {}},
		{"garbage bearer token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer not.a.token")
		}},
		{"wrong scheme", func(r *http.Request) {
			r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		}},
		{"expired token", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+expiredToken)
		}},
		{"garbage cookie", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "junk"})
		}},
	}

	var firstBody string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			if firstBody == "" {
				firstBody = rec.Body.String()
			} else if rec.Body.String() != firstBody {
				t.Errorf("401 bodies differ: %q vs %q", rec.Body.String(), firstBody)
			}
		})
	}
}

// The cookie wins when both credentials are present.
func TestExtractTokenPrefersCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")

	if got := extractToken(req); got != "cookie-token" {
		t.Errorf("extractToken() = %q, want cookie-token", got)
	}
}
