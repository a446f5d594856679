// Docket - Legal Case Management API
// Copyright 2026 Docket Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/docket-hq/docket

/*
router_test.go - HTTP-Level Tests

These run the real router over an in-memory database: real auth
middleware, real role gate, real engine and lifecycle. What they pin
down is the HTTP contract, above all the enumeration-resistance rule
that a hidden case and a missing case answer byte-identical 404s.
*/

package api

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/docket-hq/docket/internal/auth"
	"github.com/docket-hq/docket/internal/authz"
	"github.com/docket-hq/docket/internal/config"
	"github.com/docket-hq/docket/internal/database"
	"github.com/docket-hq/docket/internal/docstore"
	"github.com/docket-hq/docket/internal/models"
)

type testServer struct {
	handler http.Handler
	db      *database.DB
	jwt     *auth.JWTManager

	carla *models.User // client, owns caseX
	devon *models.User // client, owns caseY
	lena  *models.User // lawyer
	admin *models.User

	caseX *models.Case
	caseY *models.Case
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8480, Timeout: 5 * time.Second},
		Database: config.DatabaseConfig{
			Path: ":memory:",
		},
		Security: config.SecurityConfig{
			JWTSecret:            "test-secret-test-secret-test-secret",
			SessionTimeout:       time.Hour,
			BcryptCost:           4,
			RateLimitReqs:        1000,
			RateLimitWindow:      time.Minute,
			LoginRateLimitReqs:   100,
			LoginRateLimitWindow: time.Minute,
			CORSOrigins:          []string{"*"},
			LawyerDiscovery:      true,
		},
		Storage: config.StorageConfig{
			DocumentsDir:     t.TempDir(),
			MaxUploadBytes:   1 << 20,
			AllowedMIMETypes: []string{"application/pdf", "text/plain"},
		},
		API: config.APIConfig{DefaultPageSize: 20, MaxPageSize: 100},
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := testConfig(t)

	db, err := database.New(&cfg.Database)
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	docs, err := docstore.New(&cfg.Storage)
	if err != nil {
		t.Fatalf("docstore.New() error = %v", err)
	}

	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { _ = bus.Close() })

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		t.Fatalf("authz.NewEnforcer() error = %v", err)
	}
	t.Cleanup(enforcer.Stop)

	engine := authz.NewEngine(db, db, authz.EngineConfig{
		LawyerDiscovery: cfg.Security.LawyerDiscovery,
	})
	lifecycle := authz.NewLifecycle(engine, db, db, db, bus)

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatalf("auth.NewJWTManager() error = %v", err)
	}
	authSvc := auth.NewService(db, jwtManager, &cfg.Security)

	ts := &testServer{
		handler: NewRouter(cfg, db, authSvc, enforcer, engine, lifecycle, docs).Handler(),
		db:      db,
		jwt:     jwtManager,
	}

	ctx := context.Background()
	seed := func(username, role string) *models.User {
		u := models.NewUser(username, username+"@test.local", "hash", role)
		if err := db.CreateUser(ctx, u); err != nil {
			t.Fatalf("seed user %s: %v", username, err)
		}
		return u
	}
	ts.carla = seed("carla", models.RoleClient)
	ts.devon = seed("devon", models.RoleClient)
	ts.lena = seed("lena", models.RoleLawyer)
	ts.admin = seed("admin", models.RoleAdmin)

	ts.caseX = models.NewCase(ts.carla.ID, "Vendor dispute", "Delivery terms disagreement.", "contract", "")
	ts.caseY = models.NewCase(ts.devon.ID, "Lease renewal", "Clause 14 refusal.", "real_estate", "")
	for _, c := range []*models.Case{ts.caseX, ts.caseY} {
		if err := db.CreateCase(ctx, c); err != nil {
			t.Fatalf("seed case %s: %v", c.Title, err)
		}
	}
	return ts
}

// do issues a request as the given user (nil for anonymous) and returns
// the recorder.
func (ts *testServer) do(t *testing.T, user *models.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		token, err := ts.jwt.GenerateToken(user.ID, user.Username, user.Role)
		if err != nil {
			t.Fatalf("GenerateToken() error = %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) *models.APIResponse {
	t.Helper()
	resp := &models.APIResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), resp); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return resp
}

func TestUnauthenticatedRequestsGet401(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/v1/cases", "/api/v1/cases/" + ts.caseX.ID, "/api/v1/auth/me"} {
		rec := ts.do(t, nil, http.MethodGet, path, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", path, rec.Code)
		}
	}
}

// The read path must answer the same bytes for "case does not exist" and
// "case exists but the caller has no access".
func TestReadPathEnumerationResistance(t *testing.T) {
	ts := newTestServer(t)

	hidden := ts.do(t, ts.lena, http.MethodGet, "/api/v1/cases/"+ts.caseX.ID, nil)
	missing := ts.do(t, ts.lena, http.MethodGet, "/api/v1/cases/00000000-0000-0000-0000-000000000000", nil)

	if hidden.Code != http.StatusNotFound || missing.Code != http.StatusNotFound {
		t.Fatalf("status = %d / %d, want 404 / 404", hidden.Code, missing.Code)
	}
	if hidden.Body.String() != missing.Body.String() {
		t.Errorf("bodies differ:\n hidden: %s\nmissing: %s", hidden.Body.String(), missing.Body.String())
	}

	resp := decodeEnvelope(t, hidden)
	if resp.Success || resp.Error != "Case not found" {
		t.Errorf("envelope = %+v, want success=false error=\"Case not found\"", resp)
	}
}

func TestClientCannotTouchForeignCase(t *testing.T) {
	ts := newTestServer(t)

	// Read and mutate paths both answer 404: a foreign client has zero
	// access, so there is no "exists but forbidden" to reveal.
	get := ts.do(t, ts.carla, http.MethodGet, "/api/v1/cases/"+ts.caseY.ID, nil)
	patch := ts.do(t, ts.carla, http.MethodPatch, "/api/v1/cases/"+ts.caseY.ID,
		map[string]string{"title": "hijacked"})
	if get.Code != http.StatusNotFound || patch.Code != http.StatusNotFound {
		t.Errorf("status = %d / %d, want 404 / 404", get.Code, patch.Code)
	}
}

// Lawyers never mutate case content, grant or no grant. The role gate
// answers 403 before any case lookup.
func TestLawyerMutationAlwaysForbidden(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	if err := ts.db.CreateGrant(ctx, models.NewCaseAccessGrant(ts.caseX.ID, ts.lena.ID, ts.carla.ID)); err != nil {
		t.Fatalf("CreateGrant() error = %v", err)
	}
	// The grant lets lena read...
	if rec := ts.do(t, ts.lena, http.MethodGet, "/api/v1/cases/"+ts.caseX.ID, nil); rec.Code != http.StatusOK {
		t.Fatalf("granted GET status = %d, want 200", rec.Code)
	}
	// ...but never write.
	patch := ts.do(t, ts.lena, http.MethodPatch, "/api/v1/cases/"+ts.caseX.ID,
		map[string]string{"title": "lawyer edit"})
	del := ts.do(t, ts.lena, http.MethodDelete, "/api/v1/cases/"+ts.caseX.ID, nil)
	if patch.Code != http.StatusForbidden || del.Code != http.StatusForbidden {
		t.Errorf("status = %d / %d, want 403 / 403", patch.Code, del.Code)
	}
}

func TestCaseCreateAndPartialUpdate(t *testing.T) {
	ts := newTestServer(t)

	create := ts.do(t, ts.carla, http.MethodPost, "/api/v1/cases", map[string]string{
		"title":       "New dispute",
		"description": "Initial description",
		"category":    "contract",
	})
	if create.Code != http.StatusCreated {
		t.Fatalf("create status = %d (body %s)", create.Code, create.Body.String())
	}
	var created models.Case
	env := decodeEnvelope(t, create)
	raw, _ := json.Marshal(env.Data)
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("decode created case: %v", err)
	}

	// Omitting description leaves it; sending "" clears it.
	patch := ts.do(t, ts.carla, http.MethodPatch, "/api/v1/cases/"+created.ID,
		map[string]string{"status": models.CaseStatusInProgress})
	if patch.Code != http.StatusOK {
		t.Fatalf("patch status = %d (body %s)", patch.Code, patch.Body.String())
	}
	get := ts.do(t, ts.carla, http.MethodGet, "/api/v1/cases/"+created.ID, nil)
	var after models.Case
	raw, _ = json.Marshal(decodeEnvelope(t, get).Data)
	if err := json.Unmarshal(raw, &after); err != nil {
		t.Fatalf("decode case: %v", err)
	}
	if after.Status != models.CaseStatusInProgress || after.Description != "Initial description" {
		t.Errorf("after partial update = %+v", after)
	}

	clear := ts.do(t, ts.carla, http.MethodPatch, "/api/v1/cases/"+created.ID,
		map[string]string{"description": ""})
	if clear.Code != http.StatusOK {
		t.Fatalf("clear status = %d", clear.Code)
	}
	get = ts.do(t, ts.carla, http.MethodGet, "/api/v1/cases/"+created.ID, nil)
	raw, _ = json.Marshal(decodeEnvelope(t, get).Data)
	if err := json.Unmarshal(raw, &after); err != nil {
		t.Fatalf("decode case: %v", err)
	}
	if after.Description != "" {
		t.Errorf("description = %q, want cleared", after.Description)
	}

	empty := ts.do(t, ts.carla, http.MethodPatch, "/api/v1/cases/"+created.ID, map[string]string{})
	if empty.Code != http.StatusBadRequest {
		t.Errorf("empty patch status = %d, want 400", empty.Code)
	}
}

func TestCaseListingIsScoped(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, ts.carla, http.MethodGet, "/api/v1/cases", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listing models.CaseListResponse
	raw, _ := json.Marshal(decodeEnvelope(t, rec).Data)
	if err := json.Unmarshal(raw, &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if listing.Total != 1 || len(listing.Cases) != 1 || listing.Cases[0].ID != ts.caseX.ID {
		t.Errorf("carla's listing = %+v, want only her case", listing)
	}

	// A lawyer with no grants sees an empty list, not an error.
	rec = ts.do(t, ts.lena, http.MethodGet, "/api/v1/cases", nil)
	raw, _ = json.Marshal(decodeEnvelope(t, rec).Data)
	if err := json.Unmarshal(raw, &listing); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if listing.Total != 0 {
		t.Errorf("ungranted lawyer listing total = %d, want 0", listing.Total)
	}
}

func TestBrowseIsRedacted(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, ts.lena, http.MethodGet, "/api/v1/cases/browse", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("browse status = %d (body %s)", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if strings.Contains(body, "description") || strings.Contains(body, "owner_id") {
		t.Errorf("browse listing leaks redacted fields: %s", body)
	}
	var listing models.CaseSummaryListResponse
	raw, _ := json.Marshal(decodeEnvelope(t, rec).Data)
	if err := json.Unmarshal(raw, &listing); err != nil {
		t.Fatalf("decode browse listing: %v", err)
	}
	if listing.Total != 2 {
		t.Errorf("browse total = %d, want all cases", listing.Total)
	}

	// Browsing grants no access.
	if get := ts.do(t, ts.lena, http.MethodGet, "/api/v1/cases/"+ts.caseX.ID, nil); get.Code != http.StatusNotFound {
		t.Errorf("post-browse GET status = %d, want 404", get.Code)
	}

	// Clients never browse.
	if rec := ts.do(t, ts.carla, http.MethodGet, "/api/v1/cases/browse", nil); rec.Code != http.StatusForbidden {
		t.Errorf("client browse status = %d, want 403", rec.Code)
	}
}

// The end-to-end workflow of the access request lifecycle over HTTP.
func TestAccessRequestWorkflow(t *testing.T) {
	ts := newTestServer(t)
	caseURL := "/api/v1/cases/" + ts.caseX.ID

	// Lena asks for access.
	rec := ts.do(t, ts.lena, http.MethodPost, caseURL+"/access-requests", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("request status = %d (body %s)", rec.Code, rec.Body.String())
	}
	var req models.CaseAccessRequest
	raw, _ := json.Marshal(decodeEnvelope(t, rec).Data)
	if err := json.Unmarshal(raw, &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}

	// Asking again while pending is a business-rule rejection.
	if rec := ts.do(t, ts.lena, http.MethodPost, caseURL+"/access-requests", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate request status = %d, want 400", rec.Code)
	}

	// Devon cannot approve carla's request queue entry.
	if rec := ts.do(t, ts.devon, http.MethodPost, "/api/v1/access-requests/"+req.ID+"/approve", nil); rec.Code != http.StatusNotFound {
		t.Errorf("foreign approve status = %d, want 404", rec.Code)
	}

	// Carla approves; lena can now read the case.
	if rec := ts.do(t, ts.carla, http.MethodPost, "/api/v1/access-requests/"+req.ID+"/approve", nil); rec.Code != http.StatusOK {
		t.Fatalf("approve status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if rec := ts.do(t, ts.lena, http.MethodGet, caseURL, nil); rec.Code != http.StatusOK {
		t.Errorf("post-approve GET status = %d, want 200", rec.Code)
	}

	// Replay is rejected.
	if rec := ts.do(t, ts.carla, http.MethodPost, "/api/v1/access-requests/"+req.ID+"/approve", nil); rec.Code != http.StatusBadRequest {
		t.Errorf("approve replay status = %d, want 400", rec.Code)
	}

	// Carla revokes; lena is back to 404.
	if rec := ts.do(t, ts.carla, http.MethodDelete, caseURL+"/grants/"+ts.lena.ID, nil); rec.Code != http.StatusOK {
		t.Fatalf("revoke status = %d (body %s)", rec.Code, rec.Body.String())
	}
	if rec := ts.do(t, ts.lena, http.MethodGet, caseURL, nil); rec.Code != http.StatusNotFound {
		t.Errorf("post-revoke GET status = %d, want 404", rec.Code)
	}
}

func TestWithdrawThenRerequest(t *testing.T) {
	ts := newTestServer(t)
	caseURL := "/api/v1/cases/" + ts.caseX.ID

	rec := ts.do(t, ts.lena, http.MethodPost, caseURL+"/access-requests", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("request status = %d", rec.Code)
	}
	var req models.CaseAccessRequest
	raw, _ := json.Marshal(decodeEnvelope(t, rec).Data)
	if err := json.Unmarshal(raw, &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}

	if rec := ts.do(t, ts.lena, http.MethodDelete, "/api/v1/access-requests/"+req.ID, nil); rec.Code != http.StatusOK {
		t.Fatalf("withdraw status = %d (body %s)", rec.Code, rec.Body.String())
	}
	// The slate is clean: a new request succeeds.
	if rec := ts.do(t, ts.lena, http.MethodPost, caseURL+"/access-requests", nil); rec.Code != http.StatusCreated {
		t.Errorf("re-request status = %d, want 201", rec.Code)
	}
}

func TestDirectGrantEndpoint(t *testing.T) {
	ts := newTestServer(t)
	caseURL := "/api/v1/cases/" + ts.caseX.ID

	rec := ts.do(t, ts.carla, http.MethodPost, caseURL+"/grants",
		map[string]string{"lawyer_id": ts.lena.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("grant status = %d (body %s)", rec.Code, rec.Body.String())
	}
	// Granting a client account is rejected with a business error.
	rec = ts.do(t, ts.carla, http.MethodPost, caseURL+"/grants",
		map[string]string{"lawyer_id": ts.devon.ID})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("grant-to-client status = %d, want 400", rec.Code)
	}
	// Duplicate grant is a business error too.
	rec = ts.do(t, ts.carla, http.MethodPost, caseURL+"/grants",
		map[string]string{"lawyer_id": ts.lena.ID})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate grant status = %d, want 400", rec.Code)
	}
}

func TestDocumentUploadDownload(t *testing.T) {
	ts := newTestServer(t)
	payload := []byte("hearing transcript, page one")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="transcript.txt"`},
		"Content-Type":        {"text/plain"},
	})
	if err != nil {
		t.Fatalf("CreatePart() error = %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cases/"+ts.caseX.ID+"/documents", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	token, err := ts.jwt.GenerateToken(ts.carla.ID, ts.carla.Username, ts.carla.Role)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d (body %s)", rec.Code, rec.Body.String())
	}

	var doc models.Document
	raw, _ := json.Marshal(decodeEnvelope(t, rec).Data)
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc.Size != int64(len(payload)) {
		t.Errorf("size = %d, want %d", doc.Size, len(payload))
	}

	download := ts.do(t, ts.carla, http.MethodGet,
		"/api/v1/cases/"+ts.caseX.ID+"/documents/"+doc.ID+"/download", nil)
	if download.Code != http.StatusOK {
		t.Fatalf("download status = %d", download.Code)
	}
	if !bytes.Equal(download.Body.Bytes(), payload) {
		t.Errorf("download bytes differ from upload")
	}

	// A stranger's download answers the case-level 404.
	if rec := ts.do(t, ts.devon, http.MethodGet,
		"/api/v1/cases/"+ts.caseX.ID+"/documents/"+doc.ID+"/download", nil); rec.Code != http.StatusNotFound {
		t.Errorf("stranger download status = %d, want 404", rec.Code)
	}
}

func TestAdminAuditEndpoint(t *testing.T) {
	ts := newTestServer(t)

	if rec := ts.do(t, ts.admin, http.MethodGet, "/api/v1/admin/audit", nil); rec.Code != http.StatusOK {
		t.Errorf("admin audit status = %d, want 200", rec.Code)
	}
	if rec := ts.do(t, ts.carla, http.MethodGet, "/api/v1/admin/audit", nil); rec.Code != http.StatusForbidden {
		t.Errorf("client audit status = %d, want 403", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/v1/health", "/api/v1/health/ready"} {
		rec := ts.do(t, nil, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
	}
}
