package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	finance "backoffice/contexts/finance-core/financial-request-engine"
	financeports "backoffice/contexts/finance-core/financial-request-engine/ports"
	authorization "backoffice/contexts/identity-access/authorization-service"
	identity "backoffice/contexts/identity-access/identity-service"
	featuregate "backoffice/contexts/tenant-operations/feature-gate-service"
	membership "backoffice/contexts/tenant-operations/membership-service"
	tenant "backoffice/contexts/tenant-operations/tenant-service"

	"github.com/golang-jwt/jwt/v5"
)

type stubAuthorizer struct {
	allow bool
}

func (s stubAuthorizer) CanPerform(_ context.Context, _ string, _ string, _ string) (bool, error) {
	return s.allow, nil
}

func newTestServer(financeAuthorizer financeports.Authorizer) *Server {
	return New(Modules{
		Identity:      identity.NewInMemoryModule(nil),
		Tenants:       tenant.NewInMemoryModule(nil),
		Memberships:   membership.NewInMemoryModule(nil),
		Features:      featuregate.NewInMemoryModule(nil),
		Authorization: authorization.NewInMemoryModule(nil),
		Finance:       finance.NewInMemoryModule(financeAuthorizer, nil),
	}, nil, ":0", "test-secret")
}

func TestHealthz(t *testing.T) {
	server := newTestServer(stubAuthorizer{allow: true})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestFinanceSubmitRequiresActor(t *testing.T) {
	server := newTestServer(stubAuthorizer{allow: true})
	body := []byte(`{"kind":"advance","beneficiary_id":"user_2","amount":100}`)
	req := httptest.NewRequest(http.MethodPost, "/api/finance/v1/tenants/tenant_1/requests", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestFinanceSubmitDeniedWithoutPermission(t *testing.T) {
	server := newTestServer(stubAuthorizer{allow: false})
	body := []byte(`{"kind":"advance","beneficiary_id":"user_2","amount":100}`)
	req := httptest.NewRequest(http.MethodPost, "/api/finance/v1/tenants/tenant_1/requests", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user_1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestFinanceSubmitValidationReturnsFields(t *testing.T) {
	server := newTestServer(stubAuthorizer{allow: true})
	body := []byte(`{"kind":"loan","beneficiary_id":"","amount":-5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/finance/v1/tenants/tenant_1/requests", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user_1")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d body=%s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if resp.Code != "validation_failed" {
		t.Fatalf("expected validation_failed, got %q", resp.Code)
	}
	for _, field := range []string{"kind", "beneficiary_id", "amount"} {
		if resp.Fields[field] == "" {
			t.Fatalf("expected field error for %q, got %v", field, resp.Fields)
		}
	}
}

func TestTenantCreateRequiresActor(t *testing.T) {
	server := newTestServer(stubAuthorizer{allow: true})
	body := []byte(`{"name":"Acme Logistics"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/tenants/v1/tenants", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestTenantCreateAcceptsBearerToken(t *testing.T) {
	server := newTestServer(stubAuthorizer{allow: true})

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "user_admin",
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	body := []byte(`{"name":"Acme Logistics"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/tenants/v1/tenants", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestInvitationAcceptNeedsNoActor(t *testing.T) {
	server := newTestServer(stubAuthorizer{allow: true})
	body := []byte(`{"token":"not-a-real-token"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/tenants/v1/invitations/accept", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown token, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAuthzCheckFallsBackToHeaderPrincipal(t *testing.T) {
	server := newTestServer(stubAuthorizer{allow: true})
	server.authorization.Store.SetSuperAdmin("user_root", true)

	body := []byte(`{"permission":"tenant.manage"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/authz/v1/check", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user_root")

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Allowed bool   `json:"allowed"`
		Reason  string `json:"reason"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Allowed {
		t.Fatalf("expected allowed for super admin, got %+v", resp)
	}
}

func TestFeatureGateIsPublicRead(t *testing.T) {
	server := newTestServer(stubAuthorizer{allow: true})
	req := httptest.NewRequest(http.MethodGet, "/api/tenants/v1/tenants/tenant_1/features/advanced-reporting/gate", nil)

	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Enabled bool `json:"enabled"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Enabled {
		t.Fatalf("expected unknown feature gate to be closed")
	}
}
