package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sentinelgate/gatekeep/internal/adapter/outbound/memstore"
	"github.com/sentinelgate/gatekeep/internal/metrics"
)

func newTestHandler(t *testing.T) (*Handler, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	h := New(store, metrics.New(), "test-token", "")
	return h, store
}

func TestHealthBypassesAuth(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestProtectedEndpointRequiresBearerToken(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/routes", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestProtectedEndpointRejectsWrongToken(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/admin/routes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func withAuth(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer test-token")
	return req
}
