package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateAndListRoutes(t *testing.T) {
	h, _ := newTestHandler(t)
	mux := h.Routes()

	body, _ := json.Marshal(createRouteRequest{Path: "/api", Upstream: "http://upstream.example.com"})
	req := withAuth(httptest.NewRequest(http.MethodPost, "/admin/routes", bytes.NewReader(body)))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created routeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Path != "/api" || created.Upstream != "http://upstream.example.com" {
		t.Errorf("unexpected created route: %+v", created)
	}

	listRec := httptest.NewRecorder()
	mux.ServeHTTP(listRec, withAuth(httptest.NewRequest(http.MethodGet, "/admin/routes", nil)))
	var routes []routeResponse
	if err := json.Unmarshal(listRec.Body.Bytes(), &routes); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("len(routes) = %d, want 1", len(routes))
	}
}

func TestCreateRouteRejectsInvalidUpstream(t *testing.T) {
	h, _ := newTestHandler(t)

	body, _ := json.Marshal(createRouteRequest{Path: "/api", Upstream: "http://localhost"})
	req := withAuth(httptest.NewRequest(http.MethodPost, "/admin/routes", bytes.NewReader(body)))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateRouteRejectsInvalidPath(t *testing.T) {
	h, _ := newTestHandler(t)

	body, _ := json.Marshal(createRouteRequest{Path: "no-leading-slash", Upstream: "http://upstream.example.com"})
	req := withAuth(httptest.NewRequest(http.MethodPost, "/admin/routes", bytes.NewReader(body)))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteRoute(t *testing.T) {
	h, store := newTestHandler(t)
	if _, err := store.AddRoute(context.Background(), "/api", "http://upstream.example.com"); err != nil {
		t.Fatalf("seed AddRoute: %v", err)
	}

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, withAuth(httptest.NewRequest(http.MethodDelete, "/admin/routes/api", nil)))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	rec2 := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec2, withAuth(httptest.NewRequest(http.MethodDelete, "/admin/routes/api", nil)))
	if rec2.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec2.Code)
	}
}

func TestGetRoute(t *testing.T) {
	h, store := newTestHandler(t)
	if _, err := store.AddRoute(context.Background(), "/api", "http://upstream.example.com"); err != nil {
		t.Fatalf("seed AddRoute: %v", err)
	}

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, withAuth(httptest.NewRequest(http.MethodGet, "/admin/routes/api", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	missRec := httptest.NewRecorder()
	h.Routes().ServeHTTP(missRec, withAuth(httptest.NewRequest(http.MethodGet, "/admin/routes/missing", nil)))
	if missRec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", missRec.Code)
	}
}
