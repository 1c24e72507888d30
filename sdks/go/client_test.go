package gatekeep

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

func TestCreateRoute(t *testing.T) {
	var receivedBody CreateRouteRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/routes" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&receivedBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Route{
			ID:        1,
			Path:      receivedBody.Path,
			Upstream:  receivedBody.Upstream,
			CreatedAt: "2026-01-01T00:00:00Z",
		})
	}))
	defer server.Close()

	client := NewClient(
		WithServerAddr(server.URL),
		WithAdminToken("test-token"),
	)

	route, err := client.CreateRoute(context.Background(), CreateRouteRequest{
		Path:     "/api/",
		Upstream: "http://upstream.internal:9000",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if route.Path != "/api/" {
		t.Errorf("expected path /api/, got %s", route.Path)
	}
	if route.Upstream != "http://upstream.internal:9000" {
		t.Errorf("expected upstream, got %s", route.Upstream)
	}
	if receivedBody.Path != "/api/" {
		t.Errorf("expected request body path /api/, got %s", receivedBody.Path)
	}
}

func TestListRoutes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]Route{
			{ID: 1, Path: "/api/", Upstream: "http://a"},
			{ID: 2, Path: "/", Upstream: "http://b"},
		})
	}))
	defer server.Close()

	client := NewClient(WithServerAddr(server.URL), WithAdminToken("t"))

	routes, err := client.ListRoutes(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(routes) != 2 {
		t.Fatalf("expected 2 routes, got %d", len(routes))
	}
}

func TestGetRouteNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "route not found"})
	}))
	defer server.Close()

	client := NewClient(WithServerAddr(server.URL), WithAdminToken("t"))

	_, err := client.GetRoute(context.Background(), "/missing")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected errors.Is(err, ErrNotFound), got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected errors.As(*APIError)")
	}
	if apiErr.Message != "route not found" {
		t.Errorf("expected message 'route not found', got %s", apiErr.Message)
	}
}

func TestDeleteRoute(t *testing.T) {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method: %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(WithServerAddr(server.URL), WithAdminToken("t"))

	if err := client.DeleteRoute(context.Background(), "/api/"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/admin/routes/api/" {
		t.Errorf("unexpected path: %s", gotPath)
	}
}

func TestCreateKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/keys" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req CreateKeyRequest
		json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(APIKey{ID: 1, Name: req.Name})
	}))
	defer server.Close()

	client := NewClient(WithServerAddr(server.URL), WithAdminToken("t"))

	key, err := client.CreateKey(context.Background(), CreateKeyRequest{Name: "ci", Key: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key.Name != "ci" {
		t.Errorf("expected name ci, got %s", key.Name)
	}
}

func TestDeleteKeyNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "api key not found"})
	}))
	defer server.Close()

	client := NewClient(WithServerAddr(server.URL), WithAdminToken("t"))

	err := client.DeleteKey(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid bearer token"})
	}))
	defer server.Close()

	client := NewClient(WithServerAddr(server.URL), WithAdminToken("wrong"))

	_, err := client.ListRoutes(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestEnvVarConfiguration(t *testing.T) {
	envVars := []string{"GATEKEEP_ADMIN_ADDR", "GATEKEEP_ADMIN_TOKEN", "GATEKEEP_TIMEOUT"}
	saved := make(map[string]string)
	for _, k := range envVars {
		saved[k] = os.Getenv(k)
	}
	defer func() {
		for k, v := range saved {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	os.Setenv("GATEKEEP_ADMIN_ADDR", "http://admin.internal:8081")
	os.Setenv("GATEKEEP_ADMIN_TOKEN", "env-token")
	os.Setenv("GATEKEEP_TIMEOUT", "10s")

	client := NewClient()

	if client.serverAddr != "http://admin.internal:8081" {
		t.Errorf("expected server addr from env, got %s", client.serverAddr)
	}
	if client.adminToken != "env-token" {
		t.Errorf("expected admin token from env, got %s", client.adminToken)
	}
	if client.timeout != 10*time.Second {
		t.Errorf("expected timeout=10s from env, got %v", client.timeout)
	}
}

func TestServerUnreachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := listener.Addr().String()
	listener.Close()

	client := NewClient(
		WithServerAddr("http://"+addr),
		WithAdminToken("t"),
		WithTimeout(200*time.Millisecond),
	)

	_, err = client.ListRoutes(context.Background())
	if err == nil {
		t.Fatal("expected error when server unreachable")
	}
}

func TestWithHTTPClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Route{})
	}))
	defer server.Close()

	customClient := &http.Client{Timeout: 30 * time.Second}

	client := NewClient(
		WithServerAddr(server.URL),
		WithAdminToken("t"),
		WithHTTPClient(customClient),
	)

	if client.httpClient != customClient {
		t.Error("expected custom http client to be used")
	}

	if _, err := client.ListRoutes(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
