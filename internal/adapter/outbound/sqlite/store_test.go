package sqlite

import (
	"context"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRouteLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.AddRoute(ctx, "/api", "http://upstream.internal")
	if err != nil {
		t.Fatalf("AddRoute: %v", err)
	}
	if created.ID == 0 || created.Path != "/api" || created.Upstream != "http://upstream.internal" {
		t.Errorf("unexpected created route: %+v", created)
	}

	routes, err := s.GetRoutes(ctx)
	if err != nil {
		t.Fatalf("GetRoutes: %v", err)
	}
	if len(routes) != 1 {
		t.Fatalf("GetRoutes() len = %d, want 1", len(routes))
	}

	deleted, err := s.DeleteRoute(ctx, "/api")
	if err != nil {
		t.Fatalf("DeleteRoute: %v", err)
	}
	if !deleted {
		t.Error("expected DeleteRoute to report true")
	}

	deletedAgain, err := s.DeleteRoute(ctx, "/api")
	if err != nil {
		t.Fatalf("DeleteRoute (second): %v", err)
	}
	if deletedAgain {
		t.Error("expected second DeleteRoute to report false (idempotent-up-to-return)")
	}
}

func TestAddRouteRejectsDuplicatePath(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.AddRoute(ctx, "/dup", "http://a.internal"); err != nil {
		t.Fatalf("AddRoute: %v", err)
	}
	if _, err := s.AddRoute(ctx, "/dup", "http://b.internal"); err == nil {
		t.Fatal("expected duplicate path to fail")
	}
}

func TestAPIKeyLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.AddAPIKey(ctx, "ci", "deadbeef")
	if err != nil {
		t.Fatalf("AddAPIKey: %v", err)
	}
	if created.ID == 0 || created.Name != "ci" || created.KeyHash != "deadbeef" {
		t.Errorf("unexpected created key: %+v", created)
	}

	keys, err := s.GetAPIKeys(ctx)
	if err != nil {
		t.Fatalf("GetAPIKeys: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("GetAPIKeys() len = %d, want 1", len(keys))
	}

	deleted, err := s.DeleteAPIKey(ctx, "ci")
	if err != nil {
		t.Fatalf("DeleteAPIKey: %v", err)
	}
	if !deleted {
		t.Error("expected DeleteAPIKey to report true")
	}
	if deleted2, _ := s.DeleteAPIKey(ctx, "ci"); deleted2 {
		t.Error("expected second delete to report false")
	}
}

func TestAddAPIKeyRejectsDuplicateName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.AddAPIKey(ctx, "dup", "hash-a"); err != nil {
		t.Fatalf("AddAPIKey: %v", err)
	}
	if _, err := s.AddAPIKey(ctx, "dup", "hash-b"); err == nil {
		t.Fatal("expected duplicate name to fail")
	}
}
