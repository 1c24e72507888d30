// Package memstore provides an in-memory outbound.Store implementation
// for admin API and proxy pipeline unit tests, so they don't need a real
// SQLite file per test run.
package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sentinelgate/gatekeep/internal/domain/auth"
	"github.com/sentinelgate/gatekeep/internal/domain/route"
	"github.com/sentinelgate/gatekeep/internal/port/outbound"
)

// Store implements outbound.Store with in-memory maps. Thread-safe for
// concurrent access. For tests only.
type Store struct {
	mu        sync.RWMutex
	routes    map[string]route.Route
	keys      map[string]auth.ApiKey
	nextRoute int64
	nextKey   int64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		routes: make(map[string]route.Route),
		keys:   make(map[string]auth.ApiKey),
	}
}

// GetRoutes returns every persisted route.
func (s *Store) GetRoutes(ctx context.Context) ([]route.Route, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]route.Route, 0, len(s.routes))
	for _, r := range s.routes {
		out = append(out, r)
	}
	return out, nil
}

// AddRoute persists a new route. It fails if path already exists.
func (s *Store) AddRoute(ctx context.Context, path, upstream string) (route.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.routes[path]; exists {
		return route.Route{}, fmt.Errorf("route %q already exists", path)
	}
	s.nextRoute++
	r := route.Route{ID: s.nextRoute, Path: path, Upstream: upstream, CreatedAt: time.Now().UTC()}
	s.routes[path] = r
	return r, nil
}

// DeleteRoute removes the route at path, reporting whether a row was
// removed.
func (s *Store) DeleteRoute(ctx context.Context, path string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.routes[path]; !exists {
		return false, nil
	}
	delete(s.routes, path)
	return true, nil
}

// GetAPIKeys returns every persisted API key.
func (s *Store) GetAPIKeys(ctx context.Context) ([]auth.ApiKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]auth.ApiKey, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, k)
	}
	return out, nil
}

// AddAPIKey persists a new API key record. It fails if name already
// exists.
func (s *Store) AddAPIKey(ctx context.Context, name, keyHash string) (auth.ApiKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.keys[name]; exists {
		return auth.ApiKey{}, fmt.Errorf("api key %q already exists", name)
	}
	s.nextKey++
	k := auth.ApiKey{ID: s.nextKey, Name: name, KeyHash: keyHash, CreatedAt: time.Now().UTC()}
	s.keys[name] = k
	return k, nil
}

// DeleteAPIKey removes the key named name, reporting whether a row was
// removed.
func (s *Store) DeleteAPIKey(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.keys[name]; !exists {
		return false, nil
	}
	delete(s.keys, name)
	return true, nil
}

var _ outbound.Store = (*Store)(nil)
