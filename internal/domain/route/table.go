package route

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
	"time"
)

// Loader fetches the authoritative route set, typically backed by the store.
type Loader interface {
	GetRoutes(ctx context.Context) ([]Route, error)
}

// Table answers longest-prefix lookups over a snapshot of routes.
// Reads are lock-free: the snapshot is published via an atomic pointer,
// mirroring the reverse-proxy target-list swap the gateway's forwarding
// path is otherwise modeled on.
type Table struct {
	snapshot atomic.Pointer[[]Route]
}

// NewTable builds a Table from an initial route set. Routes are sorted
// so that the longest Path comes first; ties break on Path for a
// deterministic, stable order across lookups.
func NewTable(routes []Route) *Table {
	t := &Table{}
	t.Store(routes)
	return t
}

// Store publishes a new route snapshot atomically.
func (t *Table) Store(routes []Route) {
	sorted := make([]Route, len(routes))
	copy(sorted, routes)
	sort.SliceStable(sorted, func(i, j int) bool {
		if len(sorted[i].Path) != len(sorted[j].Path) {
			return len(sorted[i].Path) > len(sorted[j].Path)
		}
		return sorted[i].Path < sorted[j].Path
	})
	t.snapshot.Store(&sorted)
}

// Load loads all routes from the given Loader and replaces the snapshot.
func (t *Table) Load(ctx context.Context, loader Loader) error {
	routes, err := loader.GetRoutes(ctx)
	if err != nil {
		return fmt.Errorf("loading routes: %w", err)
	}
	t.Store(routes)
	return nil
}

// Routes returns a copy of the current snapshot.
func (t *Table) Routes() []Route {
	ptr := t.snapshot.Load()
	if ptr == nil {
		return nil
	}
	out := make([]Route, len(*ptr))
	copy(out, *ptr)
	return out
}

// Match returns the route whose Path is the longest prefix of requestPath,
// or false if no route matches. The snapshot is pre-sorted longest-first,
// so the first prefix match found is the longest.
func (t *Table) Match(requestPath string) (Route, bool) {
	ptr := t.snapshot.Load()
	if ptr == nil {
		return Route{}, false
	}
	for _, r := range *ptr {
		if strings.HasPrefix(requestPath, r.Path) {
			return r, true
		}
	}
	return Route{}, false
}

// StripPrefix returns requestPath with the matched route's Path prefix
// removed. If the strip would fail (the prefix isn't actually present,
// which should not happen for a route returned by Match), the original
// path is returned unchanged per spec.
func StripPrefix(matched Route, requestPath string) string {
	stripped := strings.TrimPrefix(requestPath, matched.Path)
	if stripped == requestPath && matched.Path != "" {
		return requestPath
	}
	return stripped
}

// RefreshLoop periodically reloads the table from loader until ctx is done.
// interval <= 0 disables the loop entirely, matching the reference
// restart-only refresh policy.
func RefreshLoop(ctx context.Context, t *Table, loader Loader, interval time.Duration, onError func(error)) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.Load(ctx, loader); err != nil && onError != nil {
				onError(err)
			}
		}
	}
}
