package outbound

import (
	"context"

	"github.com/sentinelgate/gatekeep/internal/domain/auth"
	"github.com/sentinelgate/gatekeep/internal/domain/route"
)

// Store is the persistent backing for routes and API keys. It is an
// external collaborator: every operation is context-aware and may fail
// with an error, which the admin API surfaces as a 500.
type Store interface {
	// GetRoutes returns every persisted route.
	GetRoutes(ctx context.Context) ([]route.Route, error)

	// AddRoute persists a new route. It fails if path already exists.
	AddRoute(ctx context.Context, path, upstream string) (route.Route, error)

	// DeleteRoute removes the route at path, reporting whether a row was
	// removed.
	DeleteRoute(ctx context.Context, path string) (bool, error)

	// GetAPIKeys returns every persisted API key (fingerprints only, the
	// cleartext is never stored).
	GetAPIKeys(ctx context.Context) ([]auth.ApiKey, error)

	// AddAPIKey persists a new API key record. It fails if name already
	// exists.
	AddAPIKey(ctx context.Context, name, keyHash string) (auth.ApiKey, error)

	// DeleteAPIKey removes the key named name, reporting whether a row was
	// removed.
	DeleteAPIKey(ctx context.Context, name string) (bool, error)
}
