// Package gatekeep provides a Go SDK for the gatekeep control-plane API.
//
// gatekeep is a two-plane reverse proxy: a data-plane gateway that
// authenticates, rate-limits, and forwards requests, and a control-plane
// admin API that manages the route table and API-key table behind it.
// This SDK wraps the admin API so Go operators can manage routes and keys
// programmatically instead of shelling out to curl.
//
// Quick start:
//
//	client := gatekeep.NewClient(
//	    gatekeep.WithServerAddr("http://localhost:8081"),
//	    gatekeep.WithAdminToken("admin-secret"),
//	)
//
//	route, err := client.CreateRoute(ctx, gatekeep.CreateRouteRequest{
//	    Path:     "/api/",
//	    Upstream: "http://upstream.internal:9000",
//	})
package gatekeep

// Route is the JSON representation of a persisted route returned by the
// admin API.
type Route struct {
	ID        int64  `json:"id"`
	Path      string `json:"path"`
	Upstream  string `json:"upstream"`
	CreatedAt string `json:"created_at"`
}

// CreateRouteRequest is the request body for CreateRoute.
type CreateRouteRequest struct {
	Path     string `json:"path"`
	Upstream string `json:"upstream"`
}

// APIKey is the JSON representation of a persisted API key. The
// cleartext key material is never returned by the server.
type APIKey struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreateKeyRequest is the request body for CreateKey. Key is the
// cleartext API key; the server fingerprints it before storing it and
// never echoes it back.
type CreateKeyRequest struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}
