package gatekeep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Client is the gatekeep SDK client. It communicates with a gatekeep
// admin API instance to manage the route table and API-key table behind
// a gateway.
type Client struct {
	serverAddr string
	adminToken string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new gatekeep SDK client.
// It reads configuration from GATEKEEP_* environment variables by
// default. Options can be used to override the defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		serverAddr: os.Getenv("GATEKEEP_ADMIN_ADDR"),
		adminToken: os.Getenv("GATEKEEP_ADMIN_TOKEN"),
		timeout:    parseDurationEnv("GATEKEEP_TIMEOUT", 5*time.Second),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
		}
	}

	return c
}

// ListRoutes returns every persisted route.
func (c *Client) ListRoutes(ctx context.Context) ([]Route, error) {
	var routes []Route
	if err := c.doRequest(ctx, http.MethodGet, "/admin/routes", nil, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

// GetRoute returns the route matching path, or an error satisfying
// errors.Is(err, ErrNotFound) if none matches.
func (c *Client) GetRoute(ctx context.Context, path string) (*Route, error) {
	var route Route
	p := "/admin/routes/" + strings.TrimPrefix(path, "/")
	if err := c.doRequest(ctx, http.MethodGet, p, nil, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

// CreateRoute persists a new route and returns the stored record.
func (c *Client) CreateRoute(ctx context.Context, req CreateRouteRequest) (*Route, error) {
	var route Route
	if err := c.doRequest(ctx, http.MethodPost, "/admin/routes", req, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

// DeleteRoute removes the route matching path. It returns an error
// satisfying errors.Is(err, ErrNotFound) if no route matched.
func (c *Client) DeleteRoute(ctx context.Context, path string) error {
	p := "/admin/routes/" + strings.TrimPrefix(path, "/")
	return c.doRequest(ctx, http.MethodDelete, p, nil, nil)
}

// ListKeys returns every persisted API key. The cleartext key material
// is never returned by the server.
func (c *Client) ListKeys(ctx context.Context) ([]APIKey, error) {
	var keys []APIKey
	if err := c.doRequest(ctx, http.MethodGet, "/admin/keys", nil, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// CreateKey fingerprints and persists a new API key, returning its
// stored record (cleartext is never echoed back).
func (c *Client) CreateKey(ctx context.Context, req CreateKeyRequest) (*APIKey, error) {
	var key APIKey
	if err := c.doRequest(ctx, http.MethodPost, "/admin/keys", req, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// DeleteKey removes an API key by name. It returns an error satisfying
// errors.Is(err, ErrNotFound) if no key matched.
func (c *Client) DeleteKey(ctx context.Context, name string) error {
	p := "/admin/keys/" + url.PathEscape(name)
	return c.doRequest(ctx, http.MethodDelete, p, nil, nil)
}

// doRequest performs an HTTP request against the admin API and decodes
// a JSON response into result, if non-nil.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	reqURL := strings.TrimRight(c.serverAddr, "/") + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.adminToken != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.adminToken)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("gatekeep admin API unreachable: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if httpResp.StatusCode == http.StatusNoContent {
		return nil
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: httpResp.StatusCode}
		var decoded struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &decoded) == nil {
			apiErr.Message = decoded.Error
		} else {
			c.logger.Warn("gatekeep admin API returned non-JSON error body",
				"status", httpResp.StatusCode)
		}
		return apiErr
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

func parseDurationEnv(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return defaultVal
}
