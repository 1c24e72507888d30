// Package admin implements the control-plane HTTP API: bearer-token-gated
// CRUD over routes and API keys, plus the metrics endpoints.
package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sentinelgate/gatekeep/internal/domain/auth"
	"github.com/sentinelgate/gatekeep/internal/metrics"
	"github.com/sentinelgate/gatekeep/internal/port/outbound"
)

// Handler serves the admin plane's JSON API.
type Handler struct {
	store     outbound.Store
	metrics   *metrics.Metrics
	token     string
	tokenHash string
	logger    *slog.Logger
	validate  *validator.Validate
}

// Option configures a Handler dependency.
type Option func(*Handler)

// WithLogger sets the handler's logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// New builds a Handler gated by a bearer token. Exactly one of token or
// tokenHash should be non-empty; tokenHash (an Argon2id PHC string) takes
// precedence when both are set, per auth.VerifyAdminToken.
func New(store outbound.Store, m *metrics.Metrics, token, tokenHash string, opts ...Option) *Handler {
	h := &Handler{
		store:     store,
		metrics:   m,
		token:     token,
		tokenHash: tokenHash,
		logger:    slog.Default(),
		validate:  validator.New(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes builds the admin plane's http.Handler: /health is open, every
// other route is wrapped in the bearer-token gate.
func (h *Handler) Routes() http.Handler {
	protected := http.NewServeMux()
	protected.HandleFunc("GET /metrics", h.handleMetrics)
	protected.HandleFunc("GET /metrics/prom", h.handleMetricsProm)
	protected.HandleFunc("GET /admin/routes", h.handleListRoutes)
	protected.HandleFunc("POST /admin/routes", h.handleCreateRoute)
	protected.HandleFunc("GET /admin/routes/{path...}", h.handleGetRoute)
	protected.HandleFunc("DELETE /admin/routes/{path...}", h.handleDeleteRoute)
	protected.HandleFunc("GET /admin/keys", h.handleListKeys)
	protected.HandleFunc("POST /admin/keys", h.handleCreateKey)
	protected.HandleFunc("DELETE /admin/keys/{name}", h.handleDeleteKey)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.Handle("/", h.requireBearerToken(h.withTraceID(protected)))
	return mux
}

// withTraceID echoes the caller's X-Request-ID on the response, or sets a
// freshly generated UUID there when the caller supplied none. The ID is
// not added to the handler's log lines.
func (h *Handler) withTraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Request-ID")
		if traceID == "" {
			traceID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", traceID)
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// requireBearerToken enforces "Authorization: Bearer <token>" against the
// configured admin token (or its Argon2id hash).
func (h *Handler) requireBearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		const prefix = "Bearer "
		header := r.Header.Get("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			h.respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		presented := header[len(prefix):]
		if !auth.VerifyAdminToken(presented, h.token, h.tokenHash) {
			h.respondError(w, http.StatusUnauthorized, "invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) readJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
