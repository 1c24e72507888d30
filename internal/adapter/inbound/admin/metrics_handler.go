package admin

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// handleMetrics returns the spec-mandated flat JSON counter snapshot.
// GET /metrics
func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.metrics.Snapshot())
}

// handleMetricsProm serves conventional Prometheus exposition, additive
// to the mandated JSON contract at /metrics.
// GET /metrics/prom
func (h *Handler) handleMetricsProm(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(h.metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
