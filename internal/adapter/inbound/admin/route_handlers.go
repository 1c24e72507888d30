package admin

import (
	"net/http"

	"github.com/sentinelgate/gatekeep/internal/domain/route"
	"github.com/sentinelgate/gatekeep/internal/domain/upstream"
)

// routeResponse is the JSON representation of a persisted Route.
type routeResponse struct {
	ID        int64  `json:"id"`
	Path      string `json:"path"`
	Upstream  string `json:"upstream"`
	CreatedAt string `json:"created_at"`
}

func toRouteResponse(r route.Route) routeResponse {
	return routeResponse{
		ID:        r.ID,
		Path:      r.Path,
		Upstream:  r.Upstream,
		CreatedAt: r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// createRouteRequest is the JSON body for POST /admin/routes.
type createRouteRequest struct {
	Path     string `json:"path" validate:"required"`
	Upstream string `json:"upstream" validate:"required,url"`
}

// handleListRoutes returns every persisted route.
// GET /admin/routes
func (h *Handler) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.store.GetRoutes(r.Context())
	if err != nil {
		h.logger.Error("failed to list routes", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list routes")
		return
	}

	out := make([]routeResponse, 0, len(routes))
	for _, rt := range routes {
		out = append(out, toRouteResponse(rt))
	}
	h.respondJSON(w, http.StatusOK, out)
}

// handleGetRoute returns the single route matching the path, if any.
// GET /admin/routes/{path...}
func (h *Handler) handleGetRoute(w http.ResponseWriter, r *http.Request) {
	fullPath := "/" + r.PathValue("path")

	routes, err := h.store.GetRoutes(r.Context())
	if err != nil {
		h.logger.Error("failed to get route", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get route")
		return
	}
	for _, rt := range routes {
		if rt.Path == fullPath {
			h.respondJSON(w, http.StatusOK, toRouteResponse(rt))
			return
		}
	}
	h.respondError(w, http.StatusNotFound, "route not found")
}

// handleCreateRoute validates and persists a new route.
// POST /admin/routes
func (h *Handler) handleCreateRoute(w http.ResponseWriter, r *http.Request) {
	var req createRouteRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := upstream.ValidatePath(req.Path); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := upstream.ValidateUpstream(req.Upstream); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.store.AddRoute(r.Context(), req.Path, req.Upstream)
	if err != nil {
		h.logger.Error("failed to create route", "path", req.Path, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create route")
		return
	}

	h.respondJSON(w, http.StatusCreated, toRouteResponse(created))
}

// handleDeleteRoute removes a route by its full path.
// DELETE /admin/routes/{path...}
func (h *Handler) handleDeleteRoute(w http.ResponseWriter, r *http.Request) {
	fullPath := "/" + r.PathValue("path")

	deleted, err := h.store.DeleteRoute(r.Context(), fullPath)
	if err != nil {
		h.logger.Error("failed to delete route", "path", fullPath, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to delete route")
		return
	}
	if !deleted {
		h.respondError(w, http.StatusNotFound, "route not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
