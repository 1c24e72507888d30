package admin

import (
	"net/http"

	"github.com/sentinelgate/gatekeep/internal/domain/auth"
)

// keyResponse is the JSON representation of a persisted API key; the
// cleartext is never returned after creation.
type keyResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// createKeyRequest is the JSON body for POST /admin/keys.
type createKeyRequest struct {
	Name string `json:"name" validate:"required"`
	Key  string `json:"key" validate:"required"`
}

// handleListKeys returns every persisted API key (fingerprint omitted).
// GET /admin/keys
func (h *Handler) handleListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.store.GetAPIKeys(r.Context())
	if err != nil {
		h.logger.Error("failed to list keys", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list keys")
		return
	}

	out := make([]keyResponse, 0, len(keys))
	for _, k := range keys {
		out = append(out, keyResponse{ID: k.ID, Name: k.Name})
	}
	h.respondJSON(w, http.StatusOK, out)
}

// handleCreateKey fingerprints the supplied cleartext key and persists
// {name, fingerprint}. The cleartext is never stored or echoed back.
// POST /admin/keys
func (h *Handler) handleCreateKey(w http.ResponseWriter, r *http.Request) {
	var req createKeyRequest
	if err := h.readJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	fingerprint := auth.Fingerprint(req.Key)
	created, err := h.store.AddAPIKey(r.Context(), req.Name, fingerprint)
	if err != nil {
		h.logger.Error("failed to create api key", "name", req.Name, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create api key")
		return
	}

	h.respondJSON(w, http.StatusCreated, keyResponse{ID: created.ID, Name: created.Name})
}

// handleDeleteKey removes an API key by name.
// DELETE /admin/keys/{name}
func (h *Handler) handleDeleteKey(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	deleted, err := h.store.DeleteAPIKey(r.Context(), name)
	if err != nil {
		h.logger.Error("failed to delete api key", "name", name, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to delete api key")
		return
	}
	if !deleted {
		h.respondError(w, http.StatusNotFound, "api key not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
