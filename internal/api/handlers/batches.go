package handlers

import (
	"net/http"

	"delivery-notify-service/internal/api/dto"
	perr "delivery-notify-service/internal/platform/errors"
	"delivery-notify-service/internal/services"

	"github.com/go-chi/chi/v5"
)

// BatchHandler exposes batch lookup and store reload.
type BatchHandler struct {
	Svc *services.Dispatcher
}

func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "batchID")
	b, ok := h.Svc.Repo.Batch(id)
	if !ok {
		writeError(w, r, perr.NotFoundf("batch %s not found", id))
		return
	}
	writeJSON(w, r, http.StatusOK, batchResponse(b))
}

// Reload replaces the in-memory batches with the store's content. On failure
// the current batches are kept.
func (h *BatchHandler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Repo.Reload(r.Context()); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ReloadResponse{Batches: len(h.Svc.Repo.Snapshot())})
}
