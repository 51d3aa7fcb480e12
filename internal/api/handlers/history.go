package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/mediainsight/internal/history"
)

type HistoryHandler struct {
	store history.Store
}

func NewHistoryHandler(store history.Store) *HistoryHandler {
	return &HistoryHandler{store: store}
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	recs, err := h.store.List(r.Context(), chi.URLParam(r, "userID"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *HistoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "docID")
	if err := h.store.Delete(r.Context(), chi.URLParam(r, "userID"), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
