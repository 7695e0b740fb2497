package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/elms/internal/model"
	"github.com/dukerupert/elms/internal/store"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

type ActivityHandler struct {
	activityStore *store.ActivityStore
	logger        *slog.Logger
}

func NewActivityHandler(as *store.ActivityStore, logger *slog.Logger) *ActivityHandler {
	return &ActivityHandler{activityStore: as, logger: logger}
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxActivityLimit)
	}

	entries, err := h.activityStore.Recent(limit)
	if err != nil {
		h.logger.Error("list activity", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list activity")
		return
	}
	if entries == nil {
		entries = []model.Activity{}
	}
	writeJSON(w, http.StatusOK, entries)
}
