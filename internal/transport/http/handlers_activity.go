package httptransport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"certus/internal/activity"
	"certus/internal/transport/http/shared"
)

const defaultActivityLimit = 50

// ActivityHandler serves the read side of the activity trail.
type ActivityHandler struct {
	store activity.Store
}

func NewActivityHandler(store activity.Store) *ActivityHandler {
	return &ActivityHandler{store: store}
}

// Register mounts the activity routes.
func (h *ActivityHandler) Register(r chi.Router) {
	r.Get("/activity", h.handleRecent)
	r.Get("/reports/{reportID}/activity", h.handleByReport)
}

func (h *ActivityHandler) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	events, err := h.store.ListRecent(r.Context(), limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if events == nil {
		events = []activity.Event{}
	}
	shared.WriteJSON(w, http.StatusOK, events)
}

func (h *ActivityHandler) handleByReport(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.ListByReport(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if events == nil {
		events = []activity.Event{}
	}
	shared.WriteJSON(w, http.StatusOK, events)
}
