package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certus/internal/platform/middleware"
	"certus/internal/schedule"
	"certus/internal/transport/http/shared"
	dErrors "certus/pkg/domain-errors"
)

// ScheduleService is the slice of the scheduler the HTTP layer uses.
type ScheduleService interface {
	ScheduleRecurring(ctx context.Context, req schedule.CreateRequest) (schedule.AuditSchedule, error)
	Deactivate(ctx context.Context, scheduleID string) (schedule.AuditSchedule, error)
	Get(ctx context.Context, scheduleID string) (schedule.AuditSchedule, error)
	List(ctx context.Context) ([]schedule.AuditSchedule, error)
}

// ScheduleHandler serves the recurring schedule endpoints.
type ScheduleHandler struct {
	schedules ScheduleService
	logger    *slog.Logger
}

func NewScheduleHandler(schedules ScheduleService, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, logger: logger}
}

// Register mounts the schedule routes.
func (h *ScheduleHandler) Register(r chi.Router) {
	r.Route("/schedules", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{scheduleID}", h.handleGet)
		r.Post("/{scheduleID}/deactivate", h.handleDeactivate)
	})
}

func (h *ScheduleHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req schedule.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.schedules.ScheduleRecurring(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "schedule creation rejected",
			"request_id", middleware.GetRequestID(ctx),
			"template_id", req.TemplateID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *ScheduleHandler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	sched, err := h.schedules.Deactivate(r.Context(), chi.URLParam(r, "scheduleID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sched)
}

func (h *ScheduleHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	sched, err := h.schedules.Get(r.Context(), chi.URLParam(r, "scheduleID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, sched)
}

func (h *ScheduleHandler) handleList(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.schedules.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if schedules == nil {
		schedules = []schedule.AuditSchedule{}
	}
	shared.WriteJSON(w, http.StatusOK, schedules)
}
