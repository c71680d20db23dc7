package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certus/internal/execution"
	"certus/internal/finding"
	"certus/internal/platform/middleware"
	"certus/internal/remedial"
	"certus/internal/transport/http/shared"
	dErrors "certus/pkg/domain-errors"
)

// FindingService is the slice of the findings tracker the HTTP layer uses.
type FindingService interface {
	Add(ctx context.Context, reportID, procedureID string, req finding.AddRequest) (execution.AuditFinding, error)
	UpdateStatus(ctx context.Context, findingID string, status execution.FindingStatus, resolution, actor string) (execution.AuditFinding, error)
	Get(ctx context.Context, findingID string) (execution.AuditFinding, error)
	ListByReport(ctx context.Context, reportID string) ([]execution.AuditFinding, error)
}

// RemedialService is the slice of the remedial action manager the HTTP layer
// uses. Actions are spawned and closed by the findings tracker, never
// directly through the API.
type RemedialService interface {
	ListByFinding(ctx context.Context, findingID string) ([]remedial.RemedialAction, error)
	ListOpen(ctx context.Context) ([]remedial.RemedialAction, error)
	ListByReport(ctx context.Context, reportID string) ([]remedial.RemedialAction, error)
}

// FindingHandler serves the finding and remedial action endpoints.
type FindingHandler struct {
	findings  FindingService
	remedials RemedialService
	logger    *slog.Logger
}

func NewFindingHandler(findings FindingService, remedials RemedialService, logger *slog.Logger) *FindingHandler {
	return &FindingHandler{findings: findings, remedials: remedials, logger: logger}
}

// Register mounts the finding and remedial action routes.
func (h *FindingHandler) Register(r chi.Router) {
	r.Post("/reports/{reportID}/procedures/{procedureID}/findings", h.handleAdd)
	r.Get("/reports/{reportID}/findings", h.handleListByReport)
	r.Get("/reports/{reportID}/actions", h.handleActionsByReport)

	r.Route("/findings", func(r chi.Router) {
		r.Get("/{findingID}", h.handleGet)
		r.Post("/{findingID}/status", h.handleUpdateStatus)
		r.Get("/{findingID}/actions", h.handleActionsByFinding)
	})
	r.Get("/actions/open", h.handleOpenActions)
}

func (h *FindingHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reportID := chi.URLParam(r, "reportID")
	procedureID := chi.URLParam(r, "procedureID")

	var req finding.AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	added, err := h.findings.Add(ctx, reportID, procedureID, req)
	if err != nil {
		h.logger.WarnContext(ctx, "finding rejected",
			"request_id", middleware.GetRequestID(ctx),
			"report_id", reportID,
			"procedure_id", procedureID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, added)
}

type findingStatusRequest struct {
	Status     execution.FindingStatus `json:"status"`
	Resolution string                  `json:"resolution,omitempty"`
	Actor      string                  `json:"actor"`
}

func (h *FindingHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	findingID := chi.URLParam(r, "findingID")

	var req findingStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.findings.UpdateStatus(ctx, findingID, req.Status, req.Resolution, req.Actor)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, updated)
}

func (h *FindingHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	f, err := h.findings.Get(r.Context(), chi.URLParam(r, "findingID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, f)
}

func (h *FindingHandler) handleListByReport(w http.ResponseWriter, r *http.Request) {
	findings, err := h.findings.ListByReport(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if findings == nil {
		findings = []execution.AuditFinding{}
	}
	shared.WriteJSON(w, http.StatusOK, findings)
}

func (h *FindingHandler) handleActionsByFinding(w http.ResponseWriter, r *http.Request) {
	h.writeActions(w, r, func(ctx context.Context) ([]remedial.RemedialAction, error) {
		return h.remedials.ListByFinding(ctx, chi.URLParam(r, "findingID"))
	})
}

func (h *FindingHandler) handleActionsByReport(w http.ResponseWriter, r *http.Request) {
	h.writeActions(w, r, func(ctx context.Context) ([]remedial.RemedialAction, error) {
		return h.remedials.ListByReport(ctx, chi.URLParam(r, "reportID"))
	})
}

func (h *FindingHandler) handleOpenActions(w http.ResponseWriter, r *http.Request) {
	h.writeActions(w, r, h.remedials.ListOpen)
}

func (h *FindingHandler) writeActions(w http.ResponseWriter, r *http.Request, list func(context.Context) ([]remedial.RemedialAction, error)) {
	actions, err := list(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if actions == nil {
		actions = []remedial.RemedialAction{}
	}
	shared.WriteJSON(w, http.StatusOK, actions)
}
