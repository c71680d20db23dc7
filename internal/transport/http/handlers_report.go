package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certus/internal/execution"
	"certus/internal/platform/middleware"
	"certus/internal/reportgen"
	"certus/internal/transport/http/shared"
	dErrors "certus/pkg/domain-errors"
)

// ReportService is the slice of the execution engine the HTTP layer uses.
type ReportService interface {
	ExecuteAudit(ctx context.Context, req execution.ExecuteRequest) (execution.AuditReport, error)
	UpdateStatus(ctx context.Context, reportID string, next execution.ReportStatus, notes, actor string) (execution.AuditReport, error)
	UpdateProcedure(ctx context.Context, reportID, procedureID string, status execution.ProcedureStatus, assignedTo string, evidence []string) (execution.AuditReport, error)
	RecalculateScore(ctx context.Context, reportID string) (execution.AuditReport, error)
	Get(ctx context.Context, reportID string) (execution.AuditReport, error)
	List(ctx context.Context) ([]execution.AuditReport, error)
}

// DocumentGenerator renders the comprehensive report document.
type DocumentGenerator interface {
	Generate(ctx context.Context, report execution.AuditReport) (reportgen.ComprehensiveAuditReport, error)
}

// ReportHandler serves the audit report endpoints.
type ReportHandler struct {
	reports   ReportService
	documents DocumentGenerator
	logger    *slog.Logger
}

func NewReportHandler(reports ReportService, documents DocumentGenerator, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, documents: documents, logger: logger}
}

// Register mounts the report routes.
func (h *ReportHandler) Register(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Post("/", h.handleExecute)
		r.Get("/", h.handleList)
		r.Get("/{reportID}", h.handleGet)
		r.Post("/{reportID}/status", h.handleUpdateStatus)
		r.Patch("/{reportID}/procedures/{procedureID}", h.handleUpdateProcedure)
		r.Post("/{reportID}/recalculate", h.handleRecalculate)
		r.Get("/{reportID}/document", h.handleDocument)
	})
}

func (h *ReportHandler) handleExecute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req execution.ExecuteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	report, err := h.reports.ExecuteAudit(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "audit execution rejected",
			"request_id", middleware.GetRequestID(ctx),
			"template_id", req.TemplateID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, report)
}

type statusRequest struct {
	Status execution.ReportStatus `json:"status"`
	Notes  string                 `json:"notes,omitempty"`
	Actor  string                 `json:"actor"`
}

func (h *ReportHandler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reportID := chi.URLParam(r, "reportID")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	report, err := h.reports.UpdateStatus(ctx, reportID, req.Status, req.Notes, req.Actor)
	if err != nil {
		h.logger.WarnContext(ctx, "status transition rejected",
			"request_id", middleware.GetRequestID(ctx),
			"report_id", reportID,
			"to", string(req.Status),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, report)
}

type procedureRequest struct {
	Status     execution.ProcedureStatus `json:"status,omitempty"`
	AssignedTo string                    `json:"assigned_to,omitempty"`
	Evidence   []string                  `json:"evidence,omitempty"`
}

func (h *ReportHandler) handleUpdateProcedure(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reportID := chi.URLParam(r, "reportID")
	procedureID := chi.URLParam(r, "procedureID")

	var req procedureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	report, err := h.reports.UpdateProcedure(ctx, reportID, procedureID, req.Status, req.AssignedTo, req.Evidence)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.RecalculateScore(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) handleDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.reports.Get(ctx, chi.URLParam(r, "reportID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	doc, err := h.documents.Generate(ctx, report)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, doc)
}

func (h *ReportHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.Get(r.Context(), chi.URLParam(r, "reportID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, report)
}

func (h *ReportHandler) handleList(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if reports == nil {
		reports = []execution.AuditReport{}
	}
	shared.WriteJSON(w, http.StatusOK, reports)
}
