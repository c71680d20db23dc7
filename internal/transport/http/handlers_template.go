package httptransport

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"certus/internal/platform/middleware"
	"certus/internal/template"
	"certus/internal/transport/http/shared"
	dErrors "certus/pkg/domain-errors"
)

// TemplateService is the slice of the template registry the HTTP layer uses.
type TemplateService interface {
	Create(ctx context.Context, req template.CreateRequest) (template.AuditTemplate, error)
	Update(ctx context.Context, id string, req template.UpdateRequest) (template.AuditTemplate, error)
	Get(ctx context.Context, id string) (template.AuditTemplate, error)
	List(ctx context.Context) ([]template.AuditTemplate, error)
	ListActive(ctx context.Context) ([]template.AuditTemplate, error)
}

// TemplateHandler serves the audit template endpoints.
type TemplateHandler struct {
	templates TemplateService
	logger    *slog.Logger
}

func NewTemplateHandler(templates TemplateService, logger *slog.Logger) *TemplateHandler {
	return &TemplateHandler{templates: templates, logger: logger}
}

// Register mounts the template routes.
func (h *TemplateHandler) Register(r chi.Router) {
	r.Route("/templates", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Get("/", h.handleList)
		r.Get("/{templateID}", h.handleGet)
		r.Patch("/{templateID}", h.handleUpdate)
	})
}

func (h *TemplateHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req template.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	created, err := h.templates.Create(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "template creation rejected",
			"request_id", middleware.GetRequestID(ctx),
			"name", req.Name,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *TemplateHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	templateID := chi.URLParam(r, "templateID")

	var req template.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	updated, err := h.templates.Update(ctx, templateID, req)
	if err != nil {
		h.logger.WarnContext(ctx, "template update rejected",
			"request_id", middleware.GetRequestID(ctx),
			"template_id", templateID,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, updated)
}

func (h *TemplateHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	tmpl, err := h.templates.Get(r.Context(), chi.URLParam(r, "templateID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, tmpl)
}

func (h *TemplateHandler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		templates []template.AuditTemplate
		err       error
	)
	if r.URL.Query().Get("active") == "true" {
		templates, err = h.templates.ListActive(ctx)
	} else {
		templates, err = h.templates.List(ctx)
	}
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if templates == nil {
		templates = []template.AuditTemplate{}
	}
	shared.WriteJSON(w, http.StatusOK, templates)
}
