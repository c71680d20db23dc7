package template

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"certus/internal/activity"
	"certus/internal/framework"
	dErrors "certus/pkg/domain-errors"
	"certus/pkg/platform/sentinel"
	pstrings "certus/pkg/platform/strings"
)

// Service manages audit template creation and versioned updates. Structural
// validation runs before any store call so a failed create or update never
// leaves a partial template behind.
type Service struct {
	store    Store
	catalog  *framework.Catalog
	activity activity.Publisher
	now      func() time.Time
}

func NewService(store Store, catalog *framework.Catalog, publisher activity.Publisher) *Service {
	return &Service{store: store, catalog: catalog, activity: publisher, now: time.Now}
}

// CreateRequest carries the fields of a new template.
type CreateRequest struct {
	Name              string             `json:"name"`
	Description       string             `json:"description,omitempty"`
	FrameworkID       string             `json:"framework_id"`
	ControlObjectives []ControlObjective `json:"control_objectives"`
	Procedures        []AuditProcedure   `json:"procedures"`
	RiskAreas         []string           `json:"risk_areas,omitempty"`
	Frequency         Frequency          `json:"frequency"`
}

// Create validates and persists a new template at version "1.0".
func (s *Service) Create(ctx context.Context, req CreateRequest) (AuditTemplate, error) {
	if err := s.validate(req.Name, req.FrameworkID, req.ControlObjectives, req.Procedures); err != nil {
		return AuditTemplate{}, err
	}

	now := s.now()
	tmpl := AuditTemplate{
		ID:                uuid.NewString(),
		Name:              strings.TrimSpace(req.Name),
		Description:       req.Description,
		FrameworkID:       req.FrameworkID,
		Version:           initialVersion,
		ControlObjectives: req.ControlObjectives,
		Procedures:        req.Procedures,
		RiskAreas:         pstrings.DedupeAndTrim(req.RiskAreas),
		Frequency:         req.Frequency,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.store.Save(ctx, tmpl); err != nil {
		return AuditTemplate{}, dErrors.Wrap(err, dErrors.CodeTemplateCreationFailed, "template creation failed")
	}

	s.activity.Emit(ctx, activity.Event{
		Action:     activity.ActionTemplateCreated,
		TemplateID: tmpl.ID,
		Detail:     tmpl.Name,
	})
	return tmpl, nil
}

// Update merges partial fields into the stored template, re-validates the
// merged result, then bumps the minor version.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (AuditTemplate, error) {
	tmpl, err := s.Get(ctx, id)
	if err != nil {
		return AuditTemplate{}, err
	}

	merged := tmpl
	if req.Name != nil {
		merged.Name = *req.Name
	}
	if req.Description != nil {
		merged.Description = *req.Description
	}
	if req.ControlObjectives != nil {
		merged.ControlObjectives = req.ControlObjectives
	}
	if req.Procedures != nil {
		merged.Procedures = req.Procedures
	}
	if req.RiskAreas != nil {
		merged.RiskAreas = pstrings.DedupeAndTrim(req.RiskAreas)
	}
	if req.Frequency != nil {
		merged.Frequency = *req.Frequency
	}
	if req.IsActive != nil {
		merged.IsActive = *req.IsActive
	}

	if err := s.validate(merged.Name, merged.FrameworkID, merged.ControlObjectives, merged.Procedures); err != nil {
		return AuditTemplate{}, err
	}

	merged.Name = strings.TrimSpace(merged.Name)
	merged.Version = incrementMinor(tmpl.Version)
	merged.UpdatedAt = s.now()

	if err := s.store.Save(ctx, merged); err != nil {
		return AuditTemplate{}, dErrors.Wrap(err, dErrors.CodeTemplateUpdateFailed, "template update failed")
	}

	s.activity.Emit(ctx, activity.Event{
		Action:     activity.ActionTemplateUpdated,
		TemplateID: merged.ID,
		Detail:     "version " + merged.Version,
	})
	return merged, nil
}

// Get returns the template with the given id.
func (s *Service) Get(ctx context.Context, id string) (AuditTemplate, error) {
	tmpl, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return AuditTemplate{}, dErrors.New(dErrors.CodeTemplateNotFound, "template not found: "+id)
		}
		return AuditTemplate{}, dErrors.Wrap(err, dErrors.CodeInternal, "fetch template")
	}
	return tmpl, nil
}

// List returns all templates.
func (s *Service) List(ctx context.Context) ([]AuditTemplate, error) {
	templates, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list templates")
	}
	return templates, nil
}

// ListActive returns templates eligible for execution and scheduling.
func (s *Service) ListActive(ctx context.Context) ([]AuditTemplate, error) {
	templates, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list active templates")
	}
	return templates, nil
}

// validate enforces the structural rules: non-empty name, a known framework,
// at least one objective, at least one procedure, and every procedure mapped
// to an objective present in the same template.
func (s *Service) validate(name, frameworkID string, objectives []ControlObjective, procedures []AuditProcedure) error {
	if strings.TrimSpace(name) == "" {
		return dErrors.New(dErrors.CodeInvalidTemplateName, "template name must not be empty")
	}
	if !s.catalog.Exists(frameworkID) {
		return dErrors.New(dErrors.CodeFrameworkNotFound, "unknown framework: "+frameworkID)
	}
	if len(objectives) == 0 {
		return dErrors.New(dErrors.CodeMissingControlObjectives, "template requires at least one control objective")
	}
	if len(procedures) == 0 {
		return dErrors.New(dErrors.CodeMissingProcedures, "template requires at least one procedure")
	}

	known := make(map[string]struct{}, len(objectives))
	for _, obj := range objectives {
		known[obj.ID] = struct{}{}
	}
	for _, proc := range procedures {
		if _, ok := known[proc.ControlObjectiveID]; !ok {
			return dErrors.New(dErrors.CodeInvalidProcedureMapping,
				"procedure "+proc.ID+" references unknown control objective "+proc.ControlObjectiveID)
		}
	}
	return nil
}
