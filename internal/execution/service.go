package execution

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"certus/internal/activity"
	"certus/internal/platform/metrics"
	"certus/internal/template"
	dErrors "certus/pkg/domain-errors"
	"certus/pkg/platform/sentinel"
)

//go:generate mockgen -source=service.go -destination=mocks/service_mock.go -package=mocks

// TemplateResolver is the slice of the template registry the execution
// engine needs.
type TemplateResolver interface {
	Get(ctx context.Context, id string) (template.AuditTemplate, error)
}

// Scorer recomputes a report's compliance score in place and returns it.
// Implementations may also update per-framework score tracking as a side
// effect.
type Scorer interface {
	Recalculate(ctx context.Context, report *AuditReport) float64
}

// StatusNotifier receives fire-and-forget status change notifications.
// Failures are the notifier's problem; they never roll back the transition.
type StatusNotifier interface {
	NotifyStatusChange(ctx context.Context, report AuditReport, previous ReportStatus)
}

// Service drives audit report creation and the report status state machine.
// All mutations of one report are serialized through the shared ReportLocks.
type Service struct {
	store     Store
	templates TemplateResolver
	scorer    Scorer
	locks     *ReportLocks
	notifier  StatusNotifier
	activity  activity.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(
	store Store,
	templates TemplateResolver,
	scorer Scorer,
	locks *ReportLocks,
	notifier StatusNotifier,
	publisher activity.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:     store,
		templates: templates,
		scorer:    scorer,
		locks:     locks,
		notifier:  notifier,
		activity:  publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// ExecuteRequest carries the parameters of a new audit run.
type ExecuteRequest struct {
	TemplateID   string    `json:"template_id"`
	AuditeeID    string    `json:"auditee_id"`
	AuditorIDs   []string  `json:"auditor_ids,omitempty"`
	PlannedStart time.Time `json:"planned_start"`
	PlannedEnd   time.Time `json:"planned_end"`
}

// ExecuteAudit instantiates a report from a template snapshot. The report
// gets frozen copies of the template's objectives and procedures; later
// template edits never touch it.
func (s *Service) ExecuteAudit(ctx context.Context, req ExecuteRequest) (AuditReport, error) {
	tmpl, err := s.templates.Get(ctx, req.TemplateID)
	if err != nil {
		return AuditReport{}, err
	}

	now := s.now()
	report := AuditReport{
		ID:                uuid.NewString(),
		TemplateID:        tmpl.ID,
		TemplateVersion:   tmpl.Version,
		FrameworkID:       tmpl.FrameworkID,
		AuditeeID:         req.AuditeeID,
		AuditorIDs:        append([]string{}, req.AuditorIDs...),
		Status:            StatusPlanned,
		PlannedStart:      req.PlannedStart,
		PlannedEnd:        req.PlannedEnd,
		ControlObjectives: snapshotObjectives(tmpl.ControlObjectives),
		Procedures:        snapshotProcedures(tmpl.Procedures),
		ComplianceScore:   0,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.store.Save(ctx, report); err != nil {
		return AuditReport{}, dErrors.Wrap(err, dErrors.CodeAuditExecutionFailed, "audit execution failed")
	}

	if s.metrics != nil {
		s.metrics.AuditsExecuted.Inc()
	}
	s.activity.Emit(ctx, activity.Event{
		Action:     activity.ActionAuditExecuted,
		TemplateID: tmpl.ID,
		ReportID:   report.ID,
		Detail:     "auditee " + req.AuditeeID,
	})
	return report, nil
}

// UpdateStatus applies a state machine transition. Entering inProgress stamps
// the actual start date once; entering completed stamps the end date and
// recomputes the compliance score. A note, when supplied, is appended as a
// statusChange note. Nothing else changes as a side effect.
func (s *Service) UpdateStatus(ctx context.Context, reportID string, next ReportStatus, notes, actor string) (AuditReport, error) {
	s.locks.Lock(reportID)
	report, err := s.load(ctx, reportID)
	if err != nil {
		s.locks.Unlock(reportID)
		return AuditReport{}, err
	}

	previous := report.Status
	if !previous.CanTransitionTo(next) {
		s.locks.Unlock(reportID)
		return AuditReport{}, dErrors.New(dErrors.CodeInvalidTransition,
			"cannot transition report from "+string(previous)+" to "+string(next))
	}

	now := s.now()
	report.Status = next
	report.UpdatedAt = now

	if next == StatusInProgress && report.ActualStart == nil {
		start := now
		report.ActualStart = &start
	}
	if next == StatusCompleted {
		end := now
		report.ActualEnd = &end
		report.ComplianceScore = s.scorer.Recalculate(ctx, &report)
	}
	if notes != "" {
		report.Notes = append(report.Notes, AuditNote{
			Type:      NoteStatusChange,
			Text:      notes,
			Author:    actor,
			CreatedAt: now,
		})
	}

	if err := s.store.Save(ctx, report); err != nil {
		s.locks.Unlock(reportID)
		return AuditReport{}, dErrors.Wrap(err, dErrors.CodeStatusUpdateFailed, "status update failed")
	}
	s.locks.Unlock(reportID)

	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(next)).Inc()
	}
	s.notifier.NotifyStatusChange(ctx, report, previous)
	s.activity.Emit(ctx, activity.Event{
		Action:   activity.ActionStatusChanged,
		ReportID: report.ID,
		Actor:    actor,
		Detail:   string(previous) + " -> " + string(next),
	})
	return report, nil
}

// UpdateProcedure sets the status, assignee or gathered evidence of one
// executed procedure within a report.
func (s *Service) UpdateProcedure(ctx context.Context, reportID, procedureID string, status ProcedureStatus, assignedTo string, evidence []string) (AuditReport, error) {
	s.locks.Lock(reportID)
	defer s.locks.Unlock(reportID)

	report, err := s.load(ctx, reportID)
	if err != nil {
		return AuditReport{}, err
	}
	if report.Status.IsTerminal() {
		return AuditReport{}, dErrors.New(dErrors.CodeReportTerminal,
			"report "+reportID+" is "+string(report.Status))
	}

	proc := report.Procedure(procedureID)
	if proc == nil {
		return AuditReport{}, dErrors.New(dErrors.CodeProcedureNotFound,
			"procedure "+procedureID+" not in report "+reportID)
	}

	if status != "" {
		proc.Status = status
	}
	if assignedTo != "" {
		proc.AssignedTo = assignedTo
	}
	if len(evidence) > 0 {
		proc.Evidence = append(proc.Evidence, evidence...)
	}
	report.UpdatedAt = s.now()

	if err := s.store.Save(ctx, report); err != nil {
		return AuditReport{}, dErrors.Wrap(err, dErrors.CodeInternal, "procedure update failed")
	}
	return report, nil
}

// RecalculateScore recomputes the report's compliance score on demand. This
// is the explicit recalculation path for callers that resolved findings and
// want the score to reflect it.
func (s *Service) RecalculateScore(ctx context.Context, reportID string) (AuditReport, error) {
	s.locks.Lock(reportID)
	defer s.locks.Unlock(reportID)

	report, err := s.load(ctx, reportID)
	if err != nil {
		return AuditReport{}, err
	}

	report.ComplianceScore = s.scorer.Recalculate(ctx, &report)
	report.UpdatedAt = s.now()

	if err := s.store.Save(ctx, report); err != nil {
		return AuditReport{}, dErrors.Wrap(err, dErrors.CodeInternal, "score recalculation failed")
	}

	s.activity.Emit(ctx, activity.Event{
		Action:   activity.ActionScoreRecalculated,
		ReportID: report.ID,
	})
	return report, nil
}

// Get returns the report with the given id.
func (s *Service) Get(ctx context.Context, reportID string) (AuditReport, error) {
	return s.load(ctx, reportID)
}

// List returns all reports.
func (s *Service) List(ctx context.Context) ([]AuditReport, error) {
	reports, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list reports")
	}
	return reports, nil
}

func (s *Service) load(ctx context.Context, reportID string) (AuditReport, error) {
	report, err := s.store.Get(ctx, reportID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return AuditReport{}, dErrors.New(dErrors.CodeReportNotFound, "audit report not found: "+reportID)
		}
		return AuditReport{}, dErrors.Wrap(err, dErrors.CodeInternal, "fetch report")
	}
	return report, nil
}

func snapshotObjectives(objectives []template.ControlObjective) []template.ControlObjective {
	out := make([]template.ControlObjective, len(objectives))
	for i, obj := range objectives {
		copied := obj
		copied.RequirementIDs = append([]string{}, obj.RequirementIDs...)
		out[i] = copied
	}
	return out
}

func snapshotProcedures(procedures []template.AuditProcedure) []ExecutedProcedure {
	out := make([]ExecutedProcedure, len(procedures))
	for i, proc := range procedures {
		copied := proc
		copied.Steps = append([]string{}, proc.Steps...)
		copied.EvidenceRequired = append([]string{}, proc.EvidenceRequired...)
		out[i] = ExecutedProcedure{
			Procedure: copied,
			Status:    ProcedureNotStarted,
		}
	}
	return out
}
