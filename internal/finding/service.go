package finding

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"certus/internal/activity"
	"certus/internal/execution"
	"certus/internal/framework"
	"certus/internal/platform/metrics"
	"certus/internal/remedial"
	dErrors "certus/pkg/domain-errors"
	"certus/pkg/platform/sentinel"
)

// RemedialManager is the slice of the remedial action manager the tracker
// drives: spawn on high/critical findings, close on resolution.
type RemedialManager interface {
	Spawn(ctx context.Context, findingID, reportID, title, createdBy string) (remedial.RemedialAction, error)
	CloseAllFor(ctx context.Context, findingID, closedBy string) error
}

// FindingNotifier receives fire-and-forget notification of new findings.
type FindingNotifier interface {
	NotifyFinding(ctx context.Context, finding execution.AuditFinding, reportID string)
}

// CacheInvalidator drops derived per-framework state after a finding write.
// The gap analyzer's cache hangs off this; nil disables invalidation.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, frameworkID string)
}

// Service records findings against executed procedures and manages their
// resolution. All report mutations run under the shared per-report lock;
// remedial spawn/close happens inside the same critical section so readers
// never see a resolved finding with an open action.
type Service struct {
	reports     execution.Store
	index       Store
	locks       *execution.ReportLocks
	scorer      execution.Scorer
	remedial    RemedialManager
	notifier    FindingNotifier
	activity    activity.Publisher
	invalidator CacheInvalidator
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewService(
	reports execution.Store,
	index Store,
	locks *execution.ReportLocks,
	scorer execution.Scorer,
	remedial RemedialManager,
	notifier FindingNotifier,
	publisher activity.Publisher,
	invalidator CacheInvalidator,
	m *metrics.Metrics,
) *Service {
	return &Service{
		reports:     reports,
		index:       index,
		locks:       locks,
		scorer:      scorer,
		remedial:    remedial,
		notifier:    notifier,
		activity:    publisher,
		invalidator: invalidator,
		metrics:     m,
		now:         time.Now,
	}
}

// AddRequest carries the fields of a new finding.
type AddRequest struct {
	Title               string              `json:"title"`
	Description         string              `json:"description,omitempty"`
	Category            string              `json:"category,omitempty"`
	RiskLevel           framework.RiskLevel `json:"risk_level"`
	ControlObjectiveIDs []string            `json:"control_objective_ids,omitempty"`
	Recommendation      string              `json:"recommendation,omitempty"`
	IdentifiedBy        string              `json:"identified_by"`
}

// Add records a finding against one executed procedure, recalculates the
// report's score, and spawns a remedial action when the risk is high or
// critical. Terminal reports reject additions.
func (s *Service) Add(ctx context.Context, reportID, procedureID string, req AddRequest) (execution.AuditFinding, error) {
	s.locks.Lock(reportID)
	report, err := s.loadReport(ctx, reportID)
	if err != nil {
		s.locks.Unlock(reportID)
		return execution.AuditFinding{}, err
	}
	if report.Status.IsTerminal() {
		s.locks.Unlock(reportID)
		return execution.AuditFinding{}, dErrors.New(dErrors.CodeReportTerminal,
			"cannot add finding to "+string(report.Status)+" report "+reportID)
	}

	proc := report.Procedure(procedureID)
	if proc == nil {
		s.locks.Unlock(reportID)
		return execution.AuditFinding{}, dErrors.New(dErrors.CodeProcedureNotFound,
			"procedure "+procedureID+" not in report "+reportID)
	}

	f := execution.AuditFinding{
		ID:                  uuid.NewString(),
		Title:               req.Title,
		Description:         req.Description,
		Category:            req.Category,
		RiskLevel:           req.RiskLevel,
		ControlObjectiveIDs: append([]string{}, req.ControlObjectiveIDs...),
		Recommendation:      req.Recommendation,
		IdentifiedBy:        req.IdentifiedBy,
		Status:              execution.FindingOpen,
		CreatedAt:           s.now(),
	}
	proc.Findings = append(proc.Findings, f)
	report.ComplianceScore = s.scorer.Recalculate(ctx, &report)
	report.UpdatedAt = s.now()

	if err := s.reports.Save(ctx, report); err != nil {
		s.locks.Unlock(reportID)
		return execution.AuditFinding{}, dErrors.Wrap(err, dErrors.CodeFindingCreationFailed, "finding creation failed")
	}
	if err := s.index.Save(ctx, Ref{
		FindingID:   f.ID,
		ReportID:    report.ID,
		ProcedureID: procedureID,
		FrameworkID: report.FrameworkID,
	}); err != nil {
		s.locks.Unlock(reportID)
		return execution.AuditFinding{}, dErrors.Wrap(err, dErrors.CodeFindingCreationFailed, "finding creation failed")
	}

	// Spawn rule: exactly one action per high/critical finding, decided by
	// the risk level at creation time.
	if f.RiskLevel.AtLeast(framework.RiskHigh) {
		if _, err := s.remedial.Spawn(ctx, f.ID, report.ID, "Remediate: "+f.Title, f.IdentifiedBy); err != nil {
			s.locks.Unlock(reportID)
			return execution.AuditFinding{}, err
		}
	}
	s.locks.Unlock(reportID)

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, report.FrameworkID)
	}
	if s.metrics != nil {
		s.metrics.FindingsRecorded.WithLabelValues(string(f.RiskLevel)).Inc()
	}
	s.notifier.NotifyFinding(ctx, f, report.ID)
	s.activity.Emit(ctx, activity.Event{
		Action:    activity.ActionFindingAdded,
		ReportID:  report.ID,
		FindingID: f.ID,
		Actor:     f.IdentifiedBy,
		Detail:    string(f.RiskLevel) + " " + f.Title,
	})
	return f, nil
}

// UpdateStatus sets a finding's resolution state. Transitioning to resolved
// stamps ResolvedBy/ResolvedAt and closes the finding's open remedial
// actions within the same critical section. The owning report's score is
// not recomputed here; callers trigger recalculation explicitly.
func (s *Service) UpdateStatus(ctx context.Context, findingID string, status execution.FindingStatus, resolution, actor string) (execution.AuditFinding, error) {
	ref, err := s.index.Find(ctx, findingID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return execution.AuditFinding{}, dErrors.New(dErrors.CodeFindingNotFound, "finding not found: "+findingID)
		}
		return execution.AuditFinding{}, dErrors.Wrap(err, dErrors.CodeInternal, "resolve finding ref")
	}

	s.locks.Lock(ref.ReportID)
	defer s.locks.Unlock(ref.ReportID)

	report, err := s.loadReport(ctx, ref.ReportID)
	if err != nil {
		return execution.AuditFinding{}, err
	}
	f := report.Finding(findingID)
	if f == nil {
		return execution.AuditFinding{}, dErrors.New(dErrors.CodeFindingNotFound, "finding not in report: "+findingID)
	}

	resolving := status == execution.FindingResolved && f.Status != execution.FindingResolved

	f.Status = status
	f.Resolution = resolution
	if resolving {
		f.ResolvedBy = actor
		resolvedAt := s.now()
		f.ResolvedAt = &resolvedAt
	}
	report.UpdatedAt = s.now()

	if err := s.reports.Save(ctx, report); err != nil {
		return execution.AuditFinding{}, dErrors.Wrap(err, dErrors.CodeFindingUpdateFailed, "finding update failed")
	}

	if resolving {
		if err := s.remedial.CloseAllFor(ctx, findingID, actor); err != nil {
			return execution.AuditFinding{}, err
		}
		if s.invalidator != nil {
			s.invalidator.Invalidate(ctx, report.FrameworkID)
		}
		if s.metrics != nil {
			s.metrics.FindingsResolved.Inc()
		}
		s.activity.Emit(ctx, activity.Event{
			Action:    activity.ActionFindingResolved,
			ReportID:  report.ID,
			FindingID: findingID,
			Actor:     actor,
		})
	}
	return *f, nil
}

// Get returns one finding by id.
func (s *Service) Get(ctx context.Context, findingID string) (execution.AuditFinding, error) {
	ref, err := s.index.Find(ctx, findingID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return execution.AuditFinding{}, dErrors.New(dErrors.CodeFindingNotFound, "finding not found: "+findingID)
		}
		return execution.AuditFinding{}, dErrors.Wrap(err, dErrors.CodeInternal, "resolve finding ref")
	}
	report, err := s.loadReport(ctx, ref.ReportID)
	if err != nil {
		return execution.AuditFinding{}, err
	}
	f := report.Finding(findingID)
	if f == nil {
		return execution.AuditFinding{}, dErrors.New(dErrors.CodeFindingNotFound, "finding not in report: "+findingID)
	}
	return *f, nil
}

// ListByReport returns every finding in one report.
func (s *Service) ListByReport(ctx context.Context, reportID string) ([]execution.AuditFinding, error) {
	report, err := s.loadReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	return report.AllFindings(), nil
}

// ListByFramework returns every finding across reports scoped to a
// framework. The gap analyzer reads current state through this.
func (s *Service) ListByFramework(ctx context.Context, frameworkID string) ([]execution.AuditFinding, error) {
	reports, err := s.reports.ListByFramework(ctx, frameworkID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list reports by framework")
	}
	var out []execution.AuditFinding
	for _, report := range reports {
		out = append(out, report.AllFindings()...)
	}
	return out, nil
}

func (s *Service) loadReport(ctx context.Context, reportID string) (execution.AuditReport, error) {
	report, err := s.reports.Get(ctx, reportID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return execution.AuditReport{}, dErrors.New(dErrors.CodeReportNotFound, "audit report not found: "+reportID)
		}
		return execution.AuditReport{}, dErrors.Wrap(err, dErrors.CodeInternal, "fetch report")
	}
	return report, nil
}
