package schedule

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"certus/internal/activity"
	"certus/internal/execution"
	"certus/internal/notify"
	"certus/internal/platform/metrics"
	"certus/internal/template"
	dErrors "certus/pkg/domain-errors"
	"certus/pkg/platform/sentinel"
)

// TemplateResolver is the slice of the template registry the scheduler
// needs when binding a schedule to a template.
type TemplateResolver interface {
	Get(ctx context.Context, id string) (template.AuditTemplate, error)
}

// Executor runs an audit from a template. The execution engine's service
// satisfies it.
type Executor interface {
	ExecuteAudit(ctx context.Context, req execution.ExecuteRequest) (execution.AuditReport, error)
}

// Service manages recurring audit schedules and triggers due ones.
type Service struct {
	store     Store
	templates TemplateResolver
	executor  Executor
	notifier  notify.Notifier
	activity  activity.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(
	store Store,
	templates TemplateResolver,
	executor Executor,
	notifier notify.Notifier,
	publisher activity.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:     store,
		templates: templates,
		executor:  executor,
		notifier:  notifier,
		activity:  publisher,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateRequest carries the parameters of a new recurring schedule. An
// empty frequency falls back to the template's.
type CreateRequest struct {
	TemplateID string             `json:"template_id"`
	AuditeeID  string             `json:"auditee_id"`
	AuditorIDs []string           `json:"auditor_ids,omitempty"`
	Frequency  template.Frequency `json:"frequency,omitempty"`
	StartDate  time.Time          `json:"start_date"`
}

// ScheduleRecurring creates a schedule for the template. The schedule keeps
// the start date and the computed next audit date, one cadence after the
// start; adhoc schedules fire at the start date itself.
func (s *Service) ScheduleRecurring(ctx context.Context, req CreateRequest) (AuditSchedule, error) {
	tmpl, err := s.templates.Get(ctx, req.TemplateID)
	if err != nil {
		return AuditSchedule{}, err
	}

	frequency := req.Frequency
	if frequency == "" {
		frequency = tmpl.Frequency
	}

	now := s.now()
	start := req.StartDate
	if start.IsZero() {
		start = now
	}

	sched := AuditSchedule{
		ID:            uuid.NewString(),
		TemplateID:    tmpl.ID,
		FrameworkID:   tmpl.FrameworkID,
		AuditeeID:     req.AuditeeID,
		AuditorIDs:    append([]string{}, req.AuditorIDs...),
		Frequency:     frequency,
		StartDate:     start,
		NextAuditDate: NextAuditDate(frequency, start),
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Save(ctx, sched); err != nil {
		return AuditSchedule{}, dErrors.Wrap(err, dErrors.CodeScheduleCreationFailed, "create schedule failed")
	}

	s.activity.Emit(ctx, activity.Event{
		Action:     activity.ActionScheduleCreated,
		TemplateID: tmpl.ID,
		ScheduleID: sched.ID,
		Detail:     string(sched.Frequency) + " for auditee " + sched.AuditeeID,
	})
	return sched, nil
}

// Deactivate stops a schedule from firing. The schedule is kept for history.
func (s *Service) Deactivate(ctx context.Context, scheduleID string) (AuditSchedule, error) {
	sched, err := s.load(ctx, scheduleID)
	if err != nil {
		return AuditSchedule{}, err
	}
	if !sched.Active {
		return sched, nil
	}

	sched.Active = false
	sched.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sched); err != nil {
		return AuditSchedule{}, dErrors.Wrap(err, dErrors.CodeInternal, "deactivate schedule failed")
	}
	return sched, nil
}

// Get returns the schedule with the given id.
func (s *Service) Get(ctx context.Context, scheduleID string) (AuditSchedule, error) {
	return s.load(ctx, scheduleID)
}

// List returns all schedules.
func (s *Service) List(ctx context.Context) ([]AuditSchedule, error) {
	schedules, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list schedules")
	}
	return schedules, nil
}

// RunDue executes every active schedule that is due at the given time and
// advances its next audit date. One failing schedule does not stop the
// others; the first error is returned after the sweep completes.
func (s *Service) RunDue(ctx context.Context, at time.Time) error {
	due, err := s.store.ListDue(ctx, at)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "list due schedules")
	}

	var firstErr error
	for _, sched := range due {
		if err := s.trigger(ctx, sched); err != nil {
			s.logger.ErrorContext(ctx, "schedule trigger failed",
				"schedule_id", sched.ID,
				"template_id", sched.TemplateID,
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// auditWindow is the planned duration of a scheduled audit run.
const auditWindow = 14 * 24 * time.Hour

func (s *Service) trigger(ctx context.Context, sched AuditSchedule) error {
	report, err := s.executor.ExecuteAudit(ctx, execution.ExecuteRequest{
		TemplateID:   sched.TemplateID,
		AuditeeID:    sched.AuditeeID,
		AuditorIDs:   sched.AuditorIDs,
		PlannedStart: sched.NextAuditDate,
		PlannedEnd:   sched.NextAuditDate.Add(auditWindow),
	})
	if err != nil {
		return err
	}

	sched.LastReportID = report.ID
	sched.UpdatedAt = s.now()
	if sched.Frequency == template.FrequencyAdhoc {
		sched.Active = false
	} else {
		sched.NextAuditDate = NextAuditDate(sched.Frequency, sched.NextAuditDate)
	}

	if err := s.store.Save(ctx, sched); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "advance schedule failed")
	}

	if s.metrics != nil {
		s.metrics.SchedulesTriggered.Inc()
	}
	if sched.Active {
		s.notifier.ScheduleReminder(ctx, report.ID, sched.NextAuditDate,
			"next "+string(sched.Frequency)+" audit for "+sched.AuditeeID)
	}
	s.activity.Emit(ctx, activity.Event{
		Action:     activity.ActionScheduleTriggered,
		TemplateID: sched.TemplateID,
		ReportID:   report.ID,
		ScheduleID: sched.ID,
	})
	return nil
}

func (s *Service) load(ctx context.Context, scheduleID string) (AuditSchedule, error) {
	sched, err := s.store.Get(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return AuditSchedule{}, dErrors.New(dErrors.CodeScheduleNotFound, "schedule not found: "+scheduleID)
		}
		return AuditSchedule{}, dErrors.Wrap(err, dErrors.CodeInternal, "fetch schedule")
	}
	return sched, nil
}
