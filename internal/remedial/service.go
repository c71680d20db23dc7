package remedial

import (
	"context"
	"time"

	"github.com/google/uuid"

	"certus/internal/activity"
	"certus/internal/framework"
	"certus/internal/platform/metrics"
	dErrors "certus/pkg/domain-errors"
)

// Service auto-creates and auto-closes remedial actions for high and
// critical findings. The findings tracker calls it inside the owning
// report's critical section so readers never observe a resolved finding with
// an open action.
type Service struct {
	store    Store
	activity activity.Publisher
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewService(store Store, publisher activity.Publisher, m *metrics.Metrics) *Service {
	return &Service{store: store, activity: publisher, metrics: m, now: time.Now}
}

// Spawn creates an open action for the finding: priority high, due in 30
// days.
func (s *Service) Spawn(ctx context.Context, findingID, reportID, title, createdBy string) (RemedialAction, error) {
	now := s.now()
	action := RemedialAction{
		ID:        uuid.NewString(),
		FindingID: findingID,
		ReportID:  reportID,
		Title:     title,
		Priority:  framework.RiskHigh,
		CreatedBy: createdBy,
		DueDate:   now.Add(DueIn),
		Status:    ActionOpen,
		CreatedAt: now,
	}
	if err := s.store.Save(ctx, action); err != nil {
		return RemedialAction{}, dErrors.Wrap(err, dErrors.CodeInternal, "spawn remedial action")
	}

	if s.metrics != nil {
		s.metrics.RemedialSpawned.Inc()
	}
	s.activity.Emit(ctx, activity.Event{
		Action:    activity.ActionRemedialSpawned,
		ReportID:  reportID,
		FindingID: findingID,
		Detail:    action.ID,
	})
	return action, nil
}

// CloseAllFor completes every non-completed action referencing the finding.
func (s *Service) CloseAllFor(ctx context.Context, findingID, closedBy string) error {
	actions, err := s.store.ListByFinding(ctx, findingID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "list remedial actions")
	}

	now := s.now()
	for _, action := range actions {
		if action.Status == ActionCompleted {
			continue
		}
		action.Status = ActionCompleted
		action.CompletedBy = closedBy
		completedAt := now
		action.CompletedAt = &completedAt
		if err := s.store.Save(ctx, action); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "close remedial action")
		}
		if s.metrics != nil {
			s.metrics.RemedialClosed.Inc()
		}
		s.activity.Emit(ctx, activity.Event{
			Action:    activity.ActionRemedialClosed,
			ReportID:  action.ReportID,
			FindingID: findingID,
			Actor:     closedBy,
			Detail:    action.ID,
		})
	}
	return nil
}

// ListByFinding returns all actions for a finding.
func (s *Service) ListByFinding(ctx context.Context, findingID string) ([]RemedialAction, error) {
	actions, err := s.store.ListByFinding(ctx, findingID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list remedial actions")
	}
	return actions, nil
}

// ListOpen returns all open actions.
func (s *Service) ListOpen(ctx context.Context) ([]RemedialAction, error) {
	actions, err := s.store.ListOpen(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list open remedial actions")
	}
	return actions, nil
}

// ListByReport returns all actions attached to a report's findings.
func (s *Service) ListByReport(ctx context.Context, reportID string) ([]RemedialAction, error) {
	actions, err := s.store.ListByReport(ctx, reportID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list remedial actions by report")
	}
	return actions, nil
}
