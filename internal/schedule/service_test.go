package schedule

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certus/internal/activity"
	"certus/internal/execution"
	"certus/internal/notify"
	"certus/internal/template"
	dErrors "certus/pkg/domain-errors"
)

type stubTemplates struct {
	templates map[string]template.AuditTemplate
}

func (s *stubTemplates) Get(_ context.Context, id string) (template.AuditTemplate, error) {
	tmpl, ok := s.templates[id]
	if !ok {
		return template.AuditTemplate{}, dErrors.New(dErrors.CodeTemplateNotFound, "audit template not found: "+id)
	}
	return tmpl, nil
}

type stubExecutor struct {
	requests []execution.ExecuteRequest
	err      error
}

func (s *stubExecutor) ExecuteAudit(_ context.Context, req execution.ExecuteRequest) (execution.AuditReport, error) {
	if s.err != nil {
		return execution.AuditReport{}, s.err
	}
	s.requests = append(s.requests, req)
	return execution.AuditReport{ID: uuid.NewString(), TemplateID: req.TemplateID}, nil
}

func newTestService(t *testing.T, executor Executor, frequency template.Frequency) (*Service, *InMemoryStore) {
	t.Helper()
	store := NewInMemoryStore()
	templates := &stubTemplates{templates: map[string]template.AuditTemplate{
		"tpl-1": {ID: "tpl-1", FrameworkID: "iso27001", Frequency: frequency},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(store, templates, executor, notify.Noop{}, activity.NopPublisher{}, nil, logger)
	return svc, store
}

func TestNextAuditDate(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		frequency template.Frequency
		want      time.Time
	}{
		{template.FrequencyMonthly, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
		{template.FrequencyQuarterly, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		{template.FrequencySemiAnnual, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)},
		{template.FrequencyAnnual, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{template.FrequencyBiennial, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
		{template.FrequencyAdhoc, start},
	}
	for _, tc := range tests {
		t.Run(string(tc.frequency), func(t *testing.T) {
			assert.Equal(t, tc.want, NextAuditDate(tc.frequency, start))
		})
	}
}

func TestScheduleRecurring(t *testing.T) {
	svc, _ := newTestService(t, &stubExecutor{}, template.FrequencyQuarterly)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	sched, err := svc.ScheduleRecurring(context.Background(), CreateRequest{
		TemplateID: "tpl-1",
		AuditeeID:  "acme",
		AuditorIDs: []string{"aud-1"},
		StartDate:  start,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, sched.ID)
	assert.Equal(t, "iso27001", sched.FrameworkID)
	assert.Equal(t, template.FrequencyQuarterly, sched.Frequency)
	assert.Equal(t, start, sched.StartDate)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), sched.NextAuditDate,
		"next audit date is one cadence after the start")
	assert.True(t, sched.Active)
}

func TestScheduleRecurringFrequencyOverride(t *testing.T) {
	svc, _ := newTestService(t, &stubExecutor{}, template.FrequencyQuarterly)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	sched, err := svc.ScheduleRecurring(context.Background(), CreateRequest{
		TemplateID: "tpl-1",
		AuditeeID:  "acme",
		Frequency:  template.FrequencyMonthly,
		StartDate:  start,
	})
	require.NoError(t, err)

	assert.Equal(t, template.FrequencyMonthly, sched.Frequency)
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), sched.NextAuditDate)
}

func TestScheduleRecurringUnknownTemplate(t *testing.T) {
	svc, _ := newTestService(t, &stubExecutor{}, template.FrequencyQuarterly)

	_, err := svc.ScheduleRecurring(context.Background(), CreateRequest{TemplateID: "nope"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTemplateNotFound))
}

func TestScheduleRecurringDefaultsStartDate(t *testing.T) {
	svc, _ := newTestService(t, &stubExecutor{}, template.FrequencyMonthly)
	now := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	sched, err := svc.ScheduleRecurring(context.Background(), CreateRequest{
		TemplateID: "tpl-1",
		AuditeeID:  "acme",
	})
	require.NoError(t, err)
	assert.Equal(t, now, sched.StartDate)
	assert.Equal(t, now.AddDate(0, 1, 0), sched.NextAuditDate)
}

func TestRunDueTriggersAndAdvances(t *testing.T) {
	executor := &stubExecutor{}
	svc, store := newTestService(t, executor, template.FrequencyQuarterly)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sched, err := svc.ScheduleRecurring(context.Background(), CreateRequest{
		TemplateID: "tpl-1",
		AuditeeID:  "acme",
		AuditorIDs: []string{"aud-1"},
		StartDate:  start,
	})
	require.NoError(t, err)

	// Nothing fires before the first cadence elapses.
	require.NoError(t, svc.RunDue(context.Background(), start))
	assert.Empty(t, executor.requests)

	firstDue := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.RunDue(context.Background(), firstDue))

	require.Len(t, executor.requests, 1)
	assert.Equal(t, "tpl-1", executor.requests[0].TemplateID)
	assert.Equal(t, firstDue, executor.requests[0].PlannedStart)

	updated, err := store.Get(context.Background(), sched.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), updated.NextAuditDate)
	assert.NotEmpty(t, updated.LastReportID)
	assert.True(t, updated.Active)

	// Not due again until the next quarter.
	require.NoError(t, svc.RunDue(context.Background(), firstDue.AddDate(0, 0, 1)))
	assert.Len(t, executor.requests, 1)
}

func TestRunDueDeactivatesAdhoc(t *testing.T) {
	executor := &stubExecutor{}
	svc, store := newTestService(t, executor, template.FrequencyAdhoc)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sched, err := svc.ScheduleRecurring(context.Background(), CreateRequest{
		TemplateID: "tpl-1",
		AuditeeID:  "acme",
		StartDate:  start,
	})
	require.NoError(t, err)

	require.NoError(t, svc.RunDue(context.Background(), start))
	require.Len(t, executor.requests, 1)

	updated, err := store.Get(context.Background(), sched.ID)
	require.NoError(t, err)
	assert.False(t, updated.Active)

	require.NoError(t, svc.RunDue(context.Background(), start.AddDate(1, 0, 0)))
	assert.Len(t, executor.requests, 1, "adhoc schedule fires once")
}

func TestRunDueSkipsInactive(t *testing.T) {
	executor := &stubExecutor{}
	svc, _ := newTestService(t, executor, template.FrequencyQuarterly)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sched, err := svc.ScheduleRecurring(context.Background(), CreateRequest{
		TemplateID: "tpl-1",
		AuditeeID:  "acme",
		StartDate:  start,
	})
	require.NoError(t, err)

	_, err = svc.Deactivate(context.Background(), sched.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RunDue(context.Background(), start.AddDate(0, 6, 0)))
	assert.Empty(t, executor.requests)
}

func TestRunDueReportsExecutorFailure(t *testing.T) {
	boom := errors.New("executor down")
	executor := &stubExecutor{err: boom}
	svc, store := newTestService(t, executor, template.FrequencyQuarterly)

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sched, err := svc.ScheduleRecurring(context.Background(), CreateRequest{
		TemplateID: "tpl-1",
		AuditeeID:  "acme",
		StartDate:  start,
	})
	require.NoError(t, err)

	firstDue := start.AddDate(0, 3, 0)
	err = svc.RunDue(context.Background(), firstDue)
	require.ErrorIs(t, err, boom)

	// The schedule does not advance; the next sweep retries it.
	updated, getErr := store.Get(context.Background(), sched.ID)
	require.NoError(t, getErr)
	assert.Equal(t, firstDue, updated.NextAuditDate)
}

func TestGetUnknownSchedule(t *testing.T) {
	svc, _ := newTestService(t, &stubExecutor{}, template.FrequencyQuarterly)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeScheduleNotFound))
}
