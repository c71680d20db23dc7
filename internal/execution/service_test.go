package execution_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"certus/internal/activity"
	"certus/internal/execution"
	"certus/internal/execution/mocks"
	"certus/internal/template"
	dErrors "certus/pkg/domain-errors"
)

type fixture struct {
	service   *execution.Service
	store     *execution.InMemoryStore
	templates *mocks.MockTemplateResolver
	scorer    *mocks.MockScorer
	notifier  *mocks.MockStatusNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		store:     execution.NewInMemoryStore(),
		templates: mocks.NewMockTemplateResolver(ctrl),
		scorer:    mocks.NewMockScorer(ctrl),
		notifier:  mocks.NewMockStatusNotifier(ctrl),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = execution.NewService(
		f.store, f.templates, f.scorer, execution.NewReportLocks(),
		f.notifier, activity.NopPublisher{}, nil, logger,
	)
	return f
}

func testTemplate() template.AuditTemplate {
	return template.AuditTemplate{
		ID:          "tpl-1",
		Name:        "Annual ISO audit",
		FrameworkID: "iso27001",
		Version:     "1.2",
		ControlObjectives: []template.ControlObjective{
			{ID: "obj-1", Title: "Access control", Category: "access", RequirementIDs: []string{"A.5"}},
		},
		Procedures: []template.AuditProcedure{
			{ID: "proc-1", ControlObjectiveID: "obj-1", Title: "Review access logs", Steps: []string{"pull logs", "sample entries"}},
		},
	}
}

func TestExecuteAuditSnapshotsTemplate(t *testing.T) {
	f := newFixture(t)
	tmpl := testTemplate()
	f.templates.EXPECT().Get(gomock.Any(), "tpl-1").Return(tmpl, nil)

	report, err := f.service.ExecuteAudit(context.Background(), execution.ExecuteRequest{
		TemplateID: "tpl-1",
		AuditeeID:  "acme",
		AuditorIDs: []string{"aud-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, execution.StatusPlanned, report.Status)
	assert.Equal(t, "1.2", report.TemplateVersion)
	assert.Equal(t, "iso27001", report.FrameworkID)
	assert.Zero(t, report.ComplianceScore)
	require.Len(t, report.Procedures, 1)
	assert.Equal(t, execution.ProcedureNotStarted, report.Procedures[0].Status)

	// Later template edits never reach the report snapshot.
	tmpl.Procedures[0].Steps[0] = "changed"
	tmpl.ControlObjectives[0].RequirementIDs[0] = "changed"

	stored, err := f.store.Get(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, "pull logs", stored.Procedures[0].Procedure.Steps[0])
	assert.Equal(t, "A.5", stored.ControlObjectives[0].RequirementIDs[0])
}

func TestExecuteAuditUnknownTemplate(t *testing.T) {
	f := newFixture(t)
	f.templates.EXPECT().Get(gomock.Any(), "nope").
		Return(template.AuditTemplate{}, dErrors.New(dErrors.CodeTemplateNotFound, "audit template not found: nope"))

	_, err := f.service.ExecuteAudit(context.Background(), execution.ExecuteRequest{TemplateID: "nope"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeTemplateNotFound))
}

func (f *fixture) executeReport(t *testing.T) execution.AuditReport {
	t.Helper()
	f.templates.EXPECT().Get(gomock.Any(), "tpl-1").Return(testTemplate(), nil)
	report, err := f.service.ExecuteAudit(context.Background(), execution.ExecuteRequest{
		TemplateID: "tpl-1",
		AuditeeID:  "acme",
	})
	require.NoError(t, err)
	return report
}

func TestUpdateStatusLifecycle(t *testing.T) {
	f := newFixture(t)
	report := f.executeReport(t)
	ctx := context.Background()

	f.notifier.EXPECT().NotifyStatusChange(gomock.Any(), gomock.Any(), gomock.Any()).Times(4)

	started, err := f.service.UpdateStatus(ctx, report.ID, execution.StatusInProgress, "", "aud-1")
	require.NoError(t, err)
	require.NotNil(t, started.ActualStart)
	firstStart := *started.ActualStart

	held, err := f.service.UpdateStatus(ctx, report.ID, execution.StatusOnHold, "waiting on evidence", "aud-1")
	require.NoError(t, err)
	assert.Equal(t, execution.StatusOnHold, held.Status)

	resumed, err := f.service.UpdateStatus(ctx, report.ID, execution.StatusInProgress, "", "aud-1")
	require.NoError(t, err)
	require.NotNil(t, resumed.ActualStart)
	assert.WithinDuration(t, firstStart, *resumed.ActualStart, 0, "actual start stamps once")

	f.scorer.EXPECT().Recalculate(gomock.Any(), gomock.Any()).Return(85.0)
	completed, err := f.service.UpdateStatus(ctx, report.ID, execution.StatusCompleted, "", "aud-1")
	require.NoError(t, err)
	assert.Equal(t, 85.0, completed.ComplianceScore)
	require.NotNil(t, completed.ActualEnd)
}

func TestUpdateStatusInvalidTransition(t *testing.T) {
	f := newFixture(t)
	report := f.executeReport(t)

	_, err := f.service.UpdateStatus(context.Background(), report.ID, execution.StatusCompleted, "", "aud-1")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func TestUpdateStatusTerminalReport(t *testing.T) {
	f := newFixture(t)
	report := f.executeReport(t)
	ctx := context.Background()

	f.notifier.EXPECT().NotifyStatusChange(gomock.Any(), gomock.Any(), gomock.Any())
	_, err := f.service.UpdateStatus(ctx, report.ID, execution.StatusCancelled, "scope dropped", "aud-1")
	require.NoError(t, err)

	_, err = f.service.UpdateStatus(ctx, report.ID, execution.StatusInProgress, "", "aud-1")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidTransition))
}

func TestUpdateStatusAppendsNote(t *testing.T) {
	f := newFixture(t)
	report := f.executeReport(t)

	f.notifier.EXPECT().NotifyStatusChange(gomock.Any(), gomock.Any(), gomock.Any())
	updated, err := f.service.UpdateStatus(context.Background(), report.ID, execution.StatusInProgress, "kickoff done", "aud-1")
	require.NoError(t, err)

	require.Len(t, updated.Notes, 1)
	assert.Equal(t, execution.NoteStatusChange, updated.Notes[0].Type)
	assert.Equal(t, "kickoff done", updated.Notes[0].Text)
	assert.Equal(t, "aud-1", updated.Notes[0].Author)
}

func TestUpdateProcedure(t *testing.T) {
	f := newFixture(t)
	report := f.executeReport(t)

	updated, err := f.service.UpdateProcedure(context.Background(), report.ID, "proc-1",
		execution.ProcedureCompleted, "aud-2", []string{"log sample"})
	require.NoError(t, err)

	proc := updated.Procedure("proc-1")
	require.NotNil(t, proc)
	assert.Equal(t, execution.ProcedureCompleted, proc.Status)
	assert.Equal(t, "aud-2", proc.AssignedTo)
	assert.Equal(t, []string{"log sample"}, proc.Evidence)
}

func TestUpdateProcedureUnknown(t *testing.T) {
	f := newFixture(t)
	report := f.executeReport(t)

	_, err := f.service.UpdateProcedure(context.Background(), report.ID, "proc-99",
		execution.ProcedureCompleted, "", nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeProcedureNotFound))
}

func TestUpdateProcedureTerminalReport(t *testing.T) {
	f := newFixture(t)
	report := f.executeReport(t)

	f.notifier.EXPECT().NotifyStatusChange(gomock.Any(), gomock.Any(), gomock.Any())
	_, err := f.service.UpdateStatus(context.Background(), report.ID, execution.StatusCancelled, "", "aud-1")
	require.NoError(t, err)

	_, err = f.service.UpdateProcedure(context.Background(), report.ID, "proc-1",
		execution.ProcedureCompleted, "", nil)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeReportTerminal))
}

func TestRecalculateScore(t *testing.T) {
	f := newFixture(t)
	report := f.executeReport(t)

	f.scorer.EXPECT().Recalculate(gomock.Any(), gomock.Any()).Return(72.5)
	updated, err := f.service.RecalculateScore(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, 72.5, updated.ComplianceScore)

	stored, err := f.store.Get(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, 72.5, stored.ComplianceScore)
}

func TestGetUnknownReport(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeReportNotFound))
}

func TestListReports(t *testing.T) {
	f := newFixture(t)
	first := f.executeReport(t)
	second := f.executeReport(t)

	reports, err := f.service.List(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, first.ID, reports[0].ID)
	assert.Equal(t, second.ID, reports[1].ID)
}
