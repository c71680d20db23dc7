package httptransport

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certus/internal/activity"
	"certus/internal/execution"
	"certus/internal/finding"
	"certus/internal/framework"
	"certus/internal/gap"
	"certus/internal/notify"
	"certus/internal/remedial"
	"certus/internal/reportgen"
	"certus/internal/schedule"
	"certus/internal/scoring"
	"certus/internal/template"
	"certus/internal/transport/http/shared"
)

// newTestRouter wires the full engine on in-memory stores, the same shape
// main assembles for production.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := framework.NewCatalog(framework.DefaultFrameworks())
	publisher := activity.NopPublisher{}
	activityStore := activity.NewInMemoryStore()

	tracker := scoring.NewTracker(nil)
	scorer := scoring.NewService(tracker)
	locks := execution.NewReportLocks()
	notifier := notify.Noop{}

	templateSvc := template.NewService(template.NewInMemoryStore(), catalog, publisher)

	reportStore := execution.NewInMemoryStore()
	reportSvc := execution.NewService(reportStore, templateSvc, scorer, locks, notifier, publisher, nil, logger)

	remedialSvc := remedial.NewService(remedial.NewInMemoryStore(), publisher, nil)
	findingSvc := finding.NewService(reportStore, finding.NewInMemoryStore(), locks,
		scorer, remedialSvc, notifier, publisher, nil, nil)

	analyzer := gap.NewAnalyzer(catalog, findingSvc, reportStore, nil, nil, logger)
	generator := reportgen.NewGenerator(catalog, remedialSvc)
	scheduleSvc := schedule.NewService(schedule.NewInMemoryStore(), templateSvc, reportSvc,
		notifier, publisher, nil, logger)

	return NewRouter(Deps{
		Templates:  NewTemplateHandler(templateSvc, logger),
		Reports:    NewReportHandler(reportSvc, generator, logger),
		Findings:   NewFindingHandler(findingSvc, remedialSvc, logger),
		Frameworks: NewFrameworkHandler(catalog, analyzer, tracker),
		Schedules:  NewScheduleHandler(scheduleSvc, logger),
		Activity:   NewActivityHandler(activityStore),
		Logger:     logger,
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func createTemplate(t *testing.T, router http.Handler) template.AuditTemplate {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/templates", template.CreateRequest{
		Name:        "ISO 27001 annual audit",
		FrameworkID: "iso27001",
		Frequency:   template.FrequencyQuarterly,
		ControlObjectives: []template.ControlObjective{
			{ID: "obj-1", Title: "Access control", Category: "Access Control",
				RiskLevel: framework.RiskHigh, RequirementIDs: []string{"A.5.15"}},
		},
		Procedures: []template.AuditProcedure{
			{ID: "proc-1", ControlObjectiveID: "obj-1", Title: "Review access grants",
				Steps: []string{"sample accounts", "verify approvals"}},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[template.AuditTemplate](t, rec)
}

func TestTemplateLifecycle(t *testing.T) {
	router := newTestRouter(t)

	tmpl := createTemplate(t, router)
	assert.Equal(t, "1.0", tmpl.Version)
	assert.True(t, tmpl.IsActive)

	name := "ISO 27001 annual audit v2"
	rec := doJSON(t, router, http.MethodPatch, "/templates/"+tmpl.ID, template.UpdateRequest{Name: &name})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[template.AuditTemplate](t, rec)
	assert.Equal(t, "1.1", updated.Version)
	assert.Equal(t, name, updated.Name)

	rec = doJSON(t, router, http.MethodGet, "/templates?active=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]template.AuditTemplate](t, rec), 1)
}

func TestTemplateValidationError(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/templates", template.CreateRequest{
		Name:        "incomplete",
		FrameworkID: "iso27001",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[shared.ErrorResponse](t, rec)
	assert.Equal(t, "missing_control_objectives", resp.Error)
}

func TestAuditLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	tmpl := createTemplate(t, router)

	// Execute an audit from the template.
	rec := doJSON(t, router, http.MethodPost, "/reports", execution.ExecuteRequest{
		TemplateID: tmpl.ID,
		AuditeeID:  "acme",
		AuditorIDs: []string{"aud-1"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	report := decode[execution.AuditReport](t, rec)
	assert.Equal(t, execution.StatusPlanned, report.Status)

	// Start it.
	rec = doJSON(t, router, http.MethodPost, "/reports/"+report.ID+"/status",
		map[string]string{"status": "inProgress", "actor": "aud-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Record a critical finding against the only procedure.
	rec = doJSON(t, router, http.MethodPost,
		"/reports/"+report.ID+"/procedures/proc-1/findings", finding.AddRequest{
			Title:               "Orphaned admin accounts",
			Category:            "Access Control",
			RiskLevel:           framework.RiskCritical,
			ControlObjectiveIDs: []string{"obj-1"},
			Recommendation:      "Disable orphaned accounts",
			IdentifiedBy:        "aud-1",
		})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	recorded := decode[execution.AuditFinding](t, rec)

	// One procedure failing plus the penalty floors the score at 0.
	rec = doJSON(t, router, http.MethodGet, "/reports/"+report.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decode[execution.AuditReport](t, rec).ComplianceScore)

	// The critical finding spawned an open remedial action.
	rec = doJSON(t, router, http.MethodGet, "/findings/"+recorded.ID+"/actions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	actions := decode[[]remedial.RemedialAction](t, rec)
	require.Len(t, actions, 1)
	assert.Equal(t, remedial.ActionOpen, actions[0].Status)

	// The gap analysis links the finding to the access control requirement.
	rec = doJSON(t, router, http.MethodGet, "/frameworks/iso27001/gaps", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	analysis := decode[gap.Analysis](t, rec)
	require.Len(t, analysis.Gaps, 1)
	assert.Equal(t, "A.5.15", analysis.Gaps[0].RequirementID)
	assert.Equal(t, framework.RiskCritical, analysis.OverallRiskLevel)

	// Resolve the finding; its action closes.
	rec = doJSON(t, router, http.MethodPost, "/findings/"+recorded.ID+"/status",
		map[string]string{"status": "resolved", "resolution": "accounts disabled", "actor": "aud-2"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/findings/"+recorded.ID+"/actions", nil)
	actions = decode[[]remedial.RemedialAction](t, rec)
	require.Len(t, actions, 1)
	assert.Equal(t, remedial.ActionCompleted, actions[0].Status)

	// Finish the procedure with its evidence.
	rec = doJSON(t, router, http.MethodPatch,
		"/reports/"+report.ID+"/procedures/proc-1",
		map[string]any{"status": "completed", "evidence": []string{"account export"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Recalculate: the completed procedure passes, the penalty remains.
	rec = doJSON(t, router, http.MethodPost, "/reports/"+report.ID+"/recalculate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 80.0, decode[execution.AuditReport](t, rec).ComplianceScore)

	// Complete the audit and fetch the comprehensive document.
	rec = doJSON(t, router, http.MethodPost, "/reports/"+report.ID+"/status",
		map[string]string{"status": "completed", "actor": "aud-1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/reports/"+report.ID+"/document", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[reportgen.ComprehensiveAuditReport](t, rec)
	assert.Equal(t, 1, doc.ExecutiveSummary.ResolvedFindings)
	assert.Contains(t, doc.CertificationStatement, "ISO/IEC 27001:2022")
}

func TestInvalidTransitionOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	tmpl := createTemplate(t, router)

	rec := doJSON(t, router, http.MethodPost, "/reports", execution.ExecuteRequest{
		TemplateID: tmpl.ID,
		AuditeeID:  "acme",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	report := decode[execution.AuditReport](t, rec)

	rec = doJSON(t, router, http.MethodPost, "/reports/"+report.ID+"/status",
		map[string]string{"status": "completed", "actor": "aud-1"})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_status_transition", decode[shared.ErrorResponse](t, rec).Error)
}

func TestScheduleEndpoints(t *testing.T) {
	router := newTestRouter(t)
	tmpl := createTemplate(t, router)

	rec := doJSON(t, router, http.MethodPost, "/schedules", schedule.CreateRequest{
		TemplateID: tmpl.ID,
		AuditeeID:  "acme",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sched := decode[schedule.AuditSchedule](t, rec)
	assert.True(t, sched.Active)
	assert.Equal(t, template.FrequencyQuarterly, sched.Frequency)

	rec = doJSON(t, router, http.MethodPost, "/schedules/"+sched.ID+"/deactivate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[schedule.AuditSchedule](t, rec).Active)

	rec = doJSON(t, router, http.MethodGet, "/schedules", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]schedule.AuditSchedule](t, rec), 1)
}

func TestFrameworkEndpoints(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/frameworks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	frameworks := decode[[]framework.ComplianceFramework](t, rec)
	assert.Len(t, frameworks, 5)

	rec = doJSON(t, router, http.MethodGet, "/frameworks/unknown", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "framework_not_found", decode[shared.ErrorResponse](t, rec).Error)

	rec = doJSON(t, router, http.MethodGet, "/frameworks/iso27001/score", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	score := decode[scoring.ComplianceScore](t, rec)
	assert.Equal(t, "iso27001", score.FrameworkID)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}
