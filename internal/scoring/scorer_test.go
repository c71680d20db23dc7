package scoring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certus/internal/execution"
	"certus/internal/framework"
	"certus/internal/template"
)

func procedureWithFindings(id string, findings ...execution.AuditFinding) execution.ExecutedProcedure {
	return execution.ExecutedProcedure{
		Procedure: template.AuditProcedure{ID: id, ControlObjectiveID: "obj"},
		Status:    execution.ProcedureCompleted,
		Findings:  findings,
	}
}

func unstartedProcedure(id string, findings ...execution.AuditFinding) execution.ExecutedProcedure {
	return execution.ExecutedProcedure{
		Procedure: template.AuditProcedure{ID: id, ControlObjectiveID: "obj"},
		Status:    execution.ProcedureNotStarted,
		Findings:  findings,
	}
}

func finding(risk framework.RiskLevel, status execution.FindingStatus) execution.AuditFinding {
	return execution.AuditFinding{RiskLevel: risk, Status: status, Category: "Access Control"}
}

func TestCalculateScore(t *testing.T) {
	tests := []struct {
		name     string
		report   execution.AuditReport
		expected float64
	}{
		{
			name:     "no procedures scores zero",
			report:   execution.AuditReport{},
			expected: 0,
		},
		{
			name: "clean procedures score full",
			report: execution.AuditReport{Procedures: []execution.ExecutedProcedure{
				procedureWithFindings("p1"),
				procedureWithFindings("p2"),
			}},
			expected: 100,
		},
		{
			name: "single critical finding on two procedures",
			// base = 1/2*100 = 50, penalty = 20 -> 30
			report: execution.AuditReport{Procedures: []execution.ExecutedProcedure{
				procedureWithFindings("p1", finding(framework.RiskCritical, execution.FindingOpen)),
				procedureWithFindings("p2"),
			}},
			expected: 30,
		},
		{
			name: "unworked procedures contribute nothing to the base",
			// Neither procedure started, one critical finding already
			// recorded: base = 0, penalty = 20 -> 0, not 30.
			report: execution.AuditReport{Procedures: []execution.ExecutedProcedure{
				unstartedProcedure("p1", finding(framework.RiskCritical, execution.FindingOpen)),
				unstartedProcedure("p2"),
			}},
			expected: 0,
		},
		{
			name: "penalty exceeding base clamps to zero",
			// base = 0, penalty = 20, must not go negative
			report: execution.AuditReport{Procedures: []execution.ExecutedProcedure{
				procedureWithFindings("p1", finding(framework.RiskCritical, execution.FindingOpen)),
				procedureWithFindings("p2", finding(framework.RiskHigh, execution.FindingOpen)),
			}},
			expected: 0,
		},
		{
			name: "resolved findings pass the procedure but keep their penalty",
			// base = 100, penalty = 5 -> 95
			report: execution.AuditReport{Procedures: []execution.ExecutedProcedure{
				procedureWithFindings("p1", finding(framework.RiskMedium, execution.FindingResolved)),
			}},
			expected: 95,
		},
		{
			name: "low findings fail the procedure without penalty",
			// base = 0, penalty = 0 -> 0
			report: execution.AuditReport{Procedures: []execution.ExecutedProcedure{
				procedureWithFindings("p1", finding(framework.RiskLow, execution.FindingOpen)),
			}},
			expected: 0,
		},
		{
			name: "mixed severity penalties accumulate",
			// base = 2/4*100 = 50, penalty = 20 + 10 + 5 = 35 -> 15
			report: execution.AuditReport{Procedures: []execution.ExecutedProcedure{
				procedureWithFindings("p1", finding(framework.RiskCritical, execution.FindingOpen)),
				procedureWithFindings("p2",
					finding(framework.RiskHigh, execution.FindingOpen),
					finding(framework.RiskMedium, execution.FindingOpen)),
				procedureWithFindings("p3"),
				procedureWithFindings("p4"),
			}},
			expected: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := CalculateScore(&tt.report)
			assert.InDelta(t, tt.expected, score, 0.0001)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 100.0)
		})
	}
}

func TestRecalculateUpdatesTracker(t *testing.T) {
	tracker := NewTracker(nil)
	svc := NewService(tracker)
	ctx := context.Background()

	report := execution.AuditReport{
		FrameworkID: "iso27001",
		Procedures: []execution.ExecutedProcedure{
			procedureWithFindings("p1", finding(framework.RiskCritical, execution.FindingOpen)),
			procedureWithFindings("p2"),
		},
	}

	score := svc.Recalculate(ctx, &report)
	assert.InDelta(t, 30.0, score, 0.0001)

	tracked, ok := tracker.Get("iso27001")
	require.True(t, ok)
	assert.InDelta(t, 30.0, tracked.Score, 0.0001)
	assert.Equal(t, TrendStable, tracked.Trend, "first assessment has no prior to compare")
	assert.Equal(t, []string{"Access Control"}, tracked.RiskAreas)

	// Resolve the finding and recalculate: trend should improve.
	report.Procedures[0].Findings[0].Status = execution.FindingResolved
	score = svc.Recalculate(ctx, &report)
	assert.InDelta(t, 80.0, score, 0.0001) // base 100, penalty 20

	tracked, ok = tracker.Get("iso27001")
	require.True(t, ok)
	assert.Equal(t, TrendImproving, tracked.Trend)
	assert.Empty(t, tracked.RiskAreas, "resolved findings no longer flag a risk area")
}

func TestRiskAreasOnlyHighAndCritical(t *testing.T) {
	report := execution.AuditReport{
		FrameworkID: "sox",
		Procedures: []execution.ExecutedProcedure{
			procedureWithFindings("p1",
				execution.AuditFinding{RiskLevel: framework.RiskCritical, Status: execution.FindingOpen, Category: "Internal Controls"},
				execution.AuditFinding{RiskLevel: framework.RiskMedium, Status: execution.FindingOpen, Category: "Records Retention"},
				execution.AuditFinding{RiskLevel: framework.RiskHigh, Status: execution.FindingOpen, Category: "Internal Controls"},
			),
		},
	}

	areas := riskAreas(&report)
	assert.Equal(t, []string{"Internal Controls"}, areas)
}
