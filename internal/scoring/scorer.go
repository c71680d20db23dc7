// Package scoring computes the weighted compliance score of an audit report
// and tracks per-framework score history.
package scoring

import (
	"context"

	"certus/internal/execution"
	"certus/internal/framework"
)

// Severity penalties per unresolved-or-resolved finding. Low findings carry
// no penalty; they affect the score only by failing their procedure.
const (
	penaltyCritical = 20
	penaltyHigh     = 10
	penaltyMedium   = 5
)

// CalculateScore derives a report's compliance score:
//
//	base    = passedProcedures / totalProcedures * 100 (0 when no procedures)
//	penalty = 20*critical + 10*high + 5*medium across all findings
//	score   = clamp(base - penalty, 0, 100)
//
// A procedure passes only once it is completed with all findings resolved,
// so a freshly executed audit scores 0 until work is recorded.
//
// The subtraction is unbounded before the final clamp, so a report with few
// procedures and many critical findings reads 0, not a negative number.
// Callers must not skip the clamp.
func CalculateScore(report *execution.AuditReport) float64 {
	total := len(report.Procedures)
	if total == 0 {
		return 0
	}

	passed := 0
	penalty := 0.0
	for _, proc := range report.Procedures {
		if proc.Passed() {
			passed++
		}
		for _, f := range proc.Findings {
			switch f.RiskLevel {
			case framework.RiskCritical:
				penalty += penaltyCritical
			case framework.RiskHigh:
				penalty += penaltyHigh
			case framework.RiskMedium:
				penalty += penaltyMedium
			}
		}
	}

	base := float64(passed) / float64(total) * 100
	score := base - penalty
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Service implements execution.Scorer: it recomputes the score in one pass
// over the in-memory aggregate and updates the per-framework tracking
// record.
type Service struct {
	tracker *Tracker
}

func NewService(tracker *Tracker) *Service {
	return &Service{tracker: tracker}
}

func (s *Service) Recalculate(ctx context.Context, report *execution.AuditReport) float64 {
	score := CalculateScore(report)
	if s.tracker != nil {
		s.tracker.Record(ctx, report.FrameworkID, score, riskAreas(report))
	}
	return score
}

// riskAreas collects the distinct categories of unresolved high and critical
// findings. Resolved findings keep their score penalty but no longer flag an
// active risk area.
func riskAreas(report *execution.AuditReport) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, f := range report.AllFindings() {
		if f.IsResolved() || !f.RiskLevel.AtLeast(framework.RiskHigh) {
			continue
		}
		if f.Category == "" {
			continue
		}
		if _, ok := seen[f.Category]; !ok {
			seen[f.Category] = struct{}{}
			out = append(out, f.Category)
		}
	}
	return out
}
