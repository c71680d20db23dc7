// Package gap performs cross-audit gap analysis: it aggregates findings
// across all reports scoped to a framework and emits one ComplianceGap per
// requirement with contributing findings.
package gap

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"certus/internal/execution"
	"certus/internal/framework"
	"certus/internal/platform/metrics"
	dErrors "certus/pkg/domain-errors"
	pstrings "certus/pkg/platform/strings"
)

// FindingSource supplies the findings of every report scoped to a framework.
type FindingSource interface {
	ListByFramework(ctx context.Context, frameworkID string) ([]execution.AuditFinding, error)
}

// ObjectiveSource supplies the control objectives captured in a framework's
// report snapshots, used to link findings to requirements.
type ObjectiveSource interface {
	ListByFramework(ctx context.Context, frameworkID string) ([]execution.AuditReport, error)
}

// Cache holds previously computed analyses. It is never authoritative; a
// miss or error just forces a recompute.
type Cache interface {
	Get(ctx context.Context, frameworkID string) (Analysis, bool)
	Set(ctx context.Context, analysis Analysis)
	Invalidate(ctx context.Context, frameworkID string)
}

// Analyzer computes gap analyses. It is a pure read over current state.
type Analyzer struct {
	catalog  *framework.Catalog
	findings FindingSource
	reports  ObjectiveSource
	cache    Cache
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

func NewAnalyzer(
	catalog *framework.Catalog,
	findings FindingSource,
	reports ObjectiveSource,
	cache Cache,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Analyzer {
	return &Analyzer{
		catalog:  catalog,
		findings: findings,
		reports:  reports,
		cache:    cache,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Analyze produces the gap analysis for a framework, serving from cache when
// one is configured and warm.
func (a *Analyzer) Analyze(ctx context.Context, frameworkID string) (Analysis, error) {
	fw, err := a.catalog.Get(frameworkID)
	if err != nil {
		return Analysis{}, err
	}

	if a.cache != nil {
		if cached, ok := a.cache.Get(ctx, frameworkID); ok {
			if a.metrics != nil {
				a.metrics.GapCacheHits.Inc()
			}
			return cached, nil
		}
	}

	analysis, err := a.compute(ctx, fw)
	if err != nil {
		return Analysis{}, err
	}

	if a.cache != nil {
		a.cache.Set(ctx, analysis)
	}
	if a.metrics != nil {
		a.metrics.GapAnalyses.Inc()
	}
	a.logger.Debug("gap analysis computed",
		"framework_id", frameworkID,
		"gaps", len(analysis.Gaps),
		"overall_risk", analysis.OverallRiskLevel,
	)
	return analysis, nil
}

// Invalidate drops any cached analysis for the framework. Finding writes
// call this so the next read recomputes.
func (a *Analyzer) Invalidate(ctx context.Context, frameworkID string) {
	if a.cache != nil {
		a.cache.Invalidate(ctx, frameworkID)
	}
}

func (a *Analyzer) compute(ctx context.Context, fw framework.ComplianceFramework) (Analysis, error) {
	findings, err := a.findings.ListByFramework(ctx, fw.ID)
	if err != nil {
		return Analysis{}, dErrors.Wrap(err, dErrors.CodeGapAnalysisFailed, "gap analysis failed")
	}
	reports, err := a.reports.ListByFramework(ctx, fw.ID)
	if err != nil {
		return Analysis{}, dErrors.Wrap(err, dErrors.CodeGapAnalysisFailed, "gap analysis failed")
	}

	// Requirement -> linked objective ids, built from every report snapshot
	// of the framework. An objective links explicitly through its
	// RequirementIDs, or by category when no explicit mapping exists.
	linked := make(map[string]map[string]struct{}, len(fw.Requirements))
	for _, req := range fw.Requirements {
		linked[req.ID] = make(map[string]struct{})
	}
	reqByCategory := make(map[string][]string)
	for _, req := range fw.Requirements {
		reqByCategory[req.Category] = append(reqByCategory[req.Category], req.ID)
	}
	for _, report := range reports {
		for _, obj := range report.ControlObjectives {
			if len(obj.RequirementIDs) > 0 {
				for _, reqID := range obj.RequirementIDs {
					if set, ok := linked[reqID]; ok {
						set[obj.ID] = struct{}{}
					}
				}
				continue
			}
			for _, reqID := range reqByCategory[obj.Category] {
				linked[reqID][obj.ID] = struct{}{}
			}
		}
	}

	analysis := Analysis{
		FrameworkID:      fw.ID,
		OverallRiskLevel: framework.RiskLow,
		AnalyzedAt:       a.now(),
	}

	for _, req := range fw.Requirements {
		objectives := linked[req.ID]
		var contributing []execution.AuditFinding
		for _, f := range findings {
			if intersects(f.ControlObjectiveIDs, objectives) {
				contributing = append(contributing, f)
			}
		}
		if len(contributing) == 0 {
			continue
		}

		levels := make([]framework.RiskLevel, 0, len(contributing))
		recommendations := make([]string, 0, len(contributing))
		findingIDs := make([]string, 0, len(contributing))
		for _, f := range contributing {
			levels = append(levels, f.RiskLevel)
			recommendations = append(recommendations, f.Recommendation)
			findingIDs = append(findingIDs, f.ID)
		}

		g := ComplianceGap{
			ID:               uuid.NewString(),
			FrameworkID:      fw.ID,
			RequirementID:    req.ID,
			RequirementTitle: req.Title,
			RiskLevel:        framework.MaxRiskLevel(levels),
			Recommendations:  pstrings.DedupeAndTrim(recommendations),
			FindingIDs:       findingIDs,
			Status:           GapOpen,
		}
		analysis.Gaps = append(analysis.Gaps, g)
		if g.RiskLevel.Rank() > analysis.OverallRiskLevel.Rank() {
			analysis.OverallRiskLevel = g.RiskLevel
		}
	}

	return analysis, nil
}

func intersects(ids []string, set map[string]struct{}) bool {
	for _, id := range ids {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
