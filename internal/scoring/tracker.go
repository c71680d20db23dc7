package scoring

import (
	"context"
	"sync"
	"time"

	"certus/internal/platform/metrics"
)

// Trend describes score movement relative to the previous assessment.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// ComplianceScore is the per-framework tracking record updated on every
// score recalculation.
type ComplianceScore struct {
	FrameworkID    string    `json:"framework_id"`
	Score          float64   `json:"score"`
	LastAssessment time.Time `json:"last_assessment"`
	Trend          Trend     `json:"trend"`
	RiskAreas      []string  `json:"risk_areas,omitempty"`
}

// Tracker keeps the latest compliance score per framework, in memory. It is
// derived state: losing it costs only trend continuity, never correctness.
type Tracker struct {
	mu      sync.RWMutex
	scores  map[string]ComplianceScore
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewTracker(m *metrics.Metrics) *Tracker {
	return &Tracker{
		scores:  make(map[string]ComplianceScore),
		metrics: m,
		now:     time.Now,
	}
}

// Record updates the tracked score for a framework and derives the trend
// against the previous value.
func (t *Tracker) Record(_ context.Context, frameworkID string, score float64, riskAreas []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	trend := TrendStable
	if prev, ok := t.scores[frameworkID]; ok {
		switch {
		case score > prev.Score:
			trend = TrendImproving
		case score < prev.Score:
			trend = TrendDeclining
		}
	}

	t.scores[frameworkID] = ComplianceScore{
		FrameworkID:    frameworkID,
		Score:          score,
		LastAssessment: t.now(),
		Trend:          trend,
		RiskAreas:      riskAreas,
	}

	if t.metrics != nil {
		t.metrics.ComplianceScore.WithLabelValues(frameworkID).Set(score)
	}
}

// Get returns the tracked score for a framework.
func (t *Tracker) Get(frameworkID string) (ComplianceScore, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	score, ok := t.scores[frameworkID]
	return score, ok
}

// All returns every tracked framework score.
func (t *Tracker) All() []ComplianceScore {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]ComplianceScore, 0, len(t.scores))
	for _, s := range t.scores {
		out = append(out, s)
	}
	return out
}
