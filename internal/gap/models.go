package gap

import (
	"time"

	"certus/internal/framework"
)

// GapStatus is the state of a detected gap. Gaps are derived data and start
// open; closure happens implicitly when the contributing findings resolve
// and the analysis is recomputed.
type GapStatus string

const (
	GapOpen GapStatus = "open"
)

// ComplianceGap is one unmet regulatory requirement inferred from findings
// across a framework's reports.
type ComplianceGap struct {
	ID               string              `json:"id"`
	FrameworkID      string              `json:"framework_id"`
	RequirementID    string              `json:"requirement_id"`
	RequirementTitle string              `json:"requirement_title"`
	RiskLevel        framework.RiskLevel `json:"risk_level"`
	Recommendations  []string            `json:"recommendations"`
	FindingIDs       []string            `json:"finding_ids"`
	Status           GapStatus           `json:"status"`
}

// Analysis is the result of one gap analysis run. It has no persisted
// identity of its own: it is always recomputable from findings plus the
// framework catalog, and any cached copy is a convenience only.
type Analysis struct {
	FrameworkID      string              `json:"framework_id"`
	Gaps             []ComplianceGap     `json:"gaps"`
	OverallRiskLevel framework.RiskLevel `json:"overall_risk_level"`
	AnalyzedAt       time.Time           `json:"analyzed_at"`
}
