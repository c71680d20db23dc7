package framework

// RiskLevel is the ordered severity scale shared across findings, control
// objectives, remedial actions and compliance gaps.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskOrder = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// Rank returns the ordering index of the risk level; unknown levels rank
// below low so malformed data never escalates.
func (r RiskLevel) Rank() int {
	if rank, ok := riskOrder[r]; ok {
		return rank
	}
	return -1
}

// AtLeast reports whether r is at or above the given level.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r.Rank() >= other.Rank()
}

// MaxRiskLevel returns the highest risk level in the slice, or RiskLow when
// the slice is empty.
func MaxRiskLevel(levels []RiskLevel) RiskLevel {
	max := RiskLow
	for _, l := range levels {
		if l.Rank() > max.Rank() {
			max = l
		}
	}
	return max
}

// ComplianceFramework is a regulatory standard with a fixed requirement list.
// Frameworks are seeded at startup and treated as immutable.
type ComplianceFramework struct {
	ID                string                  `json:"id"`
	Name              string                  `json:"name"`
	Version           string                  `json:"version"`
	CertificationBody string                  `json:"certification_body,omitempty"`
	Requirements      []RegulatoryRequirement `json:"requirements"`
}

// RegulatoryRequirement is one clause of a framework.
type RegulatoryRequirement struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Mandatory bool   `json:"mandatory"`
}
