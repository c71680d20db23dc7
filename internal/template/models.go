package template

import (
	"time"

	"certus/internal/framework"
)

// Frequency is the cadence an audit template is expected to run at. The
// scheduler shares this type when computing next audit dates.
type Frequency string

const (
	FrequencyMonthly    Frequency = "monthly"
	FrequencyQuarterly  Frequency = "quarterly"
	FrequencySemiAnnual Frequency = "semiAnnual"
	FrequencyAnnual     Frequency = "annual"
	FrequencyBiennial   Frequency = "biennial"
	FrequencyAdhoc      Frequency = "adhoc"
)

// ControlObjective is a compliance goal a template is designed to satisfy.
// RequirementIDs link the objective to framework requirement clauses for gap
// analysis; when empty the analyzer falls back to category matching.
type ControlObjective struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Description    string              `json:"description,omitempty"`
	Category       string              `json:"category"`
	RiskLevel      framework.RiskLevel `json:"risk_level"`
	RequirementIDs []string            `json:"requirement_ids,omitempty"`
}

// AuditProcedure is an ordered checklist step testing one control objective.
type AuditProcedure struct {
	ID                 string   `json:"id"`
	ControlObjectiveID string   `json:"control_objective_id"`
	Title              string   `json:"title"`
	Steps              []string `json:"steps"`
	EvidenceRequired   []string `json:"evidence_required,omitempty"`
}

// AuditTemplate is a reusable audit blueprint bound to one framework.
// Templates are never deleted; updates bump the minor version in place.
type AuditTemplate struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	Description       string             `json:"description,omitempty"`
	FrameworkID       string             `json:"framework_id"`
	Version           string             `json:"version"`
	ControlObjectives []ControlObjective `json:"control_objectives"`
	Procedures        []AuditProcedure   `json:"procedures"`
	RiskAreas         []string           `json:"risk_areas,omitempty"`
	Frequency         Frequency          `json:"frequency"`
	IsActive          bool               `json:"is_active"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// ObjectiveIndex returns the template's control objectives keyed by id.
func (t AuditTemplate) ObjectiveIndex() map[string]ControlObjective {
	idx := make(map[string]ControlObjective, len(t.ControlObjectives))
	for _, obj := range t.ControlObjectives {
		idx[obj.ID] = obj
	}
	return idx
}

// UpdateRequest carries the partial fields of an update. Nil fields are left
// untouched; the merged result is re-validated before persistence.
type UpdateRequest struct {
	Name              *string            `json:"name,omitempty"`
	Description       *string            `json:"description,omitempty"`
	ControlObjectives []ControlObjective `json:"control_objectives,omitempty"`
	Procedures        []AuditProcedure   `json:"procedures,omitempty"`
	RiskAreas         []string           `json:"risk_areas,omitempty"`
	Frequency         *Frequency         `json:"frequency,omitempty"`
	IsActive          *bool              `json:"is_active,omitempty"`
}
