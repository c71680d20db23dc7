package execution

import (
	"time"

	"certus/internal/framework"
	"certus/internal/template"
)

// ReportStatus is the lifecycle state of an audit report.
type ReportStatus string

const (
	StatusPlanned    ReportStatus = "planned"
	StatusInProgress ReportStatus = "inProgress"
	StatusOnHold     ReportStatus = "onHold"
	StatusCompleted  ReportStatus = "completed"
	StatusCancelled  ReportStatus = "cancelled"
)

// validTransitions encodes the report state machine. completed and cancelled
// are terminal.
var validTransitions = map[ReportStatus]map[ReportStatus]struct{}{
	StatusPlanned: {
		StatusInProgress: {},
		StatusOnHold:     {},
		StatusCancelled:  {},
	},
	StatusInProgress: {
		StatusCompleted: {},
		StatusOnHold:    {},
		StatusCancelled: {},
	},
	StatusOnHold: {
		StatusInProgress: {},
		StatusCancelled:  {},
	},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}
	_, ok = allowed[next]
	return ok
}

// IsTerminal reports whether no further transitions are possible.
func (s ReportStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// ProcedureStatus tracks progress of a single executed procedure.
type ProcedureStatus string

const (
	ProcedureNotStarted ProcedureStatus = "notStarted"
	ProcedureInProgress ProcedureStatus = "inProgress"
	ProcedureCompleted  ProcedureStatus = "completed"
	ProcedureSkipped    ProcedureStatus = "skipped"
)

// FindingStatus is the resolution state of a finding.
type FindingStatus string

const (
	FindingOpen     FindingStatus = "open"
	FindingResolved FindingStatus = "resolved"
)

// AuditFinding is a deficiency recorded against one executed procedure. The
// report aggregate owns the authoritative copy; the findings index only holds
// locators for cross-report queries.
type AuditFinding struct {
	ID                  string              `json:"id"`
	Title               string              `json:"title"`
	Description         string              `json:"description,omitempty"`
	Category            string              `json:"category,omitempty"`
	RiskLevel           framework.RiskLevel `json:"risk_level"`
	ControlObjectiveIDs []string            `json:"control_objective_ids,omitempty"`
	Recommendation      string              `json:"recommendation,omitempty"`
	IdentifiedBy        string              `json:"identified_by"`
	Status              FindingStatus       `json:"status"`
	Resolution          string              `json:"resolution,omitempty"`
	ResolvedBy          string              `json:"resolved_by,omitempty"`
	ResolvedAt          *time.Time          `json:"resolved_at,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
}

// IsResolved reports whether the finding no longer counts against procedure
// pass rate.
func (f AuditFinding) IsResolved() bool {
	return f.Status == FindingResolved
}

// ExecutedProcedure is a frozen copy of a template procedure inside one
// report, plus the execution state accumulated against it.
type ExecutedProcedure struct {
	Procedure  template.AuditProcedure `json:"procedure"`
	Status     ProcedureStatus         `json:"status"`
	AssignedTo string                  `json:"assigned_to,omitempty"`
	Findings   []AuditFinding          `json:"findings,omitempty"`
	Evidence   []string                `json:"evidence,omitempty"`
}

// Passed reports whether the procedure counts toward the compliance score
// base: it was completed, and every finding against it is resolved. An
// unworked procedure never passes, regardless of findings.
func (p ExecutedProcedure) Passed() bool {
	if p.Status != ProcedureCompleted {
		return false
	}
	for _, f := range p.Findings {
		if !f.IsResolved() {
			return false
		}
	}
	return true
}

// NoteType classifies an audit note.
type NoteType string

const (
	NoteStatusChange NoteType = "statusChange"
	NoteGeneral      NoteType = "general"
)

// AuditNote is a free-text annotation on a report.
type AuditNote struct {
	Type      NoteType  `json:"type"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// AuditReport is one concrete audit run: a snapshot of a template's
// procedures plus its own execution state. Later template edits never alter
// an existing report.
type AuditReport struct {
	ID                string                      `json:"id"`
	TemplateID        string                      `json:"template_id"`
	TemplateVersion   string                      `json:"template_version"`
	FrameworkID       string                      `json:"framework_id"`
	AuditeeID         string                      `json:"auditee_id"`
	AuditorIDs        []string                    `json:"auditor_ids"`
	Status            ReportStatus                `json:"status"`
	PlannedStart      time.Time                   `json:"planned_start"`
	PlannedEnd        time.Time                   `json:"planned_end"`
	ActualStart       *time.Time                  `json:"actual_start,omitempty"`
	ActualEnd         *time.Time                  `json:"actual_end,omitempty"`
	ControlObjectives []template.ControlObjective `json:"control_objectives"`
	Procedures        []ExecutedProcedure         `json:"procedures"`
	ComplianceScore   float64                     `json:"compliance_score"`
	Notes             []AuditNote                 `json:"notes,omitempty"`
	CreatedAt         time.Time                   `json:"created_at"`
	UpdatedAt         time.Time                   `json:"updated_at"`
}

// Procedure returns a pointer to the executed procedure with the given id,
// or nil when absent.
func (r *AuditReport) Procedure(procedureID string) *ExecutedProcedure {
	for i := range r.Procedures {
		if r.Procedures[i].Procedure.ID == procedureID {
			return &r.Procedures[i]
		}
	}
	return nil
}

// Finding returns a pointer to the finding with the given id, or nil.
func (r *AuditReport) Finding(findingID string) *AuditFinding {
	for i := range r.Procedures {
		for j := range r.Procedures[i].Findings {
			if r.Procedures[i].Findings[j].ID == findingID {
				return &r.Procedures[i].Findings[j]
			}
		}
	}
	return nil
}

// AllFindings returns every finding across the report's procedures.
func (r *AuditReport) AllFindings() []AuditFinding {
	var out []AuditFinding
	for _, p := range r.Procedures {
		out = append(out, p.Findings...)
	}
	return out
}
