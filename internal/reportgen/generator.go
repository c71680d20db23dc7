// Package reportgen assembles the comprehensive audit report document from a
// completed (or in-flight) audit run. Rendering to PDF or HTML happens
// outside this repository; the generator produces the structured content a
// renderer consumes.
package reportgen

import (
	"context"
	"fmt"
	"time"

	"certus/internal/execution"
	"certus/internal/framework"
	"certus/internal/remedial"
	dErrors "certus/pkg/domain-errors"
	pstrings "certus/pkg/platform/strings"
)

// RemedialSource lists the remedial actions raised against a report.
type RemedialSource interface {
	ListByReport(ctx context.Context, reportID string) ([]remedial.RemedialAction, error)
}

// ExecutiveSummary is the top sheet of a comprehensive report.
type ExecutiveSummary struct {
	AuditeeID        string                      `json:"auditee_id"`
	FrameworkName    string                      `json:"framework_name"`
	TemplateVersion  string                      `json:"template_version"`
	Status           execution.ReportStatus      `json:"status"`
	ComplianceScore  float64                     `json:"compliance_score"`
	TotalProcedures  int                         `json:"total_procedures"`
	PassedProcedures int                         `json:"passed_procedures"`
	OpenFindings     int                         `json:"open_findings"`
	ResolvedFindings int                         `json:"resolved_findings"`
	FindingsByRisk   map[framework.RiskLevel]int `json:"findings_by_risk"`
	PlannedStart     time.Time                   `json:"planned_start"`
	PlannedEnd       time.Time                   `json:"planned_end"`
	ActualStart      *time.Time                  `json:"actual_start,omitempty"`
	ActualEnd        *time.Time                  `json:"actual_end,omitempty"`
}

// FindingDetail pairs a finding with the procedure it was recorded under and
// the remedial actions it spawned.
type FindingDetail struct {
	Finding         execution.AuditFinding    `json:"finding"`
	ProcedureID     string                    `json:"procedure_id"`
	ProcedureTitle  string                    `json:"procedure_title"`
	RemedialActions []remedial.RemedialAction `json:"remedial_actions,omitempty"`
}

// Appendices carries the supporting material of the report.
type Appendices struct {
	Procedures []execution.ExecutedProcedure `json:"procedures"`
	Notes      []execution.AuditNote         `json:"notes,omitempty"`
	AuditorIDs []string                      `json:"auditor_ids"`
}

// ComprehensiveAuditReport is the full renderable document for one audit run.
type ComprehensiveAuditReport struct {
	ReportID               string           `json:"report_id"`
	GeneratedAt            time.Time        `json:"generated_at"`
	ExecutiveSummary       ExecutiveSummary `json:"executive_summary"`
	DetailedFindings       []FindingDetail  `json:"detailed_findings"`
	Recommendations        []string         `json:"recommendations"`
	Appendices             Appendices       `json:"appendices"`
	CertificationStatement string           `json:"certification_statement"`
}

// Generator builds comprehensive audit reports.
type Generator struct {
	catalog   *framework.Catalog
	remedials RemedialSource
	now       func() time.Time
}

func NewGenerator(catalog *framework.Catalog, remedials RemedialSource) *Generator {
	return &Generator{catalog: catalog, remedials: remedials, now: time.Now}
}

// Generate assembles the document for the given report.
func (g *Generator) Generate(ctx context.Context, report execution.AuditReport) (ComprehensiveAuditReport, error) {
	fw, err := g.catalog.Get(report.FrameworkID)
	if err != nil {
		return ComprehensiveAuditReport{}, err
	}

	actions, err := g.remedials.ListByReport(ctx, report.ID)
	if err != nil {
		return ComprehensiveAuditReport{}, dErrors.Wrap(err, dErrors.CodeReportGenerationFailed,
			"report generation failed: list remedial actions for "+report.ID)
	}
	actionsByFinding := make(map[string][]remedial.RemedialAction)
	for _, a := range actions {
		actionsByFinding[a.FindingID] = append(actionsByFinding[a.FindingID], a)
	}

	summary := ExecutiveSummary{
		AuditeeID:       report.AuditeeID,
		FrameworkName:   fw.Name,
		TemplateVersion: report.TemplateVersion,
		Status:          report.Status,
		ComplianceScore: report.ComplianceScore,
		TotalProcedures: len(report.Procedures),
		FindingsByRisk:  make(map[framework.RiskLevel]int),
		PlannedStart:    report.PlannedStart,
		PlannedEnd:      report.PlannedEnd,
		ActualStart:     report.ActualStart,
		ActualEnd:       report.ActualEnd,
	}

	var details []FindingDetail
	var recommendations []string
	for _, proc := range report.Procedures {
		if proc.Passed() {
			summary.PassedProcedures++
		}
		for _, f := range proc.Findings {
			summary.FindingsByRisk[f.RiskLevel]++
			if f.IsResolved() {
				summary.ResolvedFindings++
			} else {
				summary.OpenFindings++
				recommendations = append(recommendations, f.Recommendation)
			}
			details = append(details, FindingDetail{
				Finding:         f,
				ProcedureID:     proc.Procedure.ID,
				ProcedureTitle:  proc.Procedure.Title,
				RemedialActions: actionsByFinding[f.ID],
			})
		}
	}

	return ComprehensiveAuditReport{
		ReportID:         report.ID,
		GeneratedAt:      g.now(),
		ExecutiveSummary: summary,
		DetailedFindings: details,
		Recommendations:  pstrings.DedupeAndTrim(recommendations),
		Appendices: Appendices{
			Procedures: report.Procedures,
			Notes:      report.Notes,
			AuditorIDs: report.AuditorIDs,
		},
		CertificationStatement: certificationStatement(fw, report),
	}, nil
}

func certificationStatement(fw framework.ComplianceFramework, report execution.AuditReport) string {
	if report.Status != execution.StatusCompleted {
		return fmt.Sprintf("Audit of %s against %s is %s; no certification statement can be issued yet.",
			report.AuditeeID, fw.Name, report.Status)
	}
	statement := fmt.Sprintf(
		"This audit of %s was conducted against %s %s and concluded with a compliance score of %.1f.",
		report.AuditeeID, fw.Name, fw.Version, report.ComplianceScore)
	if fw.CertificationBody != "" {
		statement += " Certification is subject to review by " + fw.CertificationBody + "."
	}
	return statement
}
