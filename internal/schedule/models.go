// Package schedule drives recurring audits. A schedule binds a template to a
// cadence; a background worker executes each due schedule and advances its
// next audit date.
package schedule

import (
	"time"

	"certus/internal/template"
)

// AuditSchedule is one recurring audit commitment.
type AuditSchedule struct {
	ID            string             `json:"id"`
	TemplateID    string             `json:"template_id"`
	FrameworkID   string             `json:"framework_id"`
	AuditeeID     string             `json:"auditee_id"`
	AuditorIDs    []string           `json:"auditor_ids,omitempty"`
	Frequency     template.Frequency `json:"frequency"`
	StartDate     time.Time          `json:"start_date"`
	NextAuditDate time.Time          `json:"next_audit_date"`
	LastReportID  string             `json:"last_report_id,omitempty"`
	Active        bool               `json:"active"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NextAuditDate returns the audit date following from for the given
// frequency. Adhoc schedules do not recur; from is returned unchanged.
func NextAuditDate(frequency template.Frequency, from time.Time) time.Time {
	switch frequency {
	case template.FrequencyMonthly:
		return from.AddDate(0, 1, 0)
	case template.FrequencyQuarterly:
		return from.AddDate(0, 3, 0)
	case template.FrequencySemiAnnual:
		return from.AddDate(0, 6, 0)
	case template.FrequencyAnnual:
		return from.AddDate(1, 0, 0)
	case template.FrequencyBiennial:
		return from.AddDate(2, 0, 0)
	default:
		return from
	}
}
