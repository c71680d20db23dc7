package remedial

import (
	"time"

	"certus/internal/framework"
)

// ActionStatus is the lifecycle state of a remedial action.
type ActionStatus string

const (
	ActionOpen      ActionStatus = "open"
	ActionCompleted ActionStatus = "completed"
)

// DueIn is how long a newly spawned action has before its due date. The due
// date is a data value only; enforcement belongs to external alerting.
const DueIn = 30 * 24 * time.Hour

// RemedialAction is a work item addressing one high or critical finding. An
// action exists iff its finding was high/critical at creation time; a later
// downgrade of the finding never revokes the action.
type RemedialAction struct {
	ID          string              `json:"id"`
	FindingID   string              `json:"finding_id"`
	ReportID    string              `json:"report_id"`
	Title       string              `json:"title"`
	Priority    framework.RiskLevel `json:"priority"`
	AssignedTo  string              `json:"assigned_to,omitempty"`
	CreatedBy   string              `json:"created_by"`
	DueDate     time.Time           `json:"due_date"`
	Status      ActionStatus        `json:"status"`
	CompletedBy string              `json:"completed_by,omitempty"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}
