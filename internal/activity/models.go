// Package activity is the engine's append-only activity trail. Domain
// services emit structured events for every state-changing operation so
// operators can reconstruct what happened to a template, report or finding
// without trawling request logs.
package activity

import "time"

// Action names a state-changing engine operation.
type Action string

const (
	ActionTemplateCreated   Action = "template_created"
	ActionTemplateUpdated   Action = "template_updated"
	ActionAuditExecuted     Action = "audit_executed"
	ActionStatusChanged     Action = "report_status_changed"
	ActionScoreRecalculated Action = "score_recalculated"
	ActionFindingAdded      Action = "finding_added"
	ActionFindingResolved   Action = "finding_resolved"
	ActionRemedialSpawned   Action = "remedial_action_spawned"
	ActionRemedialClosed    Action = "remedial_action_closed"
	ActionScheduleCreated   Action = "schedule_created"
	ActionScheduleTriggered Action = "schedule_triggered"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp  time.Time `json:"timestamp"`
	Action     Action    `json:"action"`
	Actor      string    `json:"actor,omitempty"`
	TemplateID string    `json:"template_id,omitempty"`
	ReportID   string    `json:"report_id,omitempty"`
	FindingID  string    `json:"finding_id,omitempty"`
	ScheduleID string    `json:"schedule_id,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}
