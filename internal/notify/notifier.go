// Package notify is the engine's notification boundary. Delivery (push,
// email, chat) lives outside this repository; implementations here adapt the
// domain's fire-and-forget calls to whatever transport is wired in.
// Notification failures must never roll back a domain mutation.
package notify

import (
	"context"
	"log/slog"
	"time"

	"certus/internal/execution"
)

// Notifier is the full notification contract consumed by the engine.
type Notifier interface {
	ScheduleReminder(ctx context.Context, reportID string, firesAt time.Time, message string)
	NotifyStatusChange(ctx context.Context, report execution.AuditReport, previous execution.ReportStatus)
	NotifyFinding(ctx context.Context, finding execution.AuditFinding, reportID string)
}

// Log is a Notifier that records notifications as structured log lines. It
// stands in until a real delivery channel is wired and doubles as the
// development default.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	return &Log{logger: logger}
}

func (n *Log) ScheduleReminder(ctx context.Context, reportID string, firesAt time.Time, message string) {
	n.logger.InfoContext(ctx, "reminder scheduled",
		"report_id", reportID,
		"fires_at", firesAt,
		"message", message,
	)
}

func (n *Log) NotifyStatusChange(ctx context.Context, report execution.AuditReport, previous execution.ReportStatus) {
	n.logger.InfoContext(ctx, "report status changed",
		"report_id", report.ID,
		"from", string(previous),
		"to", string(report.Status),
	)
}

func (n *Log) NotifyFinding(ctx context.Context, finding execution.AuditFinding, reportID string) {
	n.logger.InfoContext(ctx, "finding recorded",
		"report_id", reportID,
		"finding_id", finding.ID,
		"risk_level", string(finding.RiskLevel),
	)
}

// Noop discards all notifications; used in tests.
type Noop struct{}

func (Noop) ScheduleReminder(context.Context, string, time.Time, string) {}
func (Noop) NotifyStatusChange(context.Context, execution.AuditReport, execution.ReportStatus) {
}
func (Noop) NotifyFinding(context.Context, execution.AuditFinding, string) {}
