package activity

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists activity events in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	const query = `
		INSERT INTO activity_events (ts, action, actor, template_id, report_id, finding_id, schedule_id, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.Timestamp, string(event.Action), event.Actor,
		event.TemplateID, event.ReportID, event.FindingID, event.ScheduleID, event.Detail,
	)
	if err != nil {
		return fmt.Errorf("append activity event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByReport(ctx context.Context, reportID string) ([]Event, error) {
	const query = `
		SELECT ts, action, actor, template_id, report_id, finding_id, schedule_id, detail
		FROM activity_events
		WHERE report_id = $1
		ORDER BY ts
	`
	rows, err := s.db.QueryContext(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("list activity by report: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	const query = `
		SELECT ts, action, actor, template_id, report_id, finding_id, schedule_id, detail
		FROM activity_events
		ORDER BY ts DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent activity: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var out []Event
	for rows.Next() {
		var e Event
		var action string
		if err := rows.Scan(&e.Timestamp, &action, &e.Actor, &e.TemplateID, &e.ReportID, &e.FindingID, &e.ScheduleID, &e.Detail); err != nil {
			return nil, fmt.Errorf("scan activity event: %w", err)
		}
		e.Action = Action(action)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity events: %w", err)
	}
	return out, nil
}
