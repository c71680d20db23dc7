package remedial

import (
	"context"
	"database/sql"
	"fmt"

	"certus/internal/framework"
)

// PostgresStore persists remedial actions in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const actionColumns = `
	id, finding_id, report_id, title, priority, assigned_to, created_by,
	due_date, status, completed_by, completed_at, created_at
`

func (s *PostgresStore) Save(ctx context.Context, action RemedialAction) error {
	const query = `
		INSERT INTO remedial_actions
			(id, finding_id, report_id, title, priority, assigned_to, created_by,
			 due_date, status, completed_by, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			assigned_to = EXCLUDED.assigned_to,
			status = EXCLUDED.status,
			completed_by = EXCLUDED.completed_by,
			completed_at = EXCLUDED.completed_at
	`
	_, err := s.db.ExecContext(ctx, query,
		action.ID, action.FindingID, action.ReportID, action.Title,
		string(action.Priority), action.AssignedTo, action.CreatedBy,
		action.DueDate, string(action.Status), action.CompletedBy,
		action.CompletedAt, action.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save remedial action: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByFinding(ctx context.Context, findingID string) ([]RemedialAction, error) {
	return s.list(ctx,
		`SELECT `+actionColumns+` FROM remedial_actions WHERE finding_id = $1 ORDER BY created_at`,
		findingID)
}

func (s *PostgresStore) ListOpen(ctx context.Context) ([]RemedialAction, error) {
	return s.list(ctx,
		`SELECT `+actionColumns+` FROM remedial_actions WHERE status = 'open' ORDER BY due_date`)
}

func (s *PostgresStore) ListByReport(ctx context.Context, reportID string) ([]RemedialAction, error) {
	return s.list(ctx,
		`SELECT `+actionColumns+` FROM remedial_actions WHERE report_id = $1 ORDER BY created_at`,
		reportID)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]RemedialAction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list remedial actions: %w", err)
	}
	defer rows.Close()

	var out []RemedialAction
	for rows.Next() {
		var a RemedialAction
		var priority, status string
		err := rows.Scan(
			&a.ID, &a.FindingID, &a.ReportID, &a.Title, &priority, &a.AssignedTo,
			&a.CreatedBy, &a.DueDate, &status, &a.CompletedBy, &a.CompletedAt, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan remedial action: %w", err)
		}
		a.Priority = framework.RiskLevel(priority)
		a.Status = ActionStatus(status)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate remedial actions: %w", err)
	}
	return out, nil
}
