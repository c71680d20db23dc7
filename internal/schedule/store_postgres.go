package schedule

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"certus/internal/template"
	"certus/pkg/platform/sentinel"
)

// PostgresStore persists audit schedules in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const scheduleColumns = `
	id, template_id, framework_id, auditee_id, auditor_ids, frequency,
	start_date, next_audit_date, last_report_id, active, created_at, updated_at
`

func (s *PostgresStore) Save(ctx context.Context, sched AuditSchedule) error {
	auditors, err := json.Marshal(sched.AuditorIDs)
	if err != nil {
		return fmt.Errorf("marshal auditor ids: %w", err)
	}

	const query = `
		INSERT INTO audit_schedules
			(id, template_id, framework_id, auditee_id, auditor_ids, frequency,
			 start_date, next_audit_date, last_report_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			next_audit_date = EXCLUDED.next_audit_date,
			last_report_id = EXCLUDED.last_report_id,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		sched.ID, sched.TemplateID, sched.FrameworkID, sched.AuditeeID,
		auditors, string(sched.Frequency), sched.StartDate, sched.NextAuditDate,
		sched.LastReportID, sched.Active, sched.CreatedAt, sched.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save schedule: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (AuditSchedule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+scheduleColumns+` FROM audit_schedules WHERE id = $1`, id)

	sched, err := scanSchedule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AuditSchedule{}, sentinel.ErrNotFound
		}
		return AuditSchedule{}, fmt.Errorf("get schedule: %w", err)
	}
	return sched, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]AuditSchedule, error) {
	return s.list(ctx,
		`SELECT `+scheduleColumns+` FROM audit_schedules ORDER BY created_at`)
}

func (s *PostgresStore) ListDue(ctx context.Context, at time.Time) ([]AuditSchedule, error) {
	return s.list(ctx,
		`SELECT `+scheduleColumns+` FROM audit_schedules
		 WHERE active AND next_audit_date <= $1 ORDER BY next_audit_date`, at)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]AuditSchedule, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var out []AuditSchedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		out = append(out, sched)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (AuditSchedule, error) {
	var sched AuditSchedule
	var auditors []byte
	var frequency string
	err := row.Scan(
		&sched.ID, &sched.TemplateID, &sched.FrameworkID, &sched.AuditeeID,
		&auditors, &frequency, &sched.StartDate, &sched.NextAuditDate,
		&sched.LastReportID, &sched.Active, &sched.CreatedAt, &sched.UpdatedAt,
	)
	if err != nil {
		return AuditSchedule{}, err
	}
	if err := json.Unmarshal(auditors, &sched.AuditorIDs); err != nil {
		return AuditSchedule{}, fmt.Errorf("unmarshal auditor ids: %w", err)
	}
	sched.Frequency = template.Frequency(frequency)
	return sched, nil
}
