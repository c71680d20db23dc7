package execution

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"certus/pkg/platform/sentinel"
)

// PostgresStore persists report aggregates in PostgreSQL. The nested
// structure (executed procedures with findings, notes, auditor list) is
// stored as JSONB; queries only filter on the scalar columns.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const reportColumns = `
	id, template_id, template_version, framework_id, auditee_id, auditor_ids,
	status, planned_start, planned_end, actual_start, actual_end,
	control_objectives, procedures, compliance_score, notes, created_at, updated_at
`

func (s *PostgresStore) Save(ctx context.Context, report AuditReport) error {
	auditorIDs, err := json.Marshal(report.AuditorIDs)
	if err != nil {
		return fmt.Errorf("marshal auditor ids: %w", err)
	}
	objectives, err := json.Marshal(report.ControlObjectives)
	if err != nil {
		return fmt.Errorf("marshal control objectives: %w", err)
	}
	procedures, err := json.Marshal(report.Procedures)
	if err != nil {
		return fmt.Errorf("marshal procedures: %w", err)
	}
	notes, err := json.Marshal(report.Notes)
	if err != nil {
		return fmt.Errorf("marshal notes: %w", err)
	}

	const query = `
		INSERT INTO audit_reports
			(id, template_id, template_version, framework_id, auditee_id, auditor_ids,
			 status, planned_start, planned_end, actual_start, actual_end,
			 control_objectives, procedures, compliance_score, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			actual_start = EXCLUDED.actual_start,
			actual_end = EXCLUDED.actual_end,
			procedures = EXCLUDED.procedures,
			compliance_score = EXCLUDED.compliance_score,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		report.ID, report.TemplateID, report.TemplateVersion, report.FrameworkID,
		report.AuditeeID, auditorIDs, string(report.Status),
		report.PlannedStart, report.PlannedEnd, report.ActualStart, report.ActualEnd,
		objectives, procedures, report.ComplianceScore, notes,
		report.CreatedAt, report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (AuditReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reportColumns+` FROM audit_reports WHERE id = $1`, id)
	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AuditReport{}, sentinel.ErrNotFound
		}
		return AuditReport{}, fmt.Errorf("get report: %w", err)
	}
	return report, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]AuditReport, error) {
	return s.list(ctx, `SELECT `+reportColumns+` FROM audit_reports ORDER BY created_at`)
}

func (s *PostgresStore) ListByFramework(ctx context.Context, frameworkID string) ([]AuditReport, error) {
	return s.list(ctx,
		`SELECT `+reportColumns+` FROM audit_reports WHERE framework_id = $1 ORDER BY created_at`,
		frameworkID)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]AuditReport, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []AuditReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		out = append(out, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (AuditReport, error) {
	var report AuditReport
	var auditorIDs, objectives, procedures, notes []byte
	var status string
	err := row.Scan(
		&report.ID, &report.TemplateID, &report.TemplateVersion, &report.FrameworkID,
		&report.AuditeeID, &auditorIDs, &status,
		&report.PlannedStart, &report.PlannedEnd, &report.ActualStart, &report.ActualEnd,
		&objectives, &procedures, &report.ComplianceScore, &notes,
		&report.CreatedAt, &report.UpdatedAt,
	)
	if err != nil {
		return AuditReport{}, err
	}
	report.Status = ReportStatus(status)
	if err := json.Unmarshal(auditorIDs, &report.AuditorIDs); err != nil {
		return AuditReport{}, fmt.Errorf("decode auditor ids: %w", err)
	}
	if err := json.Unmarshal(objectives, &report.ControlObjectives); err != nil {
		return AuditReport{}, fmt.Errorf("decode control objectives: %w", err)
	}
	if err := json.Unmarshal(procedures, &report.Procedures); err != nil {
		return AuditReport{}, fmt.Errorf("decode procedures: %w", err)
	}
	if err := json.Unmarshal(notes, &report.Notes); err != nil {
		return AuditReport{}, fmt.Errorf("decode notes: %w", err)
	}
	return report, nil
}
