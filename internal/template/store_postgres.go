package template

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"certus/pkg/platform/sentinel"
)

// PostgresStore persists templates in PostgreSQL. Objectives, procedures and
// risk areas are stored as JSONB document columns; templates are read whole
// and never queried by their inner structure.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, tmpl AuditTemplate) error {
	objectives, err := json.Marshal(tmpl.ControlObjectives)
	if err != nil {
		return fmt.Errorf("marshal control objectives: %w", err)
	}
	procedures, err := json.Marshal(tmpl.Procedures)
	if err != nil {
		return fmt.Errorf("marshal procedures: %w", err)
	}
	riskAreas, err := json.Marshal(tmpl.RiskAreas)
	if err != nil {
		return fmt.Errorf("marshal risk areas: %w", err)
	}

	const query = `
		INSERT INTO audit_templates
			(id, name, description, framework_id, version, control_objectives, procedures, risk_areas, frequency, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			version = EXCLUDED.version,
			control_objectives = EXCLUDED.control_objectives,
			procedures = EXCLUDED.procedures,
			risk_areas = EXCLUDED.risk_areas,
			frequency = EXCLUDED.frequency,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		tmpl.ID, tmpl.Name, tmpl.Description, tmpl.FrameworkID, tmpl.Version,
		objectives, procedures, riskAreas, string(tmpl.Frequency), tmpl.IsActive,
		tmpl.CreatedAt, tmpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (AuditTemplate, error) {
	const query = `
		SELECT id, name, description, framework_id, version, control_objectives, procedures, risk_areas, frequency, is_active, created_at, updated_at
		FROM audit_templates
		WHERE id = $1
	`
	row := s.db.QueryRowContext(ctx, query, id)
	tmpl, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AuditTemplate{}, sentinel.ErrNotFound
		}
		return AuditTemplate{}, fmt.Errorf("get template: %w", err)
	}
	return tmpl, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]AuditTemplate, error) {
	return s.list(ctx, `
		SELECT id, name, description, framework_id, version, control_objectives, procedures, risk_areas, frequency, is_active, created_at, updated_at
		FROM audit_templates
		ORDER BY created_at
	`)
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]AuditTemplate, error) {
	return s.list(ctx, `
		SELECT id, name, description, framework_id, version, control_objectives, procedures, risk_areas, frequency, is_active, created_at, updated_at
		FROM audit_templates
		WHERE is_active
		ORDER BY created_at
	`)
}

func (s *PostgresStore) list(ctx context.Context, query string) ([]AuditTemplate, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var out []AuditTemplate
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		out = append(out, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate templates: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTemplate(row rowScanner) (AuditTemplate, error) {
	var tmpl AuditTemplate
	var objectives, procedures, riskAreas []byte
	var frequency string
	err := row.Scan(
		&tmpl.ID, &tmpl.Name, &tmpl.Description, &tmpl.FrameworkID, &tmpl.Version,
		&objectives, &procedures, &riskAreas, &frequency, &tmpl.IsActive,
		&tmpl.CreatedAt, &tmpl.UpdatedAt,
	)
	if err != nil {
		return AuditTemplate{}, err
	}
	if err := json.Unmarshal(objectives, &tmpl.ControlObjectives); err != nil {
		return AuditTemplate{}, fmt.Errorf("decode control objectives: %w", err)
	}
	if err := json.Unmarshal(procedures, &tmpl.Procedures); err != nil {
		return AuditTemplate{}, fmt.Errorf("decode procedures: %w", err)
	}
	if err := json.Unmarshal(riskAreas, &tmpl.RiskAreas); err != nil {
		return AuditTemplate{}, fmt.Errorf("decode risk areas: %w", err)
	}
	tmpl.Frequency = Frequency(frequency)
	return tmpl, nil
}
