package finding

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"certus/pkg/platform/sentinel"
)

// PostgresStore persists finding locators in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, ref Ref) error {
	const query = `
		INSERT INTO finding_index (finding_id, report_id, procedure_id, framework_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (finding_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query, ref.FindingID, ref.ReportID, ref.ProcedureID, ref.FrameworkID)
	if err != nil {
		return fmt.Errorf("save finding ref: %w", err)
	}
	return nil
}

func (s *PostgresStore) Find(ctx context.Context, findingID string) (Ref, error) {
	const query = `
		SELECT finding_id, report_id, procedure_id, framework_id
		FROM finding_index
		WHERE finding_id = $1
	`
	var ref Ref
	err := s.db.QueryRowContext(ctx, query, findingID).
		Scan(&ref.FindingID, &ref.ReportID, &ref.ProcedureID, &ref.FrameworkID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Ref{}, sentinel.ErrNotFound
		}
		return Ref{}, fmt.Errorf("find finding ref: %w", err)
	}
	return ref, nil
}

func (s *PostgresStore) ListByFramework(ctx context.Context, frameworkID string) ([]Ref, error) {
	const query = `
		SELECT finding_id, report_id, procedure_id, framework_id
		FROM finding_index
		WHERE framework_id = $1
	`
	rows, err := s.db.QueryContext(ctx, query, frameworkID)
	if err != nil {
		return nil, fmt.Errorf("list finding refs: %w", err)
	}
	defer rows.Close()

	var out []Ref
	for rows.Next() {
		var ref Ref
		if err := rows.Scan(&ref.FindingID, &ref.ReportID, &ref.ProcedureID, &ref.FrameworkID); err != nil {
			return nil, fmt.Errorf("scan finding ref: %w", err)
		}
		out = append(out, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate finding refs: %w", err)
	}
	return out, nil
}
