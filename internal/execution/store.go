package execution

import "context"

// Store persists audit reports. The report row carries the whole aggregate
// (procedures, findings, notes); implementations return sentinel.ErrNotFound
// for unknown ids.
type Store interface {
	Save(ctx context.Context, report AuditReport) error
	Get(ctx context.Context, id string) (AuditReport, error)
	List(ctx context.Context) ([]AuditReport, error)
	ListByFramework(ctx context.Context, frameworkID string) ([]AuditReport, error)
}
