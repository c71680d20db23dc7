// Package finding tracks audit findings across reports. The owning report
// aggregate holds the authoritative finding data; this package maintains a
// global locator index so a finding id resolves to its report without
// scanning every aggregate.
package finding

import "context"

// Ref locates a finding inside a report.
type Ref struct {
	FindingID   string
	ReportID    string
	ProcedureID string
	FrameworkID string
}

// Store is the global finding index.
type Store interface {
	Save(ctx context.Context, ref Ref) error
	Find(ctx context.Context, findingID string) (Ref, error)
	ListByFramework(ctx context.Context, frameworkID string) ([]Ref, error)
}
