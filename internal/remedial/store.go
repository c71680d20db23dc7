package remedial

import "context"

// Store persists remedial actions.
type Store interface {
	Save(ctx context.Context, action RemedialAction) error
	ListByFinding(ctx context.Context, findingID string) ([]RemedialAction, error)
	ListOpen(ctx context.Context) ([]RemedialAction, error)
	ListByReport(ctx context.Context, reportID string) ([]RemedialAction, error)
}
