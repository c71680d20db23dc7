package activity

import "context"

// Store is the append-only persistence behind the activity trail.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByReport(ctx context.Context, reportID string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
