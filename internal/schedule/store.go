package schedule

import (
	"context"
	"time"
)

// Store persists audit schedules.
type Store interface {
	Save(ctx context.Context, s AuditSchedule) error
	Get(ctx context.Context, id string) (AuditSchedule, error)
	List(ctx context.Context) ([]AuditSchedule, error)
	// ListDue returns active schedules whose next audit date is at or
	// before the given time.
	ListDue(ctx context.Context, at time.Time) ([]AuditSchedule, error)
}
