package template

import "context"

// Store persists audit templates. Implementations return sentinel.ErrNotFound
// for unknown ids; the service translates to coded domain errors.
type Store interface {
	Save(ctx context.Context, tmpl AuditTemplate) error
	Get(ctx context.Context, id string) (AuditTemplate, error)
	List(ctx context.Context) ([]AuditTemplate, error)
	ListActive(ctx context.Context) ([]AuditTemplate, error)
}
