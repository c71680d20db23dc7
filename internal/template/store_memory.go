package template

import (
	"context"
	"sync"

	"certus/pkg/platform/sentinel"
)

// InMemoryStore keeps templates in an id-indexed map. Suitable for tests and
// single-process deployments without Postgres.
type InMemoryStore struct {
	mu        sync.RWMutex
	templates map[string]AuditTemplate
	order     []string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{templates: make(map[string]AuditTemplate)}
}

func (s *InMemoryStore) Save(_ context.Context, tmpl AuditTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.templates[tmpl.ID]; !exists {
		s.order = append(s.order, tmpl.ID)
	}
	s.templates[tmpl.ID] = tmpl
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (AuditTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tmpl, ok := s.templates[id]
	if !ok {
		return AuditTemplate{}, sentinel.ErrNotFound
	}
	return tmpl, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]AuditTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AuditTemplate, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.templates[id])
	}
	return out, nil
}

func (s *InMemoryStore) ListActive(_ context.Context) ([]AuditTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AuditTemplate, 0, len(s.order))
	for _, id := range s.order {
		if tmpl := s.templates[id]; tmpl.IsActive {
			out = append(out, tmpl)
		}
	}
	return out, nil
}
