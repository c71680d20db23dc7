package finding

import (
	"context"
	"sync"

	"certus/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu   sync.RWMutex
	refs map[string]Ref
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{refs: make(map[string]Ref)}
}

func (s *InMemoryStore) Save(_ context.Context, ref Ref) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs[ref.FindingID] = ref
	return nil
}

func (s *InMemoryStore) Find(_ context.Context, findingID string) (Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ref, ok := s.refs[findingID]
	if !ok {
		return Ref{}, sentinel.ErrNotFound
	}
	return ref, nil
}

func (s *InMemoryStore) ListByFramework(_ context.Context, frameworkID string) ([]Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Ref
	for _, ref := range s.refs {
		if ref.FrameworkID == frameworkID {
			out = append(out, ref)
		}
	}
	return out, nil
}
