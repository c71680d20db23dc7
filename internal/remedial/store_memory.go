package remedial

import (
	"context"
	"sync"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	actions map[string]RemedialAction
	order   []string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{actions: make(map[string]RemedialAction)}
}

func (s *InMemoryStore) Save(_ context.Context, action RemedialAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.actions[action.ID]; !exists {
		s.order = append(s.order, action.ID)
	}
	s.actions[action.ID] = action
	return nil
}

func (s *InMemoryStore) ListByFinding(_ context.Context, findingID string) ([]RemedialAction, error) {
	return s.filter(func(a RemedialAction) bool { return a.FindingID == findingID }), nil
}

func (s *InMemoryStore) ListOpen(_ context.Context) ([]RemedialAction, error) {
	return s.filter(func(a RemedialAction) bool { return a.Status == ActionOpen }), nil
}

func (s *InMemoryStore) ListByReport(_ context.Context, reportID string) ([]RemedialAction, error) {
	return s.filter(func(a RemedialAction) bool { return a.ReportID == reportID }), nil
}

func (s *InMemoryStore) filter(keep func(RemedialAction) bool) []RemedialAction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []RemedialAction
	for _, id := range s.order {
		if a := s.actions[id]; keep(a) {
			out = append(out, a)
		}
	}
	return out
}
