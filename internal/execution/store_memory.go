package execution

import (
	"context"
	"encoding/json"
	"sync"

	"certus/pkg/platform/sentinel"
)

// InMemoryStore keeps report aggregates in an id-indexed map. Aggregates are
// deep-copied on the way in and out so callers can only mutate reports
// through the service's critical section.
type InMemoryStore struct {
	mu      sync.RWMutex
	reports map[string]AuditReport
	order   []string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{reports: make(map[string]AuditReport)}
}

func (s *InMemoryStore) Save(_ context.Context, report AuditReport) error {
	copied, err := deepCopy(report)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.reports[report.ID]; !exists {
		s.order = append(s.order, report.ID)
	}
	s.reports[report.ID] = copied
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (AuditReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[id]
	if !ok {
		return AuditReport{}, sentinel.ErrNotFound
	}
	return deepCopy(report)
}

func (s *InMemoryStore) List(_ context.Context) ([]AuditReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AuditReport, 0, len(s.order))
	for _, id := range s.order {
		copied, err := deepCopy(s.reports[id])
		if err != nil {
			return nil, err
		}
		out = append(out, copied)
	}
	return out, nil
}

func (s *InMemoryStore) ListByFramework(_ context.Context, frameworkID string) ([]AuditReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []AuditReport
	for _, id := range s.order {
		report := s.reports[id]
		if report.FrameworkID != frameworkID {
			continue
		}
		copied, err := deepCopy(report)
		if err != nil {
			return nil, err
		}
		out = append(out, copied)
	}
	return out, nil
}

// deepCopy round-trips through JSON. Reports are small and this guarantees
// snapshot isolation without hand-maintained clone code drifting from the
// model.
func deepCopy(report AuditReport) (AuditReport, error) {
	raw, err := json.Marshal(report)
	if err != nil {
		return AuditReport{}, err
	}
	var out AuditReport
	if err := json.Unmarshal(raw, &out); err != nil {
		return AuditReport{}, err
	}
	return out, nil
}
