package schedule

import (
	"context"
	"sync"
	"time"

	"certus/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu        sync.RWMutex
	schedules map[string]AuditSchedule
	order     []string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{schedules: make(map[string]AuditSchedule)}
}

func (s *InMemoryStore) Save(_ context.Context, sched AuditSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.schedules[sched.ID]; !exists {
		s.order = append(s.order, sched.ID)
	}
	s.schedules[sched.ID] = sched
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (AuditSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sched, ok := s.schedules[id]
	if !ok {
		return AuditSchedule{}, sentinel.ErrNotFound
	}
	return sched, nil
}

func (s *InMemoryStore) List(_ context.Context) ([]AuditSchedule, error) {
	return s.filter(func(AuditSchedule) bool { return true }), nil
}

func (s *InMemoryStore) ListDue(_ context.Context, at time.Time) ([]AuditSchedule, error) {
	return s.filter(func(sched AuditSchedule) bool {
		return sched.Active && !sched.NextAuditDate.After(at)
	}), nil
}

func (s *InMemoryStore) filter(keep func(AuditSchedule) bool) []AuditSchedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []AuditSchedule
	for _, id := range s.order {
		if sched := s.schedules[id]; keep(sched) {
			out = append(out, sched)
		}
	}
	return out
}
