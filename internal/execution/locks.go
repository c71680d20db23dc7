package execution

import "sync"

// ReportLocks serializes mutations per report id. Each report aggregate is
// the unit of mutual exclusion: status changes, finding additions and score
// recomputation on the same report must not interleave, while different
// reports proceed concurrently. The findings tracker shares this instance
// with the execution service.
//
// Locks are never removed; the per-report mutex is tiny and report volume is
// bounded by audit cadence, not request traffic.
type ReportLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewReportLocks() *ReportLocks {
	return &ReportLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for the given report id, creating it on first use.
func (l *ReportLocks) Lock(reportID string) {
	l.mu.Lock()
	m, ok := l.locks[reportID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[reportID] = m
	}
	l.mu.Unlock()
	m.Lock()
}

// Unlock releases the mutex for the given report id.
func (l *ReportLocks) Unlock(reportID string) {
	l.mu.Lock()
	m, ok := l.locks[reportID]
	l.mu.Unlock()
	if ok {
		m.Unlock()
	}
}
