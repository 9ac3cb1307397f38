package store

import (
	"errors"
	"sync"
	"time"

	"github.com/urbanplatform/onboarding/internal/importer"
)

// ErrNoRuns is returned when no run has been recorded yet.
var ErrNoRuns = errors.New("no import runs recorded")

// MemoryStore is a concurrency-safe in-memory history of import runs. There
// is deliberately no persistence: run history is operational visibility, not
// data of record.
type MemoryStore struct {
	mu   sync.RWMutex
	runs []importer.RunResult

	maxHistory int           // max number of retained runs (0 = unlimited)
	maxAge     time.Duration // max age of retained runs (0 = unlimited)
}

// NewMemoryStore creates a MemoryStore with optional retention limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// SaveRun appends a run result and enforces retention.
func (s *MemoryStore) SaveRun(result importer.RunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, result)

	if s.maxHistory > 0 && len(s.runs) > s.maxHistory {
		over := len(s.runs) - s.maxHistory
		s.runs = s.runs[over:]
	}

	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.runs); i++ {
			if !s.runs[i].StartedAt.Before(cutoff) {
				break
			}
		}
		if i > 0 {
			s.runs = s.runs[i:]
		}
	}
}

// Latest returns the most recent run result.
func (s *MemoryStore) Latest() (importer.RunResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.runs) == 0 {
		return importer.RunResult{}, ErrNoRuns
	}
	return s.runs[len(s.runs)-1], nil
}

// Recent returns up to limit run results, newest first.
func (s *MemoryStore) Recent(limit int) []importer.RunResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.runs)
	if limit > 0 && limit < n {
		n = limit
	}

	out := make([]importer.RunResult, 0, n)
	for i := len(s.runs) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, s.runs[i])
	}
	return out
}
