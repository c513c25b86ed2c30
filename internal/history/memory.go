package history

import (
	"context"
	"sync"
)

// maxMemoryRecords bounds the in-memory history; the oldest records are
// evicted first.
const maxMemoryRecords = 1000

// MemoryStore keeps records in memory, newest retained up to a fixed cap.
// It is the default store when no database is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Record)}
}

func (s *MemoryStore) Insert(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[rec.ID]; !exists {
		s.order = append(s.order, rec.ID)
	}
	s.byID[rec.ID] = rec

	if len(s.order) > maxMemoryRecords {
		evicted := s.order[0]
		s.order = s.order[1:]
		delete(s.byID, evicted)
	}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) List(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, min(limit, len(s.order)))
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.byID[s.order[i]])
	}
	return out, nil
}
