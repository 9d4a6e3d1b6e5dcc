package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/okian/dscore/internal/domain/types"
	"github.com/okian/dscore/pkg/metrics"
)

// MemoryStore is an in-memory Store. File ids are kept sorted on insert so
// List never has to sort.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]types.Row
	ids      []string
	capacity int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	s.byID = make(map[string]types.Row, s.capacity)
	s.ids = make([]string, 0, s.capacity)
	return s
}

// Put implements Store.Put.
func (s *MemoryStore) Put(ctx context.Context, row types.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if row.FileID == "" {
		return ErrEmptyFileID
	}
	start := time.Now()

	s.mu.Lock()
	if _, ok := s.byID[row.FileID]; !ok {
		i, _ := slices.BinarySearch(s.ids, row.FileID)
		s.ids = slices.Insert(s.ids, i, row.FileID)
	}
	s.byID[row.FileID] = row
	n := len(s.ids)
	s.mu.Unlock()

	metrics.UpdateRepositoryRowsTotal(n)
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
	return nil
}

// List implements Store.List.
func (s *MemoryStore) List(ctx context.Context) ([]types.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]types.Row, len(s.ids))
	for i, id := range s.ids {
		rows[i] = s.byID[id]
	}
	return rows, nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
