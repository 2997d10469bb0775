package persistence

import (
	"slices"
	"sync"

	"github.com/jhalonen/flowgrid/pkg/api"
)

// MemoryStore is a simple, goroutine-safe implementation of FrontierStore
// and CheckpointStore backed by maps. It is non-durable and intended for
// tests and development.
type MemoryStore struct {
	mu          sync.RWMutex
	frontier    *api.Frontier
	checkpoints map[int64]*api.Batch
}

// NewMemoryStore creates a new MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		checkpoints: make(map[int64]*api.Batch),
	}
}

// Ensure MemoryStore implements the interfaces.
var _ FrontierStore = (*MemoryStore)(nil)

var _ CheckpointStore = (*MemoryStore)(nil)

func (s *MemoryStore) SaveFrontier(f *api.Frontier) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frontier = f.Clone()
	return nil
}

func (s *MemoryStore) LoadFrontier() (*api.Frontier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.frontier == nil {
		return nil, ErrFrontierNotFound
	}
	return s.frontier.Clone(), nil
}

func (s *MemoryStore) ResetFrontier() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frontier = nil
	return nil
}

func (s *MemoryStore) SaveCheckpoint(b *api.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Copy the batch with its row slice so later writes by the caller do
	// not leak into the store.
	cp := *b
	cp.Rows = slices.Clone(b.Rows)
	s.checkpoints[b.ID] = &cp
	return nil
}

func (s *MemoryStore) LoadCheckpoint(batchID int64) (*api.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.checkpoints[batchID]
	if !ok {
		return nil, ErrCheckpointNotFound
	}
	cp := *b
	cp.Rows = slices.Clone(b.Rows)
	return &cp, nil
}

func (s *MemoryStore) CheckpointIDs() ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.checkpoints))
	for id := range s.checkpoints {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (s *MemoryStore) ResetCheckpoints() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints = make(map[int64]*api.Batch)
	return nil
}
