package staging

import (
	"context"
	"sync"
	"time"

	"github.com/insightdelivered/statement-importer/internal/models"
)

// MemoryStore is an in-memory Store, safe for concurrent use. Batches are
// lost on restart; use MongoStore for persistence across processes.
type MemoryStore struct {
	mu      sync.RWMutex
	batches map[string]models.PendingBatch
}

// NewMemoryStore creates an empty in-memory staging store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{batches: make(map[string]models.PendingBatch)}
}

// Put implements Store. The items slice is copied so later mutation by the
// caller cannot change the staged batch.
func (s *MemoryStore) Put(ctx context.Context, owner string, items []models.TransactionCandidate) error {
	staged := make([]models.TransactionCandidate, len(items))
	copy(staged, items)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[owner] = models.PendingBatch{
		Owner:    owner,
		Items:    staged,
		StagedAt: time.Now().UTC(),
	}
	return nil
}

// Get implements Store. It returns a copy to avoid external modification.
func (s *MemoryStore) Get(ctx context.Context, owner string) (*models.PendingBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch, ok := s.batches[owner]
	if !ok {
		return nil, ErrNotStaged
	}

	items := make([]models.TransactionCandidate, len(batch.Items))
	copy(items, batch.Items)
	batch.Items = items
	return &batch, nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(ctx context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.batches, owner)
	return nil
}

var _ Store = (*MemoryStore)(nil)
