package memory

import (
	"context"
	"sync"

	"coin-guardian/internal/storage"
)

// PolicyStore is an in-memory implementation of storage.PolicyStore.
type PolicyStore struct {
	mu        sync.RWMutex
	maxSupply uint64
	set       bool
}

// NewPolicyStore creates a new in-memory policy store.
func NewPolicyStore() *PolicyStore {
	return &PolicyStore{}
}

// GetMaxSupply returns the configured cap. Returns ErrNotFound if never written.
func (s *PolicyStore) GetMaxSupply(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.set {
		return 0, storage.ErrNotFound
	}
	return s.maxSupply, nil
}

// SetMaxSupply stores a new cap.
func (s *PolicyStore) SetMaxSupply(_ context.Context, maxSupply uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.maxSupply = maxSupply
	s.set = true
	return nil
}

var _ storage.PolicyStore = (*PolicyStore)(nil)
