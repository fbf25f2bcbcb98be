package memory

import (
	"context"
	"sync"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/storage"
)

// MetadataStore is an in-memory implementation of storage.MetadataStore.
type MetadataStore struct {
	mu   sync.RWMutex
	meta *domain.CoinMetadata
}

// NewMetadataStore creates a new in-memory metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{}
}

// Get returns the current metadata. Returns ErrNotFound if never written.
func (s *MetadataStore) Get(_ context.Context) (*domain.CoinMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.meta == nil {
		return nil, storage.ErrNotFound
	}

	metaCopy := *s.meta
	return &metaCopy, nil
}

// Put replaces the metadata record.
func (s *MetadataStore) Put(_ context.Context, m *domain.CoinMetadata) error {
	if m == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	metaCopy := *m
	s.meta = &metaCopy
	return nil
}

var _ storage.MetadataStore = (*MetadataStore)(nil)
