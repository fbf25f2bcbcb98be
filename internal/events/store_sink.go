package events

import (
	"context"
	"fmt"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/storage"
)

// StoreSink persists events to an EventStore.
type StoreSink struct {
	store storage.EventStore
}

// NewStoreSink creates a sink over store.
func NewStoreSink(store storage.EventStore) *StoreSink {
	return &StoreSink{store: store}
}

// Name implements Sink.
func (s *StoreSink) Name() string { return "store" }

// Publish implements Sink.
func (s *StoreSink) Publish(ctx context.Context, e *domain.Event) error {
	if err := s.store.Insert(ctx, e); err != nil {
		return fmt.Errorf("store event %s: %w", e.EventID, err)
	}
	return nil
}

var _ Sink = (*StoreSink)(nil)
