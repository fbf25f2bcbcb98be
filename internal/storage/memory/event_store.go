package memory

import (
	"context"
	"sort"
	"sync"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
type EventStore struct {
	mu     sync.RWMutex
	events []*domain.Event
	ids    map[string]struct{}
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		ids: make(map[string]struct{}),
	}
}

// Insert appends an event. Returns ErrDuplicateKey if event_id exists.
func (s *EventStore) Insert(_ context.Context, e *domain.Event) error {
	if e == nil || e.EventID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[e.EventID]; exists {
		return storage.ErrDuplicateKey
	}

	eventCopy := *e
	s.events = append(s.events, &eventCopy)
	s.ids[e.EventID] = struct{}{}
	return nil
}

// GetByProposalID retrieves events for a proposal, ordered by occurred_at ASC.
func (s *EventStore) GetByProposalID(_ context.Context, id domain.ProposalID) ([]*domain.Event, error) {
	return s.filter(func(e *domain.Event) bool {
		return e.ProposalID == id
	}), nil
}

// GetByTimeRange retrieves events within [start, end] (inclusive).
func (s *EventStore) GetByTimeRange(_ context.Context, start, end int64) ([]*domain.Event, error) {
	return s.filter(func(e *domain.Event) bool {
		return e.OccurredAt >= start && e.OccurredAt <= end
	}), nil
}

func (s *EventStore) filter(keep func(*domain.Event) bool) []*domain.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Event
	for _, e := range s.events {
		if keep(e) {
			eventCopy := *e
			result = append(result, &eventCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].OccurredAt < result[j].OccurredAt
	})
	return result
}

var _ storage.EventStore = (*EventStore)(nil)
