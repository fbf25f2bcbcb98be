package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/storage/memory"
)

var (
	alice = domain.MustParseAddress("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	bob   = domain.MustParseAddress("So11111111111111111111111111111111111111112")
)

type recordingSink struct {
	mu     sync.Mutex
	events []*domain.Event
	err    error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Publish(_ context.Context, e *domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *e
	s.events = append(s.events, &copied)
	return s.err
}

func TestEmitter_CoinMinted(t *testing.T) {
	sink := &recordingSink{}
	e := NewEmitter(nil, sink)

	e.CoinMinted(context.Background(), alice, bob, 500, 7)

	if len(sink.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(sink.events))
	}
	ev := sink.events[0]
	if ev.Kind != domain.EventCoinMinted {
		t.Errorf("kind = %s, want COIN_MINTED", ev.Kind)
	}
	if ev.Actor != alice || ev.Recipient == nil || *ev.Recipient != bob {
		t.Errorf("unexpected actor/recipient: %s / %v", ev.Actor, ev.Recipient)
	}
	if ev.Amount != 500 || ev.ProposalID != 7 {
		t.Errorf("amount=%d proposal=%d", ev.Amount, ev.ProposalID)
	}
	if ev.EventID == "" || ev.OccurredAt == 0 {
		t.Error("event id and timestamp must be set")
	}
}

func TestEmitter_UniqueIDs(t *testing.T) {
	sink := &recordingSink{}
	e := NewEmitter(nil, sink)

	e.CoinBurned(context.Background(), alice, 1, 1)
	e.CoinBurned(context.Background(), alice, 1, 1)

	if sink.events[0].EventID == sink.events[1].EventID {
		t.Error("event ids must be unique")
	}
}

func TestEmitter_SinkErrorDoesNotStopDelivery(t *testing.T) {
	failing := &recordingSink{err: errors.New("boom")}
	healthy := &recordingSink{}
	e := NewEmitter(nil, failing, healthy)

	e.ProposalResolved(context.Background(), alice, 3, domain.OperationBurn, false)

	if len(healthy.events) != 1 {
		t.Fatalf("healthy sink got %d events, want 1", len(healthy.events))
	}
	ev := healthy.events[0]
	if ev.Approved == nil || *ev.Approved {
		t.Errorf("approved = %v, want false", ev.Approved)
	}
}

func TestEmitter_Nil(t *testing.T) {
	var e *Emitter
	e.ProposalSubmitted(context.Background(), alice, 1, domain.OperationMint)
}

func TestStoreSink(t *testing.T) {
	ctx := context.Background()
	store := memory.NewEventStore()
	e := NewEmitter(nil, NewStoreSink(store))

	e.ProposalSubmitted(ctx, alice, 9, domain.OperationMetadataUpdate)
	e.ProposalResolved(ctx, bob, 9, domain.OperationMetadataUpdate, true)

	got, err := store.GetByProposalID(ctx, 9)
	if err != nil {
		t.Fatalf("GetByProposalID: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 stored events, got %d", len(got))
	}
}
