package memory

import (
	"context"
	"errors"
	"testing"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/storage"
)

func newMintProposal(amount uint64) *domain.Proposal {
	return &domain.Proposal{
		Kind:        domain.OperationMint,
		Description: "mint",
		Payload:     &domain.MintPayload{Amount: amount, Recipient: alice},
		Status:      domain.ProposalPending,
		Proposer:    alice,
		CreatedAt:   1704067200000,
	}
}

func TestProposalStore_InsertAssignsSequentialIDs(t *testing.T) {
	store := NewProposalStore()
	ctx := context.Background()

	id1, err := store.Insert(ctx, newMintProposal(1))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	id2, err := store.Insert(ctx, newMintProposal(2))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	if id1 != 1 || id2 != 2 {
		t.Errorf("IDs: got %d, %d, want 1, 2", id1, id2)
	}

	p, err := store.GetByID(ctx, id2)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	mint, ok := p.Payload.(*domain.MintPayload)
	if !ok || mint.Amount != 2 {
		t.Errorf("payload mismatch: %+v", p.Payload)
	}
}

func TestProposalStore_InvalidInput(t *testing.T) {
	store := NewProposalStore()
	ctx := context.Background()

	if _, err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}

	p := newMintProposal(1)
	p.Payload = nil
	if _, err := store.Insert(ctx, p); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil payload, got %v", err)
	}
}

func TestProposalStore_Transition(t *testing.T) {
	store := NewProposalStore()
	ctx := context.Background()

	id, _ := store.Insert(ctx, newMintProposal(1))

	if err := store.Transition(ctx, id, domain.ProposalPending, domain.ProposalApproved); err != nil {
		t.Fatalf("Transition failed: %v", err)
	}

	// Stale from-status
	err := store.Transition(ctx, id, domain.ProposalPending, domain.ProposalRejected)
	if !errors.Is(err, storage.ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}

	// Backwards move is never legal
	err = store.Transition(ctx, id, domain.ProposalCompleted, domain.ProposalPending)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}

	if err := store.Transition(ctx, 99, domain.ProposalPending, domain.ProposalApproved); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	approved, _ := store.GetByStatus(ctx, domain.ProposalApproved)
	if len(approved) != 1 || approved[0].ID != id {
		t.Errorf("GetByStatus: got %d proposals", len(approved))
	}
}

func TestProposalStore_DetachPayloadOnce(t *testing.T) {
	store := NewProposalStore()
	ctx := context.Background()

	id, _ := store.Insert(ctx, newMintProposal(1))

	if err := store.DetachPayload(ctx, id); err != nil {
		t.Fatalf("DetachPayload failed: %v", err)
	}
	if err := store.DetachPayload(ctx, id); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("Expected ErrConflict on second detach, got %v", err)
	}

	p, _ := store.GetByID(ctx, id)
	if p.Payload != nil || !p.PayloadExtracted {
		t.Error("payload should be dropped after detach")
	}
}

func TestProposalStore_Votes(t *testing.T) {
	store := NewProposalStore()
	ctx := context.Background()

	id, _ := store.Insert(ctx, newMintProposal(1))

	if err := store.InsertVote(ctx, &domain.Vote{ProposalID: id, Voter: alice, Approve: true}); err != nil {
		t.Fatalf("InsertVote failed: %v", err)
	}
	if err := store.InsertVote(ctx, &domain.Vote{ProposalID: id, Voter: bob, Approve: false}); err != nil {
		t.Fatalf("InsertVote failed: %v", err)
	}

	err := store.InsertVote(ctx, &domain.Vote{ProposalID: id, Voter: alice, Approve: false})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	err = store.InsertVote(ctx, &domain.Vote{ProposalID: 42, Voter: alice})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown proposal, got %v", err)
	}

	votes, _ := store.GetVotes(ctx, id)
	if len(votes) != 2 {
		t.Fatalf("votes: got %d, want 2", len(votes))
	}
	if !votes[0].Approve || votes[1].Approve {
		t.Error("votes should keep insertion order")
	}
}

func TestProposalStore_ReturnsCopy(t *testing.T) {
	store := NewProposalStore()
	ctx := context.Background()

	p := newMintProposal(10)
	id, _ := store.Insert(ctx, p)

	// Modify original payload
	p.Payload.(*domain.MintPayload).Amount = 999

	got, _ := store.GetByID(ctx, id)
	if got.Payload.(*domain.MintPayload).Amount != 10 {
		t.Error("Store should keep a copy of the payload")
	}
}
