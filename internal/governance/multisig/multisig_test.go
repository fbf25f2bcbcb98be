package multisig

import (
	"context"
	"errors"
	"testing"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/governance"
	"coin-guardian/internal/storage/memory"
)

var (
	govID   = domain.MustParseAddress("Vote111111111111111111111111111111111111111")
	alice   = domain.MustParseAddress("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	bob     = domain.MustParseAddress("So11111111111111111111111111111111111111112")
	carol   = domain.MustParseAddress("SysvarC1ock11111111111111111111111111111111")
	mallory = domain.MustParseAddress("SysvarRent111111111111111111111111111111111")
)

func newModule(t *testing.T, threshold int) *Module {
	t.Helper()
	m, err := New(Config{
		ID:           govID,
		Participants: []domain.Address{alice, bob, carol},
		Threshold:    threshold,
	}, memory.NewProposalStore(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func createMint(t *testing.T, m *Module) domain.ProposalID {
	t.Helper()
	id, err := m.Create(context.Background(), alice, "mint", &domain.MintPayload{Amount: 10, Recipient: bob})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return id
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"valid", Config{ID: govID, Participants: []domain.Address{alice, bob}, Threshold: 2}, true},
		{"zero id", Config{Participants: []domain.Address{alice}, Threshold: 1}, false},
		{"no participants", Config{ID: govID, Threshold: 1}, false},
		{"duplicate participant", Config{ID: govID, Participants: []domain.Address{alice, alice}, Threshold: 1}, false},
		{"threshold zero", Config{ID: govID, Participants: []domain.Address{alice}, Threshold: 0}, false},
		{"threshold above roster", Config{ID: govID, Participants: []domain.Address{alice}, Threshold: 2}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestVote_ApprovesAtThreshold(t *testing.T) {
	ctx := context.Background()
	m := newModule(t, 2)
	id := createMint(t, m)

	status, err := m.Vote(ctx, id, alice, true)
	if err != nil {
		t.Fatalf("Vote alice: %v", err)
	}
	if status != domain.ProposalPending {
		t.Errorf("after one approval: got %s, want PENDING", status)
	}

	status, err = m.Vote(ctx, id, bob, true)
	if err != nil {
		t.Fatalf("Vote bob: %v", err)
	}
	if status != domain.ProposalApproved {
		t.Errorf("after two approvals: got %s, want APPROVED", status)
	}

	approved, _ := m.IsApproved(ctx, id)
	rejected, _ := m.IsRejected(ctx, id)
	if !approved || rejected {
		t.Errorf("IsApproved=%v IsRejected=%v", approved, rejected)
	}

	if _, err := m.Vote(ctx, id, carol, false); !errors.Is(err, ErrVotingClosed) {
		t.Errorf("vote after resolution: got %v, want ErrVotingClosed", err)
	}
}

func TestVote_RejectsWhenThresholdUnreachable(t *testing.T) {
	ctx := context.Background()
	m := newModule(t, 2)
	id := createMint(t, m)

	if status, _ := m.Vote(ctx, id, alice, false); status != domain.ProposalPending {
		t.Errorf("after one rejection: got %s, want PENDING", status)
	}
	status, err := m.Vote(ctx, id, bob, false)
	if err != nil {
		t.Fatalf("Vote bob: %v", err)
	}
	if status != domain.ProposalRejected {
		t.Errorf("after two rejections: got %s, want REJECTED", status)
	}
}

func TestVote_RejectsNonParticipantAndDuplicate(t *testing.T) {
	ctx := context.Background()
	m := newModule(t, 3)
	id := createMint(t, m)

	if _, err := m.Vote(ctx, id, mallory, true); !errors.Is(err, ErrNotParticipant) {
		t.Errorf("non-participant: got %v, want ErrNotParticipant", err)
	}
	if _, err := m.Vote(ctx, id, alice, true); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if _, err := m.Vote(ctx, id, alice, true); !errors.Is(err, ErrAlreadyVoted) {
		t.Errorf("second vote: got %v, want ErrAlreadyVoted", err)
	}
	if _, err := m.Vote(ctx, 999, alice, true); !errors.Is(err, governance.ErrProposalNotFound) {
		t.Errorf("unknown proposal: got %v, want ErrProposalNotFound", err)
	}

	votes, err := m.Votes(ctx, id)
	if err != nil {
		t.Fatalf("Votes: %v", err)
	}
	if len(votes) != 1 {
		t.Errorf("expected 1 vote, got %d", len(votes))
	}
}

func TestPayloadLifecycle(t *testing.T) {
	ctx := context.Background()
	m := newModule(t, 1)
	id := createMint(t, m)

	if err := m.MarkComplete(ctx, id); !errors.Is(err, governance.ErrNotDecided) {
		t.Errorf("complete pending: got %v, want ErrNotDecided", err)
	}

	if _, err := m.Vote(ctx, id, carol, true); err != nil {
		t.Fatalf("Vote: %v", err)
	}

	borrowed, err := m.BorrowPayload(ctx, id)
	if err != nil {
		t.Fatalf("BorrowPayload: %v", err)
	}
	if mint, ok := borrowed.(*domain.MintPayload); !ok || mint.Amount != 10 || mint.Recipient != bob {
		t.Errorf("unexpected payload %#v", borrowed)
	}

	if _, err := m.ExtractPayload(ctx, id); err != nil {
		t.Fatalf("ExtractPayload: %v", err)
	}
	if _, err := m.ExtractPayload(ctx, id); !errors.Is(err, governance.ErrPayloadExtracted) {
		t.Errorf("second extract: got %v, want ErrPayloadExtracted", err)
	}

	if err := m.MarkComplete(ctx, id); err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}
	completed, _ := m.IsCompleted(ctx, id)
	if !completed {
		t.Error("expected completed")
	}
	if err := m.MarkComplete(ctx, id); !errors.Is(err, governance.ErrProposalCompleted) {
		t.Errorf("second complete: got %v, want ErrProposalCompleted", err)
	}
	if _, err := m.BorrowPayload(ctx, id); !errors.Is(err, governance.ErrProposalCompleted) {
		t.Errorf("borrow after complete: got %v, want ErrProposalCompleted", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	m := newModule(t, 2)

	first := createMint(t, m)
	second := createMint(t, m)
	third := createMint(t, m)
	for _, voter := range []domain.Address{alice, bob} {
		if _, err := m.Vote(ctx, second, voter, true); err != nil {
			t.Fatalf("Vote: %v", err)
		}
	}

	pending, err := m.List(ctx, domain.ProposalPending)
	if err != nil {
		t.Fatalf("List pending: %v", err)
	}
	if len(pending) != 2 || pending[0].ID != first || pending[1].ID != third {
		t.Errorf("pending = %v, want [%d %d]", ids(pending), first, third)
	}

	all, err := m.List(ctx, "")
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 || all[0].ID != first || all[1].ID != second || all[2].ID != third {
		t.Errorf("all = %v, want ordered by id", ids(all))
	}
}

func ids(ps []*domain.Proposal) []domain.ProposalID {
	out := make([]domain.ProposalID, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
