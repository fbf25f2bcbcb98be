package guard

import (
	"context"
	"errors"
	"testing"

	"coin-guardian/internal/domain"
)

type fakeGov struct {
	id           domain.Address
	participants map[domain.Address]bool
	err          error
}

func (g *fakeGov) ID() domain.Address { return g.id }

func (g *fakeGov) IsParticipant(_ context.Context, addr domain.Address) (bool, error) {
	return g.participants[addr], g.err
}

type fakeAuthority struct {
	bound domain.Address
}

func (a fakeAuthority) GovernanceID() domain.Address { return a.bound }

var (
	govA   = domain.MustParseAddress("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	govB   = domain.MustParseAddress("So11111111111111111111111111111111111111112")
	member = domain.MustParseAddress("SysvarC1ock11111111111111111111111111111111")
)

func TestCheckScope(t *testing.T) {
	authority := fakeAuthority{bound: govA}

	if err := CheckScope(&fakeGov{id: govA}, authority); err != nil {
		t.Errorf("matching scope rejected: %v", err)
	}

	err := CheckScope(&fakeGov{id: govB}, authority)
	if !errors.Is(err, ErrScopeMismatch) {
		t.Errorf("expected ErrScopeMismatch, got %v", err)
	}
}

func TestCheckParticipant(t *testing.T) {
	ctx := context.Background()
	gov := &fakeGov{id: govA, participants: map[domain.Address]bool{member: true}}

	if err := CheckParticipant(ctx, gov, member); err != nil {
		t.Errorf("participant rejected: %v", err)
	}

	err := CheckParticipant(ctx, gov, govB)
	if !errors.Is(err, ErrNotParticipant) {
		t.Errorf("expected ErrNotParticipant, got %v", err)
	}
}

func TestCheckParticipant_PropagatesLookupError(t *testing.T) {
	lookupErr := errors.New("roster unavailable")
	gov := &fakeGov{id: govA, err: lookupErr}

	err := CheckParticipant(context.Background(), gov, member)
	if !errors.Is(err, lookupErr) {
		t.Errorf("expected lookup error, got %v", err)
	}
	if errors.Is(err, ErrNotParticipant) {
		t.Error("lookup failure must not be reported as ErrNotParticipant")
	}
}
