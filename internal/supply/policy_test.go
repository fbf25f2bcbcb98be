package supply

import (
	"context"
	"errors"
	"math"
	"testing"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/storage/memory"
)

func TestValidateMintWithinCap(t *testing.T) {
	tests := []struct {
		name    string
		current uint64
		amount  uint64
		cap     uint64
		wantErr bool
	}{
		{name: "empty supply under cap", current: 0, amount: 700, cap: 1000},
		{name: "exactly at cap", current: 700, amount: 300, cap: 1000},
		{name: "one over cap", current: 700, amount: 301, cap: 1000, wantErr: true},
		{name: "joint pending mints exceed cap", current: 700, amount: 500, cap: 1000, wantErr: true},
		{name: "zero amount at full cap", current: 1000, amount: 0, cap: 1000},
		{name: "overflow", current: math.MaxUint64, amount: 1, cap: math.MaxUint64, wantErr: true},
		{name: "zero cap", current: 0, amount: 1, cap: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMintWithinCap(tt.current, tt.amount, tt.cap)
			if tt.wantErr && !errors.Is(err, ErrSupplyCapExceeded) {
				t.Errorf("expected ErrSupplyCapExceeded, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewPolicy_SeedsOnlyWhenUnset(t *testing.T) {
	ctx := context.Background()
	store := memory.NewPolicyStore()

	p, err := NewPolicy(ctx, store, domain.DefaultMaxSupply)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	got, _ := p.MaxSupply(ctx)
	if got != domain.DefaultMaxSupply {
		t.Errorf("seeded cap: got %d, want %d", got, domain.DefaultMaxSupply)
	}

	if err := p.SetMaxSupply(ctx, 1000); err != nil {
		t.Fatalf("SetMaxSupply: %v", err)
	}

	// Reloading must keep the stored cap, not reseed it.
	p2, err := NewPolicy(ctx, store, domain.DefaultMaxSupply)
	if err != nil {
		t.Fatalf("NewPolicy reload: %v", err)
	}
	got, _ = p2.MaxSupply(ctx)
	if got != 1000 {
		t.Errorf("reloaded cap: got %d, want 1000", got)
	}
}
