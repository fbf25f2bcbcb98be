// Package supply holds the max-supply cap and the cap check applied to mints.
package supply

import (
	"context"
	"errors"
	"fmt"
	"math"

	"coin-guardian/internal/storage"
)

// ErrSupplyCapExceeded is returned when a mint would push total supply past the cap.
var ErrSupplyCapExceeded = errors.New("supply cap exceeded")

// ValidateMintWithinCap fails with ErrSupplyCapExceeded if current+amount
// exceeds maxSupply. An addition that overflows uint64 counts as exceeding it.
func ValidateMintWithinCap(current, amount, maxSupply uint64) error {
	if amount > math.MaxUint64-current || current+amount > maxSupply {
		return fmt.Errorf("%w: supply %d + mint %d > cap %d", ErrSupplyCapExceeded, current, amount, maxSupply)
	}
	return nil
}

// Policy is the configurable supply cap, persisted through a PolicyStore.
// The cap changes only through an approved metadata update.
type Policy struct {
	store storage.PolicyStore
}

// NewPolicy loads the policy from store, seeding it with initialMaxSupply
// when no cap has been written yet.
func NewPolicy(ctx context.Context, store storage.PolicyStore, initialMaxSupply uint64) (*Policy, error) {
	_, err := store.GetMaxSupply(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		if err := store.SetMaxSupply(ctx, initialMaxSupply); err != nil {
			return nil, fmt.Errorf("seed max supply: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("load max supply: %w", err)
	}
	return &Policy{store: store}, nil
}

// MaxSupply returns the current cap.
func (p *Policy) MaxSupply(ctx context.Context) (uint64, error) {
	v, err := p.store.GetMaxSupply(ctx)
	if err != nil {
		return 0, fmt.Errorf("get max supply: %w", err)
	}
	return v, nil
}

// SetMaxSupply replaces the cap.
func (p *Policy) SetMaxSupply(ctx context.Context, maxSupply uint64) error {
	if err := p.store.SetMaxSupply(ctx, maxSupply); err != nil {
		return fmt.Errorf("set max supply: %w", err)
	}
	return nil
}
