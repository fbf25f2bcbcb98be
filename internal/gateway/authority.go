package gateway

import (
	"errors"
	"fmt"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/ledger"
)

// Authority owns the treasury cap and is permanently bound to one
// governance instance. Only the gateway can reach the cap through it.
type Authority struct {
	treasury *ledger.TreasuryCap
	govID    domain.Address
}

// NewAuthority binds treasury to the governance instance govID. A cap can
// be bound once; a second binding fails with ErrCapAlreadyBound.
func NewAuthority(treasury *ledger.TreasuryCap, govID domain.Address) (*Authority, error) {
	if treasury == nil {
		return nil, errors.New("new authority: nil treasury cap")
	}
	if govID.IsZero() {
		return nil, errors.New("new authority: governance id is required")
	}
	if err := treasury.Claim(); err != nil {
		return nil, fmt.Errorf("new authority: %w", err)
	}
	return &Authority{treasury: treasury, govID: govID}, nil
}

// GovernanceID returns the bound governance instance.
func (a *Authority) GovernanceID() domain.Address {
	return a.govID
}
