// Package ledger tracks balances and total supply of the governed coin and
// hands out the single treasury capability allowed to change supply.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/storage"
)

var (
	// ErrCapAlreadyIssued is returned when the treasury cap was already handed out.
	ErrCapAlreadyIssued = errors.New("treasury cap already issued")

	// ErrCapAlreadyBound is returned when a treasury cap is claimed twice.
	ErrCapAlreadyBound = errors.New("treasury cap already bound to an authority")

	// ErrInsufficientBalance is returned when a withdrawal exceeds the balance.
	ErrInsufficientBalance = storage.ErrInsufficientBalance
)

// Ledger is the bookkeeping view over a storage.LedgerStore.
type Ledger struct {
	store  storage.LedgerStore
	issued atomic.Bool
}

// New creates a ledger backed by store.
func New(store storage.LedgerStore) *Ledger {
	return &Ledger{store: store}
}

// IssueTreasuryCap returns the ledger's only treasury capability.
// It succeeds exactly once per Ledger.
func (l *Ledger) IssueTreasuryCap() (*TreasuryCap, error) {
	if !l.issued.CompareAndSwap(false, true) {
		return nil, ErrCapAlreadyIssued
	}
	return &TreasuryCap{ledger: l}, nil
}

// Balance returns the balance held by owner.
func (l *Ledger) Balance(ctx context.Context, owner domain.Address) (uint64, error) {
	bal, err := l.store.Balance(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("balance of %s: %w", owner, err)
	}
	return bal, nil
}

// TotalSupply returns the outstanding supply.
func (l *Ledger) TotalSupply(ctx context.Context) (uint64, error) {
	supply, err := l.store.TotalSupply(ctx)
	if err != nil {
		return 0, fmt.Errorf("total supply: %w", err)
	}
	return supply, nil
}

// Withdraw moves amount out of owner's custody into a Coin.
func (l *Ledger) Withdraw(ctx context.Context, owner domain.Address, amount uint64) (domain.Coin, error) {
	if err := l.store.Withdraw(ctx, owner, amount); err != nil {
		return domain.Coin{}, fmt.Errorf("withdraw %d from %s: %w", amount, owner, err)
	}
	return domain.NewCoin(amount), nil
}

// Deposit returns the coin's value to owner's custody and empties the coin.
func (l *Ledger) Deposit(ctx context.Context, owner domain.Address, coin *domain.Coin) error {
	value := coin.Value()
	if err := l.store.Deposit(ctx, owner, value); err != nil {
		return fmt.Errorf("deposit %d to %s: %w", value, owner, err)
	}
	coin.Take()
	return nil
}

// TreasuryCap is the administrative capability to mint and burn.
type TreasuryCap struct {
	ledger *Ledger
	bound  atomic.Bool
}

// Claim marks the cap as owned. Only the first claim succeeds, so the
// capability can never be shared between two owners.
func (c *TreasuryCap) Claim() error {
	if !c.bound.CompareAndSwap(false, true) {
		return ErrCapAlreadyBound
	}
	return nil
}

// TotalSupply returns the outstanding supply.
func (c *TreasuryCap) TotalSupply(ctx context.Context) (uint64, error) {
	return c.ledger.TotalSupply(ctx)
}

// Mint issues amount of new supply to recipient.
func (c *TreasuryCap) Mint(ctx context.Context, recipient domain.Address, amount uint64) error {
	if err := c.ledger.store.Mint(ctx, recipient, amount); err != nil {
		return fmt.Errorf("mint %d to %s: %w", amount, recipient, err)
	}
	return nil
}

// Burn destroys the coin's value and empties the coin.
func (c *TreasuryCap) Burn(ctx context.Context, coin *domain.Coin) error {
	value := coin.Value()
	if err := c.ledger.store.Burn(ctx, value); err != nil {
		return fmt.Errorf("burn %d: %w", value, err)
	}
	coin.Take()
	return nil
}
