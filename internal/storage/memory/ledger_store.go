package memory

import (
	"context"
	"math"
	"sync"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/storage"
)

// LedgerStore is an in-memory implementation of storage.LedgerStore.
type LedgerStore struct {
	mu       sync.RWMutex
	balances map[domain.Address]uint64
	supply   uint64
}

// NewLedgerStore creates a new in-memory ledger store.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		balances: make(map[domain.Address]uint64),
	}
}

// Balance returns the balance of owner. Unknown owners have balance 0.
func (s *LedgerStore) Balance(_ context.Context, owner domain.Address) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[owner], nil
}

// TotalSupply returns the outstanding supply.
func (s *LedgerStore) TotalSupply(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.supply, nil
}

// Mint credits recipient and increases total supply.
func (s *LedgerStore) Mint(_ context.Context, recipient domain.Address, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount > math.MaxUint64-s.supply {
		return storage.ErrInvalidInput
	}
	s.supply += amount
	s.balances[recipient] += amount
	return nil
}

// Burn decreases total supply.
func (s *LedgerStore) Burn(_ context.Context, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount > s.supply {
		return storage.ErrInvalidInput
	}
	s.supply -= amount
	return nil
}

// Withdraw debits owner. Returns ErrInsufficientBalance if balance < amount.
func (s *LedgerStore) Withdraw(_ context.Context, owner domain.Address, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bal := s.balances[owner]
	if bal < amount {
		return storage.ErrInsufficientBalance
	}
	if bal == amount {
		delete(s.balances, owner)
	} else {
		s.balances[owner] = bal - amount
	}
	return nil
}

// Deposit credits owner without changing total supply.
func (s *LedgerStore) Deposit(_ context.Context, owner domain.Address, amount uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if amount > math.MaxUint64-s.balances[owner] {
		return storage.ErrInvalidInput
	}
	s.balances[owner] += amount
	return nil
}

var _ storage.LedgerStore = (*LedgerStore)(nil)
