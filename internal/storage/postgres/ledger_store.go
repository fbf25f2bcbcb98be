package postgres

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/storage"
)

// LedgerStore implements storage.LedgerStore using PostgreSQL.
type LedgerStore struct {
	pool *Pool
}

// NewLedgerStore creates a new LedgerStore.
func NewLedgerStore(pool *Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.LedgerStore = (*LedgerStore)(nil)

// Balance returns the balance of owner. Unknown owners have balance 0.
func (s *LedgerStore) Balance(ctx context.Context, owner domain.Address) (uint64, error) {
	var balance int64
	err := s.pool.QueryRow(ctx, `SELECT balance FROM ledger_balances WHERE owner = $1`, owner.String()).Scan(&balance)
	if err != nil {
		if isNotFoundError(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return uint64(balance), nil
}

// TotalSupply returns the outstanding supply.
func (s *LedgerStore) TotalSupply(ctx context.Context) (uint64, error) {
	var supply int64
	err := s.pool.QueryRow(ctx, `SELECT total_supply FROM ledger_supply WHERE id = 1`).Scan(&supply)
	if err != nil {
		if isNotFoundError(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get total supply: %w", err)
	}
	return uint64(supply), nil
}

// Mint credits recipient and increases total supply in one transaction.
func (s *LedgerStore) Mint(ctx context.Context, recipient domain.Address, amount uint64) (err error) {
	defer observe("ledger_mint", time.Now(), &err)

	amt, ok := toBigint(amount)
	if !ok {
		return storage.ErrInvalidInput
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO ledger_supply (id, total_supply) VALUES (1, $1)
			ON CONFLICT (id) DO UPDATE
			SET total_supply = ledger_supply.total_supply + EXCLUDED.total_supply
			WHERE ledger_supply.total_supply <= $2 - EXCLUDED.total_supply
		`, amt, int64(math.MaxInt64))
		if err != nil {
			return fmt.Errorf("increase supply: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrInvalidInput
		}

		if err := creditBalance(ctx, tx, recipient, amt); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if isCheckViolation(err) {
			return storage.ErrInvalidInput
		}
		return err
	}
	return nil
}

// Burn decreases total supply.
func (s *LedgerStore) Burn(ctx context.Context, amount uint64) (err error) {
	defer observe("ledger_burn", time.Now(), &err)

	amt, ok := toBigint(amount)
	if !ok {
		return storage.ErrInvalidInput
	}

	tag, execErr := s.pool.Exec(ctx, `
		UPDATE ledger_supply SET total_supply = total_supply - $1
		WHERE id = 1 AND total_supply >= $1
	`, amt)
	if execErr != nil {
		return fmt.Errorf("decrease supply: %w", execErr)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrInvalidInput
	}
	return nil
}

// Withdraw debits owner. Returns ErrInsufficientBalance if balance < amount.
func (s *LedgerStore) Withdraw(ctx context.Context, owner domain.Address, amount uint64) (err error) {
	defer observe("ledger_withdraw", time.Now(), &err)

	amt, ok := toBigint(amount)
	if !ok {
		return storage.ErrInsufficientBalance
	}

	tag, execErr := s.pool.Exec(ctx, `
		UPDATE ledger_balances SET balance = balance - $2
		WHERE owner = $1 AND balance >= $2
	`, owner.String(), amt)
	if execErr != nil {
		return fmt.Errorf("withdraw: %w", execErr)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrInsufficientBalance
	}
	return nil
}

// Deposit credits owner without changing total supply.
func (s *LedgerStore) Deposit(ctx context.Context, owner domain.Address, amount uint64) (err error) {
	defer observe("ledger_deposit", time.Now(), &err)

	amt, ok := toBigint(amount)
	if !ok {
		return storage.ErrInvalidInput
	}

	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return creditBalance(ctx, tx, owner, amt)
	})
	if err != nil {
		if isCheckViolation(err) {
			return storage.ErrInvalidInput
		}
		return err
	}
	return nil
}

// creditBalance upserts owner's balance, refusing BIGINT overflow.
func creditBalance(ctx context.Context, tx pgx.Tx, owner domain.Address, amt int64) error {
	tag, err := tx.Exec(ctx, `
		INSERT INTO ledger_balances (owner, balance) VALUES ($1, $2)
		ON CONFLICT (owner) DO UPDATE
		SET balance = ledger_balances.balance + EXCLUDED.balance
		WHERE ledger_balances.balance <= $3 - EXCLUDED.balance
	`, owner.String(), amt, int64(math.MaxInt64))
	if err != nil {
		return fmt.Errorf("credit balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrInvalidInput
	}
	return nil
}
