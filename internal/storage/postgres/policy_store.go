package postgres

import (
	"context"
	"fmt"

	"coin-guardian/internal/storage"
)

// PolicyStore implements storage.PolicyStore using PostgreSQL.
type PolicyStore struct {
	pool *Pool
}

// NewPolicyStore creates a new PolicyStore.
func NewPolicyStore(pool *Pool) *PolicyStore {
	return &PolicyStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PolicyStore = (*PolicyStore)(nil)

// GetMaxSupply returns the configured cap. Returns ErrNotFound if never written.
func (s *PolicyStore) GetMaxSupply(ctx context.Context) (uint64, error) {
	var maxSupply int64
	err := s.pool.QueryRow(ctx, `SELECT max_supply FROM supply_policy WHERE id = 1`).Scan(&maxSupply)
	if err != nil {
		if isNotFoundError(err) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("get max supply: %w", err)
	}
	return uint64(maxSupply), nil
}

// SetMaxSupply stores a new cap. Caps above math.MaxInt64 are rejected
// with ErrInvalidInput since the column is BIGINT.
func (s *PolicyStore) SetMaxSupply(ctx context.Context, maxSupply uint64) error {
	v, ok := toBigint(maxSupply)
	if !ok {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO supply_policy (id, max_supply) VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET max_supply = EXCLUDED.max_supply
	`, v)
	if err != nil {
		return fmt.Errorf("set max supply: %w", err)
	}
	return nil
}
