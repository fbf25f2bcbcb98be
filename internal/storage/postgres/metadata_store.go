package postgres

import (
	"context"
	"fmt"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/storage"
)

// MetadataStore implements storage.MetadataStore using PostgreSQL.
type MetadataStore struct {
	pool *Pool
}

// NewMetadataStore creates a new MetadataStore.
func NewMetadataStore(pool *Pool) *MetadataStore {
	return &MetadataStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MetadataStore = (*MetadataStore)(nil)

// Get returns the current metadata. Returns ErrNotFound if never written.
func (s *MetadataStore) Get(ctx context.Context) (*domain.CoinMetadata, error) {
	query := `
		SELECT name, symbol, description, icon_url, decimals, updated_at
		FROM coin_metadata
		WHERE id = 1
	`

	var m domain.CoinMetadata
	err := s.pool.QueryRow(ctx, query).Scan(
		&m.Name,
		&m.Symbol,
		&m.Description,
		&m.IconURL,
		&m.Decimals,
		&m.UpdatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get coin metadata: %w", err)
	}
	return &m, nil
}

// Put replaces the metadata record in a single upsert.
func (s *MetadataStore) Put(ctx context.Context, m *domain.CoinMetadata) error {
	if m == nil {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO coin_metadata (id, name, symbol, description, icon_url, decimals, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			description = EXCLUDED.description,
			icon_url = EXCLUDED.icon_url,
			decimals = EXCLUDED.decimals,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.pool.Exec(ctx, query,
		m.Name,
		m.Symbol,
		m.Description,
		m.IconURL,
		m.Decimals,
		m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("put coin metadata: %w", err)
	}
	return nil
}
