package memory

import (
	"context"
	"errors"
	"testing"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/storage"
)

func TestMetadataStore_PutAndGet(t *testing.T) {
	store := NewMetadataStore()
	ctx := context.Background()

	meta := &domain.CoinMetadata{
		Name:      "Guarded Coin",
		Symbol:    "GRD",
		Decimals:  domain.Decimals,
		UpdatedAt: 1704067200000,
	}

	if err := store.Put(ctx, meta); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	result, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if result.Symbol != "GRD" {
		t.Errorf("Symbol mismatch: got %s, want GRD", result.Symbol)
	}
	if result.Name != "Guarded Coin" {
		t.Errorf("Name mismatch: got %s, want Guarded Coin", result.Name)
	}
}

func TestMetadataStore_NotFound(t *testing.T) {
	store := NewMetadataStore()

	_, err := store.Get(context.Background())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestMetadataStore_InvalidInput(t *testing.T) {
	store := NewMetadataStore()

	err := store.Put(context.Background(), nil)
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for nil, got %v", err)
	}
}

func TestMetadataStore_ReturnsCopy(t *testing.T) {
	store := NewMetadataStore()
	ctx := context.Background()

	meta := &domain.CoinMetadata{Symbol: "GRD", Decimals: domain.Decimals}
	if err := store.Put(ctx, meta); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Modify original
	meta.Symbol = "CHANGED"

	result, _ := store.Get(ctx)
	if result.Symbol != "GRD" {
		t.Error("Store should keep a copy, not reference")
	}

	// Modify returned value
	result.Symbol = "AGAIN"
	again, _ := store.Get(ctx)
	if again.Symbol != "GRD" {
		t.Error("Store should return copy, not reference")
	}
}
