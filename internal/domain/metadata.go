package domain

// CoinMetadata is the descriptive record of the governed coin.
// Corresponds to coin_metadata table in PostgreSQL.
type CoinMetadata struct {
	Name        string
	Symbol      string
	Description string
	IconURL     string
	Decimals    int   // fixed at Decimals
	UpdatedAt   int64 // last patch timestamp (ms)
}
