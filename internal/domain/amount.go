package domain

import (
	"fmt"
	"strings"
)

// Decimals is the fixed decimal precision of the coin.
const Decimals = 9

// BaseUnitsPerCoin is 10^Decimals.
const BaseUnitsPerCoin uint64 = 1_000_000_000

// DefaultMaxSupply is 1,000,000,000 whole coins expressed in base units.
const DefaultMaxSupply uint64 = 1_000_000_000 * BaseUnitsPerCoin

// FormatAmount renders base units as a decimal string with trailing zeros trimmed.
func FormatAmount(units uint64) string {
	whole := units / BaseUnitsPerCoin
	frac := units % BaseUnitsPerCoin
	if frac == 0 {
		return fmt.Sprintf("%d", whole)
	}
	fracStr := strings.TrimRight(fmt.Sprintf("%0*d", Decimals, frac), "0")
	return fmt.Sprintf("%d.%s", whole, fracStr)
}
