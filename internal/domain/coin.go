package domain

import "encoding/json"

// Coin is a balance taken out of an owner's custody. It has move semantics:
// Take transfers the value out and leaves the coin empty, so a coin that has
// been deposited or burned cannot be spent a second time.
type Coin struct {
	value uint64
}

// NewCoin wraps a withdrawn value. Only the ledger should create coins.
func NewCoin(value uint64) Coin {
	return Coin{value: value}
}

// Value returns the amount held by the coin.
func (c Coin) Value() uint64 {
	return c.value
}

// Take moves the value out of the coin and zeroes it.
func (c *Coin) Take() uint64 {
	v := c.value
	c.value = 0
	return v
}

// MarshalJSON implements json.Marshaler.
func (c Coin) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Coin) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &c.value)
}
