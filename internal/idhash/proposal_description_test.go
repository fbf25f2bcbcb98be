package idhash

import (
	"strings"
	"testing"

	"coin-guardian/internal/domain"
)

var (
	alice = domain.MustParseAddress("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	bob   = domain.MustParseAddress("So11111111111111111111111111111111111111112")
)

func TestComputeProposalDescription(t *testing.T) {
	tests := []struct {
		name     string
		proposer domain.Address
		payload  domain.Payload
		prefix   string
	}{
		{
			name:     "mint",
			proposer: alice,
			payload:  &domain.MintPayload{Amount: 1000, Recipient: bob},
			prefix:   "MINT:",
		},
		{
			name:     "burn",
			proposer: bob,
			payload:  &domain.BurnPayload{LockedFunds: domain.NewCoin(50), Proposer: bob},
			prefix:   "BURN:",
		},
		{
			name:     "metadata",
			proposer: alice,
			payload:  &domain.MetadataPayload{Name: "Guard", MaxSupply: 10},
			prefix:   "METADATA_UPDATE:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeProposalDescription(tt.proposer, tt.payload)

			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("ComputeProposalDescription() = %s, want prefix %s", got, tt.prefix)
			}
			if len(got) != len(tt.prefix)+64 {
				t.Errorf("ComputeProposalDescription() length = %d, want %d", len(got), len(tt.prefix)+64)
			}

			got2 := ComputeProposalDescription(tt.proposer, tt.payload)
			if got != got2 {
				t.Errorf("ComputeProposalDescription() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeProposalDescription_DifferentInputs(t *testing.T) {
	base := ComputeProposalDescription(alice, &domain.MintPayload{Amount: 1000, Recipient: bob})

	variants := map[string]string{
		"proposer":  ComputeProposalDescription(bob, &domain.MintPayload{Amount: 1000, Recipient: bob}),
		"amount":    ComputeProposalDescription(alice, &domain.MintPayload{Amount: 1001, Recipient: bob}),
		"recipient": ComputeProposalDescription(alice, &domain.MintPayload{Amount: 1000, Recipient: alice}),
	}

	for name, got := range variants {
		if got == base {
			t.Errorf("changing %s should change the description", name)
		}
	}
}

func TestComputeProposalDescription_FieldBoundaries(t *testing.T) {
	a := ComputeProposalDescription(alice, &domain.MetadataPayload{Name: "a|b", Symbol: "c"})
	b := ComputeProposalDescription(alice, &domain.MetadataPayload{Name: "a", Symbol: "b|c"})
	if a == b {
		t.Error("field separators inside values must not collide")
	}
}
