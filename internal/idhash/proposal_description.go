package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"coin-guardian/internal/domain"
)

// ComputeProposalDescription computes a deterministic proposal description.
// Formula: kind:SHA256(kind|proposer|payload fields)
// The hash is hex-encoded (64 characters).
func ComputeProposalDescription(proposer domain.Address, payload domain.Payload) string {
	var fields string
	switch p := payload.(type) {
	case *domain.MintPayload:
		fields = fmt.Sprintf("%d|%s", p.Amount, p.Recipient)
	case *domain.BurnPayload:
		fields = fmt.Sprintf("%d|%s", p.LockedFunds.Value(), p.Proposer)
	case *domain.MetadataPayload:
		fields = fmt.Sprintf("%q|%q|%q|%q|%d",
			p.Name,
			p.Symbol,
			p.Description,
			p.IconURL,
			p.MaxSupply,
		)
	}

	kind := payload.Kind()
	data := fmt.Sprintf("%s|%s|%s", kind, proposer, fields)

	hash := sha256.Sum256([]byte(data))
	return string(kind) + ":" + hex.EncodeToString(hash[:])
}
