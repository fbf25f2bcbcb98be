package domain

import (
	"encoding/json"
	"fmt"
)

// Payload is the typed request carried by a proposal.
type Payload interface {
	Kind() OperationKind
}

// MintPayload requests issuance of new supply to Recipient.
type MintPayload struct {
	Amount    uint64  `json:"amount"`
	Recipient Address `json:"recipient"`
}

// Kind implements Payload.
func (p *MintPayload) Kind() OperationKind { return OperationMint }

// BurnPayload holds funds locked out of Proposer's custody until the
// proposal resolves. Rejection returns them to Proposer.
type BurnPayload struct {
	LockedFunds Coin    `json:"lockedFunds"`
	Proposer    Address `json:"proposer"`
}

// Kind implements Payload.
func (p *BurnPayload) Kind() OperationKind { return OperationBurn }

// MetadataPayload requests a field-by-field metadata patch.
// Empty strings leave fields unchanged. A zero MaxSupply keeps the cap
// in force at execution.
type MetadataPayload struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl"`
	MaxSupply   uint64 `json:"maxSupply"`
}

// Kind implements Payload.
func (p *MetadataPayload) Kind() OperationKind { return OperationMetadataUpdate }

// EncodePayload serializes a payload for storage.
func EncodePayload(p Payload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("encode payload: nil payload")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", p.Kind(), err)
	}
	return data, nil
}

// DecodePayload restores a payload serialized by EncodePayload.
func DecodePayload(kind OperationKind, data []byte) (Payload, error) {
	var p Payload
	switch kind {
	case OperationMint:
		p = &MintPayload{}
	case OperationBurn:
		p = &BurnPayload{}
	case OperationMetadataUpdate:
		p = &MetadataPayload{}
	default:
		return nil, fmt.Errorf("decode payload: unknown operation kind %q", kind)
	}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", kind, err)
	}
	return p, nil
}
