package domain

// EventKind identifies an externally observable fact.
type EventKind string

const (
	EventCoinMinted        EventKind = "COIN_MINTED"
	EventCoinBurned        EventKind = "COIN_BURNED"
	EventProposalSubmitted EventKind = "PROPOSAL_SUBMITTED"
	EventProposalResolved  EventKind = "PROPOSAL_RESOLVED"
)

// String returns the string representation of EventKind.
func (k EventKind) String() string {
	return string(k)
}

// Event is an informational notification. Events are never consumed for
// control flow. Corresponds to guardian_events table in ClickHouse.
type Event struct {
	EventID    string        `json:"eventId"`
	Kind       EventKind     `json:"kind"`
	Actor      Address       `json:"actor"`
	Recipient  *Address      `json:"recipient,omitempty"` // mint only
	Amount     uint64        `json:"amount"`
	ProposalID ProposalID    `json:"proposalId"`
	Operation  OperationKind `json:"operation"`
	Approved   *bool         `json:"approved,omitempty"` // resolution only
	OccurredAt int64         `json:"occurredAt"`         // ms
}
