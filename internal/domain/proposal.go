package domain

// ProposalID identifies a proposal within one governance instance.
type ProposalID uint64

// ProposalStatus is the lifecycle state of a proposal.
type ProposalStatus string

const (
	ProposalPending   ProposalStatus = "PENDING"
	ProposalApproved  ProposalStatus = "APPROVED"
	ProposalRejected  ProposalStatus = "REJECTED"
	ProposalCompleted ProposalStatus = "COMPLETED"
)

// String returns the string representation of ProposalStatus.
func (s ProposalStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known value.
func (s ProposalStatus) IsValid() bool {
	switch s {
	case ProposalPending, ProposalApproved, ProposalRejected, ProposalCompleted:
		return true
	default:
		return false
	}
}

// IsDecided reports whether the vote has resolved (approved or rejected).
func (s ProposalStatus) IsDecided() bool {
	return s == ProposalApproved || s == ProposalRejected
}

// CanTransitionTo reports whether moving from s to next is a legal,
// forward-only step: Pending -> Approved|Rejected -> Completed.
func (s ProposalStatus) CanTransitionTo(next ProposalStatus) bool {
	switch s {
	case ProposalPending:
		return next == ProposalApproved || next == ProposalRejected
	case ProposalApproved, ProposalRejected:
		return next == ProposalCompleted
	default:
		return false
	}
}

// Proposal is a unit of governance work.
// Corresponds to proposals table in PostgreSQL.
type Proposal struct {
	ID               ProposalID
	Kind             OperationKind
	Description      string
	Payload          Payload // nil once extracted
	PayloadExtracted bool
	Status           ProposalStatus
	Proposer         Address
	CreatedAt        int64 // ms
	UpdatedAt        int64 // ms
}

// Vote is one participant's ballot on a proposal.
// Corresponds to proposal_votes table in PostgreSQL.
type Vote struct {
	ProposalID ProposalID
	Voter      Address
	Approve    bool
	CastAt     int64 // ms
}
