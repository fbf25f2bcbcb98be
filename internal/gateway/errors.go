package gateway

import (
	"errors"

	"coin-guardian/internal/governance"
	"coin-guardian/internal/guard"
	"coin-guardian/internal/ledger"
	"coin-guardian/internal/supply"
)

var (
	// ErrScopeMismatch is returned when the governance instance is not the
	// one the authority is bound to.
	ErrScopeMismatch = guard.ErrScopeMismatch

	// ErrNotParticipant is returned when the caller is not a voter.
	ErrNotParticipant = guard.ErrNotParticipant

	// ErrSupplyCapExceeded is returned when a mint would pass the cap.
	ErrSupplyCapExceeded = supply.ErrSupplyCapExceeded

	// ErrProposalCompleted is returned when executing a finished proposal.
	ErrProposalCompleted = governance.ErrProposalCompleted

	// ErrInsufficientBalance is returned when a burn locks more than the
	// proposer holds.
	ErrInsufficientBalance = ledger.ErrInsufficientBalance

	// ErrCapAlreadyBound is returned when a treasury cap is bound twice.
	ErrCapAlreadyBound = ledger.ErrCapAlreadyBound

	// ErrVoteNotFinalized is returned when executing before the vote has
	// resolved in the requested direction. The caller may retry later.
	ErrVoteNotFinalized = errors.New("vote not finalized")

	// ErrKindMismatch is returned when a proposal is executed through the
	// entry point of a different operation.
	ErrKindMismatch = errors.New("proposal operation kind mismatch")

	// ErrZeroAmount is returned when minting or burning nothing.
	ErrZeroAmount = errors.New("amount must be positive")
)

// rejectionReason maps a refused call to a metric label.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrScopeMismatch):
		return "scope_mismatch"
	case errors.Is(err, ErrNotParticipant):
		return "not_participant"
	case errors.Is(err, ErrSupplyCapExceeded):
		return "supply_cap_exceeded"
	case errors.Is(err, ErrVoteNotFinalized):
		return "vote_not_finalized"
	case errors.Is(err, ErrProposalCompleted):
		return "proposal_completed"
	case errors.Is(err, ErrKindMismatch):
		return "kind_mismatch"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrZeroAmount):
		return "zero_amount"
	case errors.Is(err, governance.ErrProposalNotFound):
		return "proposal_not_found"
	default:
		return "error"
	}
}
