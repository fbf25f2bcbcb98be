package api

import (
	"errors"
	"net/http"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/gateway"
	"coin-guardian/internal/governance"
	"coin-guardian/internal/governance/multisig"
	"coin-guardian/internal/storage"
)

// errBadRequest marks malformed input.
var errBadRequest = errors.New("bad request")

// classify maps an error to an HTTP status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, domain.ErrInvalidAddress):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, gateway.ErrZeroAmount):
		return http.StatusBadRequest, "zero_amount"
	case errors.Is(err, gateway.ErrScopeMismatch):
		return http.StatusForbidden, "scope_mismatch"
	case errors.Is(err, gateway.ErrNotParticipant), errors.Is(err, multisig.ErrNotParticipant):
		return http.StatusForbidden, "not_participant"
	case errors.Is(err, governance.ErrProposalNotFound), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, gateway.ErrVoteNotFinalized):
		return http.StatusConflict, "vote_not_finalized"
	case errors.Is(err, gateway.ErrProposalCompleted):
		return http.StatusConflict, "proposal_completed"
	case errors.Is(err, gateway.ErrKindMismatch):
		return http.StatusConflict, "kind_mismatch"
	case errors.Is(err, multisig.ErrAlreadyVoted):
		return http.StatusConflict, "already_voted"
	case errors.Is(err, multisig.ErrVotingClosed):
		return http.StatusConflict, "voting_closed"
	case errors.Is(err, gateway.ErrSupplyCapExceeded):
		return http.StatusUnprocessableEntity, "supply_cap_exceeded"
	case errors.Is(err, gateway.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity, "insufficient_balance"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
