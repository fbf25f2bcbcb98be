// Package governance defines the boundary to the multisig collaborator that
// stores proposals, tallies votes, and resolves outcomes.
package governance

import (
	"context"
	"errors"

	"coin-guardian/internal/domain"
)

var (
	// ErrProposalNotFound is returned for an unknown proposal ID.
	ErrProposalNotFound = errors.New("proposal not found")

	// ErrProposalCompleted is returned when a completed proposal is
	// borrowed, extracted, or completed again.
	ErrProposalCompleted = errors.New("proposal already completed")

	// ErrPayloadExtracted is returned when a payload was already moved out.
	ErrPayloadExtracted = errors.New("proposal payload already extracted")

	// ErrNotDecided is returned when completing a proposal that is still pending.
	ErrNotDecided = errors.New("proposal not decided")
)

// Module is a governance instance as seen by the gateway.
type Module interface {
	// ID identifies the governance instance.
	ID() domain.Address

	// IsParticipant reports whether addr is a registered voter.
	IsParticipant(ctx context.Context, addr domain.Address) (bool, error)

	// Create registers a Pending proposal carrying payload and returns its ID.
	Create(ctx context.Context, proposer domain.Address, description string, payload domain.Payload) (domain.ProposalID, error)

	// IsApproved reports whether the vote resolved to approve.
	IsApproved(ctx context.Context, id domain.ProposalID) (bool, error)

	// IsRejected reports whether the vote resolved to reject.
	IsRejected(ctx context.Context, id domain.ProposalID) (bool, error)

	// IsCompleted reports whether the proposal reached its terminal state.
	IsCompleted(ctx context.Context, id domain.ProposalID) (bool, error)

	// BorrowPayload returns a read-only view of the payload.
	BorrowPayload(ctx context.Context, id domain.ProposalID) (domain.Payload, error)

	// ExtractPayload moves the payload out of the proposal. A second
	// extraction fails with ErrPayloadExtracted.
	ExtractPayload(ctx context.Context, id domain.ProposalID) (domain.Payload, error)

	// MarkComplete moves a decided proposal to Completed.
	MarkComplete(ctx context.Context, id domain.ProposalID) error
}
