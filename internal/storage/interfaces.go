package storage

import (
	"context"

	"coin-guardian/internal/domain"
)

// LedgerStore provides access to coin balances and total supply.
// Implementations apply each call atomically.
type LedgerStore interface {
	// Balance returns the balance of owner. Unknown owners have balance 0.
	Balance(ctx context.Context, owner domain.Address) (uint64, error)

	// TotalSupply returns the outstanding supply in base units.
	TotalSupply(ctx context.Context) (uint64, error)

	// Mint credits recipient and increases total supply by amount.
	// Returns ErrInvalidInput if supply would overflow.
	Mint(ctx context.Context, recipient domain.Address, amount uint64) error

	// Burn decreases total supply by amount. Returns ErrInvalidInput if
	// amount exceeds the supply.
	Burn(ctx context.Context, amount uint64) error

	// Withdraw debits owner by amount. Returns ErrInsufficientBalance if
	// the balance is lower than amount.
	Withdraw(ctx context.Context, owner domain.Address, amount uint64) error

	// Deposit credits owner by amount without changing total supply.
	Deposit(ctx context.Context, owner domain.Address, amount uint64) error
}

// MetadataStore provides access to the coin_metadata record.
type MetadataStore interface {
	// Get returns the current metadata. Returns ErrNotFound if never written.
	Get(ctx context.Context) (*domain.CoinMetadata, error)

	// Put replaces the metadata record in a single write.
	Put(ctx context.Context, m *domain.CoinMetadata) error
}

// PolicyStore provides access to the supply_policy record.
type PolicyStore interface {
	// GetMaxSupply returns the configured cap. Returns ErrNotFound if never written.
	GetMaxSupply(ctx context.Context) (uint64, error)

	// SetMaxSupply stores a new cap.
	SetMaxSupply(ctx context.Context, maxSupply uint64) error
}

// ProposalStore provides access to proposals and proposal_votes storage.
type ProposalStore interface {
	// Insert adds a new proposal and assigns its ID.
	Insert(ctx context.Context, p *domain.Proposal) (domain.ProposalID, error)

	// GetByID retrieves a proposal. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id domain.ProposalID) (*domain.Proposal, error)

	// GetByStatus retrieves all proposals in a status, ordered by ID ASC.
	GetByStatus(ctx context.Context, status domain.ProposalStatus) ([]*domain.Proposal, error)

	// Transition moves a proposal from one status to the next.
	// Returns ErrConflict if the stored status is not from.
	Transition(ctx context.Context, id domain.ProposalID, from, to domain.ProposalStatus) error

	// DetachPayload marks the payload as extracted and drops it.
	// Returns ErrConflict if it was already extracted.
	DetachPayload(ctx context.Context, id domain.ProposalID) error

	// InsertVote records a ballot. Returns ErrDuplicateKey if the voter
	// already voted on the proposal.
	InsertVote(ctx context.Context, v *domain.Vote) error

	// GetVotes retrieves all ballots for a proposal, ordered by cast time ASC.
	GetVotes(ctx context.Context, id domain.ProposalID) ([]*domain.Vote, error)
}

// EventStore provides access to the append-only guardian_events log.
type EventStore interface {
	// Insert appends an event. Returns ErrDuplicateKey if event_id exists.
	Insert(ctx context.Context, e *domain.Event) error

	// GetByProposalID retrieves events for a proposal, ordered by occurred_at ASC.
	GetByProposalID(ctx context.Context, id domain.ProposalID) ([]*domain.Event, error)

	// GetByTimeRange retrieves events within [start, end] (inclusive, ms).
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Event, error)
}
