// Package multisig is a reference M-of-N governance instance used by the
// guardian service. It stores proposals and ballots in a storage.ProposalStore
// and resolves a proposal as soon as the outcome can no longer change.
package multisig

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/governance"
	"coin-guardian/internal/storage"
)

var (
	// ErrNotParticipant is returned when a non-member votes.
	ErrNotParticipant = errors.New("voter is not a participant")

	// ErrAlreadyVoted is returned on a second ballot from the same voter.
	ErrAlreadyVoted = errors.New("voter already voted")

	// ErrVotingClosed is returned when voting on a decided proposal.
	ErrVotingClosed = errors.New("voting closed")
)

// Config describes one multisig instance.
type Config struct {
	ID           domain.Address
	Participants []domain.Address
	Threshold    int // approvals required
}

// Validate checks the roster and threshold.
func (c Config) Validate() error {
	if c.ID.IsZero() {
		return errors.New("multisig id is required")
	}
	if len(c.Participants) == 0 {
		return errors.New("multisig needs at least one participant")
	}
	seen := make(map[domain.Address]struct{}, len(c.Participants))
	for _, p := range c.Participants {
		if _, dup := seen[p]; dup {
			return fmt.Errorf("duplicate participant %s", p)
		}
		seen[p] = struct{}{}
	}
	if c.Threshold < 1 || c.Threshold > len(c.Participants) {
		return fmt.Errorf("threshold %d out of range [1, %d]", c.Threshold, len(c.Participants))
	}
	return nil
}

// Module implements governance.Module with threshold voting.
type Module struct {
	id           domain.Address
	participants map[domain.Address]struct{}
	threshold    int
	store        storage.ProposalStore
	logger       *slog.Logger
	now          func() time.Time
}

// New creates a multisig instance backed by store.
func New(cfg Config, store storage.ProposalStore, logger *slog.Logger) (*Module, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid multisig config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	participants := make(map[domain.Address]struct{}, len(cfg.Participants))
	for _, p := range cfg.Participants {
		participants[p] = struct{}{}
	}

	return &Module{
		id:           cfg.ID,
		participants: participants,
		threshold:    cfg.Threshold,
		store:        store,
		logger:       logger.With("component", "multisig", "governance_id", cfg.ID.String()),
		now:          time.Now,
	}, nil
}

// Threshold returns the number of approvals required.
func (m *Module) Threshold() int {
	return m.threshold
}

// ID implements governance.Module.
func (m *Module) ID() domain.Address {
	return m.id
}

// IsParticipant implements governance.Module.
func (m *Module) IsParticipant(_ context.Context, addr domain.Address) (bool, error) {
	_, ok := m.participants[addr]
	return ok, nil
}

// Create implements governance.Module.
func (m *Module) Create(ctx context.Context, proposer domain.Address, description string, payload domain.Payload) (domain.ProposalID, error) {
	if payload == nil {
		return 0, errors.New("create proposal: nil payload")
	}

	now := m.now().UnixMilli()
	id, err := m.store.Insert(ctx, &domain.Proposal{
		Kind:        payload.Kind(),
		Description: description,
		Payload:     payload,
		Status:      domain.ProposalPending,
		Proposer:    proposer,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return 0, fmt.Errorf("create proposal: %w", err)
	}

	m.logger.Debug("proposal created", "proposal_id", id, "kind", payload.Kind(), "proposer", proposer.String())
	return id, nil
}

// Get returns a proposal.
func (m *Module) Get(ctx context.Context, id domain.ProposalID) (*domain.Proposal, error) {
	p, err := m.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, governance.ErrProposalNotFound
		}
		return nil, fmt.Errorf("get proposal %d: %w", id, err)
	}
	return p, nil
}

// List returns the proposals in status, ordered by ID. An empty status
// lists every proposal.
func (m *Module) List(ctx context.Context, status domain.ProposalStatus) ([]*domain.Proposal, error) {
	statuses := []domain.ProposalStatus{status}
	if status == "" {
		statuses = []domain.ProposalStatus{
			domain.ProposalPending,
			domain.ProposalApproved,
			domain.ProposalRejected,
			domain.ProposalCompleted,
		}
	}

	var out []*domain.Proposal
	for _, st := range statuses {
		ps, err := m.store.GetByStatus(ctx, st)
		if err != nil {
			return nil, fmt.Errorf("list %s proposals: %w", st, err)
		}
		out = append(out, ps...)
	}
	slices.SortFunc(out, func(a, b *domain.Proposal) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Votes returns the ballots cast on a proposal.
func (m *Module) Votes(ctx context.Context, id domain.ProposalID) ([]*domain.Vote, error) {
	if _, err := m.Get(ctx, id); err != nil {
		return nil, err
	}
	votes, err := m.store.GetVotes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get votes %d: %w", id, err)
	}
	return votes, nil
}

// Vote records a ballot and resolves the proposal once approvals reach the
// threshold, or once rejections make reaching it impossible. Returns the
// proposal status after the ballot.
func (m *Module) Vote(ctx context.Context, id domain.ProposalID, voter domain.Address, approve bool) (domain.ProposalStatus, error) {
	if _, ok := m.participants[voter]; !ok {
		return "", fmt.Errorf("%w: %s", ErrNotParticipant, voter)
	}

	p, err := m.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if p.Status != domain.ProposalPending {
		return p.Status, fmt.Errorf("%w: proposal %d is %s", ErrVotingClosed, id, p.Status)
	}

	err = m.store.InsertVote(ctx, &domain.Vote{
		ProposalID: id,
		Voter:      voter,
		Approve:    approve,
		CastAt:     m.now().UnixMilli(),
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return p.Status, fmt.Errorf("%w: %s on proposal %d", ErrAlreadyVoted, voter, id)
		}
		return p.Status, fmt.Errorf("record vote: %w", err)
	}

	votes, err := m.store.GetVotes(ctx, id)
	if err != nil {
		return p.Status, fmt.Errorf("tally votes: %w", err)
	}

	next := m.tally(votes)
	if next == domain.ProposalPending {
		return next, nil
	}

	if err := m.store.Transition(ctx, id, domain.ProposalPending, next); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			// Another ballot resolved it first.
			current, getErr := m.Get(ctx, id)
			if getErr != nil {
				return "", getErr
			}
			return current.Status, nil
		}
		return p.Status, fmt.Errorf("resolve proposal %d: %w", id, err)
	}

	m.logger.Info("proposal resolved", "proposal_id", id, "status", next)
	return next, nil
}

// tally counts ballots from current participants only.
func (m *Module) tally(votes []*domain.Vote) domain.ProposalStatus {
	var approvals, rejections int
	for _, v := range votes {
		if _, ok := m.participants[v.Voter]; !ok {
			continue
		}
		if v.Approve {
			approvals++
		} else {
			rejections++
		}
	}

	switch {
	case approvals >= m.threshold:
		return domain.ProposalApproved
	case rejections > len(m.participants)-m.threshold:
		return domain.ProposalRejected
	default:
		return domain.ProposalPending
	}
}

// IsApproved implements governance.Module.
func (m *Module) IsApproved(ctx context.Context, id domain.ProposalID) (bool, error) {
	p, err := m.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return p.Status == domain.ProposalApproved, nil
}

// IsRejected implements governance.Module.
func (m *Module) IsRejected(ctx context.Context, id domain.ProposalID) (bool, error) {
	p, err := m.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return p.Status == domain.ProposalRejected, nil
}

// IsCompleted implements governance.Module.
func (m *Module) IsCompleted(ctx context.Context, id domain.ProposalID) (bool, error) {
	p, err := m.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return p.Status == domain.ProposalCompleted, nil
}

// BorrowPayload implements governance.Module.
func (m *Module) BorrowPayload(ctx context.Context, id domain.ProposalID) (domain.Payload, error) {
	p, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == domain.ProposalCompleted {
		return nil, governance.ErrProposalCompleted
	}
	if p.PayloadExtracted {
		return nil, governance.ErrPayloadExtracted
	}
	return p.Payload, nil
}

// ExtractPayload implements governance.Module.
func (m *Module) ExtractPayload(ctx context.Context, id domain.ProposalID) (domain.Payload, error) {
	payload, err := m.BorrowPayload(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.store.DetachPayload(ctx, id); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, governance.ErrPayloadExtracted
		}
		return nil, fmt.Errorf("extract payload %d: %w", id, err)
	}
	return payload, nil
}

// MarkComplete implements governance.Module.
func (m *Module) MarkComplete(ctx context.Context, id domain.ProposalID) error {
	p, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	switch p.Status {
	case domain.ProposalCompleted:
		return governance.ErrProposalCompleted
	case domain.ProposalPending:
		return governance.ErrNotDecided
	}

	if err := m.store.Transition(ctx, id, p.Status, domain.ProposalCompleted); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return governance.ErrProposalCompleted
		}
		return fmt.Errorf("complete proposal %d: %w", id, err)
	}
	return nil
}

var _ governance.Module = (*Module)(nil)
