package memory

import (
	"context"
	"sort"
	"sync"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/storage"
)

// ProposalStore is an in-memory implementation of storage.ProposalStore.
type ProposalStore struct {
	mu        sync.RWMutex
	nextID    domain.ProposalID
	proposals map[domain.ProposalID]*domain.Proposal
	votes     map[domain.ProposalID][]*domain.Vote
}

// NewProposalStore creates a new in-memory proposal store.
func NewProposalStore() *ProposalStore {
	return &ProposalStore{
		nextID:    1,
		proposals: make(map[domain.ProposalID]*domain.Proposal),
		votes:     make(map[domain.ProposalID][]*domain.Vote),
	}
}

// Insert adds a new proposal and assigns its ID.
func (s *ProposalStore) Insert(_ context.Context, p *domain.Proposal) (domain.ProposalID, error) {
	if p == nil || !p.Kind.IsValid() || !p.Status.IsValid() || p.Payload == nil {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	stored := copyProposal(p)
	stored.ID = id
	s.proposals[id] = stored
	return id, nil
}

// GetByID retrieves a proposal. Returns ErrNotFound if not exists.
func (s *ProposalStore) GetByID(_ context.Context, id domain.ProposalID) (*domain.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.proposals[id]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyProposal(p), nil
}

// GetByStatus retrieves all proposals in a status, ordered by ID ASC.
func (s *ProposalStore) GetByStatus(_ context.Context, status domain.ProposalStatus) ([]*domain.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Proposal
	for _, p := range s.proposals {
		if p.Status == status {
			result = append(result, copyProposal(p))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Transition moves a proposal from one status to the next.
func (s *ProposalStore) Transition(_ context.Context, id domain.ProposalID, from, to domain.ProposalStatus) error {
	if !from.CanTransitionTo(to) {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.proposals[id]
	if !exists {
		return storage.ErrNotFound
	}
	if p.Status != from {
		return storage.ErrConflict
	}
	p.Status = to
	return nil
}

// DetachPayload marks the payload as extracted and drops it.
func (s *ProposalStore) DetachPayload(_ context.Context, id domain.ProposalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.proposals[id]
	if !exists {
		return storage.ErrNotFound
	}
	if p.PayloadExtracted {
		return storage.ErrConflict
	}
	p.PayloadExtracted = true
	p.Payload = nil
	return nil
}

// InsertVote records a ballot. Returns ErrDuplicateKey on a second vote.
func (s *ProposalStore) InsertVote(_ context.Context, v *domain.Vote) error {
	if v == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.proposals[v.ProposalID]; !exists {
		return storage.ErrNotFound
	}
	for _, existing := range s.votes[v.ProposalID] {
		if existing.Voter == v.Voter {
			return storage.ErrDuplicateKey
		}
	}

	voteCopy := *v
	s.votes[v.ProposalID] = append(s.votes[v.ProposalID], &voteCopy)
	return nil
}

// GetVotes retrieves all ballots for a proposal in insertion order.
func (s *ProposalStore) GetVotes(_ context.Context, id domain.ProposalID) ([]*domain.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	votes := s.votes[id]
	result := make([]*domain.Vote, len(votes))
	for i, v := range votes {
		voteCopy := *v
		result[i] = &voteCopy
	}
	return result, nil
}

func copyProposal(p *domain.Proposal) *domain.Proposal {
	c := *p
	c.Payload = copyPayload(p.Payload)
	return &c
}

func copyPayload(p domain.Payload) domain.Payload {
	switch v := p.(type) {
	case *domain.MintPayload:
		c := *v
		return &c
	case *domain.BurnPayload:
		c := *v
		return &c
	case *domain.MetadataPayload:
		c := *v
		return &c
	default:
		return p
	}
}

var _ storage.ProposalStore = (*ProposalStore)(nil)
