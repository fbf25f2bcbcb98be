package stub

import (
	"context"
	"sync"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/governance"
)

// Proposal is the stub's record of a submitted proposal.
type Proposal struct {
	Proposer    domain.Address
	Description string
	Payload     domain.Payload
	Decision    domain.ProposalStatus // Pending, Approved or Rejected
	Completed   bool
	Extracted   bool
}

// Module implements governance.Module for testing. Outcomes are set
// directly with Approve and Reject instead of being voted on.
//
// Once completed, the stub keeps reporting the original decision from
// IsApproved and IsRejected, so callers must check IsCompleted themselves.
type Module struct {
	mu           sync.Mutex
	GovID        domain.Address
	Participants map[domain.Address]bool
	Proposals    map[domain.ProposalID]*Proposal
	nextID       domain.ProposalID

	// CreateErr, when set, is returned by Create.
	CreateErr error
}

// NewModule creates a stub governance instance with the given participants.
func NewModule(id domain.Address, participants ...domain.Address) *Module {
	m := &Module{
		GovID:        id,
		Participants: make(map[domain.Address]bool),
		Proposals:    make(map[domain.ProposalID]*Proposal),
		nextID:       1,
	}
	for _, p := range participants {
		m.Participants[p] = true
	}
	return m
}

// Approve resolves a pending proposal as approved.
func (m *Module) Approve(id domain.ProposalID) {
	m.decide(id, domain.ProposalApproved)
}

// Reject resolves a pending proposal as rejected.
func (m *Module) Reject(id domain.ProposalID) {
	m.decide(id, domain.ProposalRejected)
}

func (m *Module) decide(id domain.ProposalID, status domain.ProposalStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Proposals[id]; ok {
		p.Decision = status
	}
}

// Get returns the stub record for id, or nil.
func (m *Module) Get(id domain.ProposalID) *Proposal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Proposals[id]
}

// ID implements governance.Module.
func (m *Module) ID() domain.Address {
	return m.GovID
}

// IsParticipant implements governance.Module.
func (m *Module) IsParticipant(_ context.Context, addr domain.Address) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Participants[addr], nil
}

// Create implements governance.Module.
func (m *Module) Create(_ context.Context, proposer domain.Address, description string, payload domain.Payload) (domain.ProposalID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CreateErr != nil {
		return 0, m.CreateErr
	}

	id := m.nextID
	m.nextID++
	m.Proposals[id] = &Proposal{
		Proposer:    proposer,
		Description: description,
		Payload:     payload,
		Decision:    domain.ProposalPending,
	}
	return id, nil
}

// IsApproved implements governance.Module.
func (m *Module) IsApproved(_ context.Context, id domain.ProposalID) (bool, error) {
	p, err := m.lookup(id)
	if err != nil {
		return false, err
	}
	return p.Decision == domain.ProposalApproved, nil
}

// IsRejected implements governance.Module.
func (m *Module) IsRejected(_ context.Context, id domain.ProposalID) (bool, error) {
	p, err := m.lookup(id)
	if err != nil {
		return false, err
	}
	return p.Decision == domain.ProposalRejected, nil
}

// IsCompleted implements governance.Module.
func (m *Module) IsCompleted(_ context.Context, id domain.ProposalID) (bool, error) {
	p, err := m.lookup(id)
	if err != nil {
		return false, err
	}
	return p.Completed, nil
}

// BorrowPayload implements governance.Module.
func (m *Module) BorrowPayload(_ context.Context, id domain.ProposalID) (domain.Payload, error) {
	p, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	if p.Extracted {
		return nil, governance.ErrPayloadExtracted
	}
	return p.Payload, nil
}

// ExtractPayload implements governance.Module.
func (m *Module) ExtractPayload(_ context.Context, id domain.ProposalID) (domain.Payload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.Proposals[id]
	if !ok {
		return nil, governance.ErrProposalNotFound
	}
	if p.Extracted {
		return nil, governance.ErrPayloadExtracted
	}
	payload := p.Payload
	p.Payload = nil
	p.Extracted = true
	return payload, nil
}

// MarkComplete implements governance.Module.
func (m *Module) MarkComplete(_ context.Context, id domain.ProposalID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.Proposals[id]
	if !ok {
		return governance.ErrProposalNotFound
	}
	if !p.Decision.IsDecided() {
		return governance.ErrNotDecided
	}
	p.Completed = true
	return nil
}

func (m *Module) lookup(id domain.ProposalID) (*Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.Proposals[id]
	if !ok {
		return nil, governance.ErrProposalNotFound
	}
	return p, nil
}

var _ governance.Module = (*Module)(nil)
