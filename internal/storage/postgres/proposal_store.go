package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/storage"
)

// ProposalStore implements storage.ProposalStore using PostgreSQL.
type ProposalStore struct {
	pool *Pool
}

// NewProposalStore creates a new ProposalStore.
func NewProposalStore(pool *Pool) *ProposalStore {
	return &ProposalStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ProposalStore = (*ProposalStore)(nil)

const proposalColumns = `id, kind, description, payload, payload_extracted, status, proposer, created_at, updated_at`

// Insert adds a new proposal and assigns its ID from the sequence.
func (s *ProposalStore) Insert(ctx context.Context, p *domain.Proposal) (domain.ProposalID, error) {
	if p == nil || !p.Kind.IsValid() || !p.Status.IsValid() || p.Payload == nil {
		return 0, storage.ErrInvalidInput
	}

	payload, err := domain.EncodePayload(p.Payload)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", storage.ErrInvalidInput, err)
	}

	updatedAt := p.UpdatedAt
	if updatedAt == 0 {
		updatedAt = p.CreatedAt
	}

	query := `
		INSERT INTO proposals (kind, description, payload, payload_extracted, status, proposer, created_at, updated_at)
		VALUES ($1, $2, $3, FALSE, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err = s.pool.QueryRow(ctx, query,
		string(p.Kind),
		p.Description,
		payload,
		string(p.Status),
		p.Proposer.String(),
		p.CreatedAt,
		updatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert proposal: %w", err)
	}
	return domain.ProposalID(id), nil
}

// GetByID retrieves a proposal. Returns ErrNotFound if not exists.
func (s *ProposalStore) GetByID(ctx context.Context, id domain.ProposalID) (*domain.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`

	row := s.pool.QueryRow(ctx, query, int64(id))
	p, err := scanProposal(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get proposal by id: %w", err)
	}
	return p, nil
}

// GetByStatus retrieves all proposals in a status, ordered by ID ASC.
func (s *ProposalStore) GetByStatus(ctx context.Context, status domain.ProposalStatus) ([]*domain.Proposal, error) {
	query := `SELECT ` + proposalColumns + ` FROM proposals WHERE status = $1 ORDER BY id ASC`

	rows, err := s.pool.Query(ctx, query, string(status))
	if err != nil {
		return nil, fmt.Errorf("query proposals by status: %w", err)
	}
	defer rows.Close()

	var result []*domain.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proposals: %w", err)
	}
	return result, nil
}

// Transition moves a proposal from one status to the next with a
// compare-and-set on the stored status.
func (s *ProposalStore) Transition(ctx context.Context, id domain.ProposalID, from, to domain.ProposalStatus) error {
	if !from.CanTransitionTo(to) {
		return storage.ErrInvalidInput
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE proposals SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`, int64(id), string(from), string(to), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("transition proposal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.missOrConflict(ctx, id)
	}
	return nil
}

// DetachPayload marks the payload as extracted and drops it.
func (s *ProposalStore) DetachPayload(ctx context.Context, id domain.ProposalID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE proposals SET payload = NULL, payload_extracted = TRUE, updated_at = $2
		WHERE id = $1 AND payload_extracted = FALSE
	`, int64(id), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("detach payload: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.missOrConflict(ctx, id)
	}
	return nil
}

// InsertVote records a ballot. Returns ErrDuplicateKey on a second vote
// and ErrNotFound if the proposal does not exist.
func (s *ProposalStore) InsertVote(ctx context.Context, v *domain.Vote) error {
	if v == nil {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO proposal_votes (proposal_id, voter, approve, cast_at)
		VALUES ($1, $2, $3, $4)
	`, int64(v.ProposalID), v.Voter.String(), v.Approve, v.CastAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		if isForeignKeyError(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

// GetVotes retrieves all ballots for a proposal, ordered by cast time ASC.
func (s *ProposalStore) GetVotes(ctx context.Context, id domain.ProposalID) ([]*domain.Vote, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT proposal_id, voter, approve, cast_at
		FROM proposal_votes
		WHERE proposal_id = $1
		ORDER BY cast_at ASC, voter ASC
	`, int64(id))
	if err != nil {
		return nil, fmt.Errorf("query votes: %w", err)
	}
	defer rows.Close()

	var result []*domain.Vote
	for rows.Next() {
		var (
			v         domain.Vote
			pid       int64
			voterAddr string
		)
		if err := rows.Scan(&pid, &voterAddr, &v.Approve, &v.CastAt); err != nil {
			return nil, fmt.Errorf("scan vote: %w", err)
		}
		voter, err := domain.ParseAddress(voterAddr)
		if err != nil {
			return nil, fmt.Errorf("scan vote voter: %w", err)
		}
		v.ProposalID = domain.ProposalID(pid)
		v.Voter = voter
		result = append(result, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate votes: %w", err)
	}
	return result, nil
}

// missOrConflict distinguishes a missing row from a failed compare-and-set.
func (s *ProposalStore) missOrConflict(ctx context.Context, id domain.ProposalID) error {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM proposals WHERE id = $1)`, int64(id)).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check proposal exists: %w", err)
	}
	if !exists {
		return storage.ErrNotFound
	}
	return storage.ErrConflict
}

// scanProposal scans a single row into Proposal.
func scanProposal(row pgx.Row) (*domain.Proposal, error) {
	var (
		p        domain.Proposal
		id       int64
		kind     string
		status   string
		proposer string
		payload  []byte
	)

	err := row.Scan(
		&id,
		&kind,
		&p.Description,
		&payload,
		&p.PayloadExtracted,
		&status,
		&proposer,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.ID = domain.ProposalID(id)
	p.Kind = domain.OperationKind(kind)
	p.Status = domain.ProposalStatus(status)

	addr, err := domain.ParseAddress(proposer)
	if err != nil {
		return nil, err
	}
	p.Proposer = addr

	if !p.PayloadExtracted && payload != nil {
		p.Payload, err = domain.DecodePayload(p.Kind, payload)
		if err != nil {
			return nil, err
		}
	}

	return &p, nil
}
