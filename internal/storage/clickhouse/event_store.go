package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/observability"
	"coin-guardian/internal/storage"
)

// EventStore implements storage.EventStore using ClickHouse.
type EventStore struct {
	conn *Conn
}

// NewEventStore creates a new EventStore.
func NewEventStore(conn *Conn) *EventStore {
	return &EventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

const eventColumns = `event_id, kind, actor, recipient, amount, proposal_id, operation, approved, occurred_at`

// Insert appends an event. Returns ErrDuplicateKey if event_id exists.
// MergeTree does not enforce uniqueness, so existence is checked first.
func (s *EventStore) Insert(ctx context.Context, e *domain.Event) (err error) {
	start := time.Now()
	defer func() {
		queryErr := err
		if errors.Is(queryErr, storage.ErrDuplicateKey) || errors.Is(queryErr, storage.ErrInvalidInput) {
			queryErr = nil
		}
		observability.RecordDBQuery("clickhouse", "event_insert", time.Since(start).Seconds(), queryErr)
	}()

	if e == nil || e.EventID == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, e.EventID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO guardian_events (`+eventColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	var recipient *string
	if e.Recipient != nil {
		r := e.Recipient.String()
		recipient = &r
	}

	var approved *uint8
	if e.Approved != nil {
		v := uint8(0)
		if *e.Approved {
			v = 1
		}
		approved = &v
	}

	err = batch.Append(
		e.EventID, string(e.Kind), e.Actor.String(), recipient,
		e.Amount, uint64(e.ProposalID), string(e.Operation), approved,
		uint64(e.OccurredAt),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByProposalID retrieves events for a proposal, ordered by occurred_at ASC.
func (s *EventStore) GetByProposalID(ctx context.Context, id domain.ProposalID) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM guardian_events FINAL
		WHERE proposal_id = ?
		ORDER BY occurred_at ASC, event_id ASC
	`

	rows, err := s.conn.Query(ctx, query, uint64(id))
	if err != nil {
		return nil, fmt.Errorf("query by proposal id: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetByTimeRange retrieves events within [start, end] (inclusive).
func (s *EventStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM guardian_events FINAL
		WHERE occurred_at >= ? AND occurred_at <= ?
		ORDER BY occurred_at ASC, event_id ASC
	`

	rows, err := s.conn.Query(ctx, query, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// exists checks if an event with the given ID exists.
func (s *EventStore) exists(ctx context.Context, eventID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `SELECT count() FROM guardian_events WHERE event_id = ?`, eventID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanEvents(rows chRows) ([]*domain.Event, error) {
	var events []*domain.Event

	for rows.Next() {
		var (
			e                      domain.Event
			kind, actor, operation string
			recipient              *string
			approved               *uint8
			proposalID, occurredAt uint64
		)

		err := rows.Scan(
			&e.EventID, &kind, &actor, &recipient,
			&e.Amount, &proposalID, &operation, &approved,
			&occurredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}

		e.Kind = domain.EventKind(kind)
		e.Operation = domain.OperationKind(operation)
		e.ProposalID = domain.ProposalID(proposalID)
		e.OccurredAt = int64(occurredAt)

		if e.Actor, err = domain.ParseAddress(actor); err != nil {
			return nil, fmt.Errorf("scan event actor: %w", err)
		}
		if recipient != nil {
			r, err := domain.ParseAddress(*recipient)
			if err != nil {
				return nil, fmt.Errorf("scan event recipient: %w", err)
			}
			e.Recipient = &r
		}
		if approved != nil {
			v := *approved == 1
			e.Approved = &v
		}

		events = append(events, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}

	return events, nil
}
