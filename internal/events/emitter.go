// Package events publishes informational notifications about minted and
// burned coins and about proposal lifecycle. Delivery failures are logged
// and never propagate to the operation that produced the event.
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/observability"
)

// Sink receives emitted events.
type Sink interface {
	Name() string
	Publish(ctx context.Context, e *domain.Event) error
}

// Emitter fans events out to its sinks.
type Emitter struct {
	sinks  []Sink
	logger *slog.Logger
	now    func() time.Time
}

// NewEmitter creates an emitter delivering to sinks in order.
func NewEmitter(logger *slog.Logger, sinks ...Sink) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		sinks:  sinks,
		logger: logger.With("component", "events"),
		now:    time.Now,
	}
}

// CoinMinted records issuance of amount to recipient.
func (e *Emitter) CoinMinted(ctx context.Context, actor, recipient domain.Address, amount uint64, id domain.ProposalID) {
	e.emit(ctx, &domain.Event{
		Kind:       domain.EventCoinMinted,
		Actor:      actor,
		Recipient:  &recipient,
		Amount:     amount,
		ProposalID: id,
		Operation:  domain.OperationMint,
	})
}

// CoinBurned records destruction of amount.
func (e *Emitter) CoinBurned(ctx context.Context, actor domain.Address, amount uint64, id domain.ProposalID) {
	e.emit(ctx, &domain.Event{
		Kind:       domain.EventCoinBurned,
		Actor:      actor,
		Amount:     amount,
		ProposalID: id,
		Operation:  domain.OperationBurn,
	})
}

// ProposalSubmitted records a new proposal.
func (e *Emitter) ProposalSubmitted(ctx context.Context, proposer domain.Address, id domain.ProposalID, kind domain.OperationKind) {
	e.emit(ctx, &domain.Event{
		Kind:       domain.EventProposalSubmitted,
		Actor:      proposer,
		ProposalID: id,
		Operation:  kind,
	})
}

// ProposalResolved records an executed proposal and its outcome.
func (e *Emitter) ProposalResolved(ctx context.Context, executor domain.Address, id domain.ProposalID, kind domain.OperationKind, approved bool) {
	e.emit(ctx, &domain.Event{
		Kind:       domain.EventProposalResolved,
		Actor:      executor,
		ProposalID: id,
		Operation:  kind,
		Approved:   &approved,
	})
}

func (e *Emitter) emit(ctx context.Context, ev *domain.Event) {
	if e == nil {
		return
	}
	ev.EventID = uuid.NewString()
	ev.OccurredAt = e.now().UnixMilli()

	observability.RecordEventPublished(ev.Kind.String())

	for _, sink := range e.sinks {
		if err := sink.Publish(ctx, ev); err != nil {
			observability.RecordSinkError(sink.Name())
			e.logger.Warn("event delivery failed",
				"sink", sink.Name(),
				"kind", ev.Kind,
				"event_id", ev.EventID,
				"error", err,
			)
		}
	}
}
