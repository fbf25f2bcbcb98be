// Package gateway implements the two-phase propose/execute protocol for
// mint, burn and metadata updates. A proposal only reaches the treasury cap
// after the bound governance instance has approved it, and every mint is
// re-checked against the supply cap at the moment it is applied.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/events"
	"coin-guardian/internal/governance"
	"coin-guardian/internal/guard"
	"coin-guardian/internal/ledger"
	"coin-guardian/internal/observability"
	"coin-guardian/internal/supply"
)

const tracerName = "coin-guardian/internal/gateway"

// Gateway runs proposals through governance. Calls are serialized: each
// one completes before the next observes any state.
type Gateway struct {
	mu      sync.Mutex
	ledger  *ledger.Ledger
	emitter *events.Emitter
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithEmitter sets the event emitter.
func WithEmitter(e *events.Emitter) Option {
	return func(g *Gateway) { g.emitter = e }
}

// WithTracer sets the tracer used for per-operation spans.
func WithTracer(t trace.Tracer) Option {
	return func(g *Gateway) {
		if t != nil {
			g.tracer = t
		}
	}
}

// New creates a gateway over l. The ledger is used to move burn funds in
// and out of caller custody.
func New(l *ledger.Ledger, opts ...Option) *Gateway {
	g := &Gateway{
		ledger: l,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With("component", "gateway")
	return g
}

// GetMaxSupply returns the current supply cap. Read-only, no checks.
func (g *Gateway) GetMaxSupply(ctx context.Context, policy *supply.Policy) (uint64, error) {
	return policy.MaxSupply(ctx)
}

// begin locks the gateway and opens a span. The returned function must be
// deferred with a pointer to the caller's named error.
func (g *Gateway) begin(ctx context.Context, op string, caller domain.Address) (context.Context, func(*error)) {
	g.mu.Lock()
	start := g.now()

	ctx, span := g.tracer.Start(ctx, "gateway."+op,
		trace.WithAttributes(
			attribute.String("operation", op),
			attribute.String("caller", caller.String()),
		),
	)

	return ctx, func(errp *error) {
		defer g.mu.Unlock()
		defer span.End()

		observability.RecordOperationLatency(op, g.now().Sub(start).Seconds())
		if err := *errp; err != nil {
			reason := rejectionReason(err)
			observability.RecordRejection(reason)
			span.RecordError(err)
			span.SetStatus(codes.Error, reason)
			g.logger.Info("operation refused", "operation", op, "caller", caller.String(), "reason", reason, "error", err)
		}
	}
}

// authorize runs the permission guards every operation starts with.
func authorize(ctx context.Context, authority *Authority, gov governance.Module, caller domain.Address) error {
	if authority == nil || gov == nil {
		return fmt.Errorf("%w: missing authority or governance", ErrScopeMismatch)
	}
	if err := guard.CheckScope(gov, authority); err != nil {
		return err
	}
	return guard.CheckParticipant(ctx, gov, caller)
}

// awaitDecision fails unless the proposal resolved in the requested
// direction and has not been completed yet.
func awaitDecision(ctx context.Context, gov governance.Module, id domain.ProposalID, approve bool) error {
	completed, err := gov.IsCompleted(ctx, id)
	if err != nil {
		return fmt.Errorf("proposal %d status: %w", id, err)
	}
	if completed {
		return fmt.Errorf("%w: proposal %d", ErrProposalCompleted, id)
	}

	var decided bool
	if approve {
		decided, err = gov.IsApproved(ctx, id)
	} else {
		decided, err = gov.IsRejected(ctx, id)
	}
	if err != nil {
		return fmt.Errorf("proposal %d decision: %w", id, err)
	}
	if !decided {
		return fmt.Errorf("%w: proposal %d (approve=%t)", ErrVoteNotFinalized, id, approve)
	}
	return nil
}

// borrowPayload fetches a read-only view of the payload and checks that it
// belongs to the operation being executed.
func borrowPayload[P domain.Payload](ctx context.Context, gov governance.Module, id domain.ProposalID) (P, error) {
	var zero P
	payload, err := gov.BorrowPayload(ctx, id)
	if err != nil {
		return zero, fmt.Errorf("borrow payload %d: %w", id, err)
	}
	typed, ok := payload.(P)
	if !ok {
		return zero, fmt.Errorf("%w: proposal %d", ErrKindMismatch, id)
	}
	return typed, nil
}

func (g *Gateway) submit(ctx context.Context, gov governance.Module, caller domain.Address, description string, payload domain.Payload) (domain.ProposalID, error) {
	id, err := gov.Create(ctx, caller, description, payload)
	if err != nil {
		return 0, fmt.Errorf("submit %s proposal: %w", payload.Kind(), err)
	}

	observability.RecordProposalSubmitted(payload.Kind().String())
	g.emitter.ProposalSubmitted(ctx, caller, id, payload.Kind())
	g.logger.Info("proposal submitted",
		"proposal_id", id,
		"kind", payload.Kind(),
		"proposer", caller.String(),
		"description", description,
	)
	return id, nil
}

func (g *Gateway) complete(ctx context.Context, gov governance.Module, caller domain.Address, id domain.ProposalID, kind domain.OperationKind, approve bool) error {
	if err := gov.MarkComplete(ctx, id); err != nil {
		return fmt.Errorf("complete proposal %d: %w", id, err)
	}

	outcome := "rejected"
	if approve {
		outcome = "approved"
	}
	observability.RecordExecution(kind.String(), outcome)
	g.emitter.ProposalResolved(ctx, caller, id, kind, approve)
	g.logger.Info("proposal executed",
		"proposal_id", id,
		"kind", kind,
		"outcome", outcome,
		"executor", caller.String(),
	)
	return nil
}

// refreshSupplyGauges publishes the current supply figures. Failures only
// leave the gauges stale.
func (g *Gateway) refreshSupplyGauges(ctx context.Context, authority *Authority, policy *supply.Policy) {
	total, err := authority.treasury.TotalSupply(ctx)
	if err != nil {
		g.logger.Warn("read total supply for metrics", "error", err)
		return
	}
	maxSupply, err := policy.MaxSupply(ctx)
	if err != nil {
		g.logger.Warn("read max supply for metrics", "error", err)
		return
	}
	observability.UpdateSupply(total, maxSupply)
}
