package gateway

import (
	"context"
	"errors"
	"fmt"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/governance"
	"coin-guardian/internal/idhash"
	"coin-guardian/internal/supply"
)

// ProposeBurn moves amount out of the caller's balance into a burn
// proposal. The funds stay locked in the proposal until it is executed.
// If the proposal cannot be submitted the funds are returned.
func (g *Gateway) ProposeBurn(
	ctx context.Context,
	authority *Authority,
	gov governance.Module,
	caller domain.Address,
	amount uint64,
) (_ domain.ProposalID, err error) {
	ctx, end := g.begin(ctx, "ProposeBurn", caller)
	defer end(&err)

	if err := authorize(ctx, authority, gov, caller); err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, ErrZeroAmount
	}

	locked, err := g.ledger.Withdraw(ctx, caller, amount)
	if err != nil {
		return 0, err
	}
	payload := &domain.BurnPayload{LockedFunds: locked, Proposer: caller}

	id, err := g.submit(ctx, gov, caller, idhash.ComputeProposalDescription(caller, payload), payload)
	if err != nil {
		if refundErr := g.ledger.Deposit(ctx, caller, &payload.LockedFunds); refundErr != nil {
			g.logger.Error("refund after failed burn proposal",
				"proposer", caller.String(),
				"amount", amount,
				"error", refundErr,
			)
			return 0, fmt.Errorf("%w (refund failed: %v)", err, refundErr)
		}
		return 0, err
	}
	return id, nil
}

// ExecuteBurn destroys the locked funds of an approved proposal, or
// returns them to the original proposer of a rejected one.
//
// The funds are settled from the borrowed payload first and the payload is
// extracted only afterwards, so a failed burn or refund leaves the proposal
// untouched and executable again. An extracted payload marks the funds as
// settled: a later call only completes the proposal.
func (g *Gateway) ExecuteBurn(
	ctx context.Context,
	authority *Authority,
	gov governance.Module,
	policy *supply.Policy,
	caller domain.Address,
	id domain.ProposalID,
	approve bool,
) (_ bool, err error) {
	ctx, end := g.begin(ctx, "ExecuteBurn", caller)
	defer end(&err)

	if err := authorize(ctx, authority, gov, caller); err != nil {
		return false, err
	}
	if err := awaitDecision(ctx, gov, id, approve); err != nil {
		return false, err
	}
	borrowed, err := borrowPayload[*domain.BurnPayload](ctx, gov, id)
	if errors.Is(err, governance.ErrPayloadExtracted) {
		g.logger.Warn("completing burn proposal settled earlier", "proposal_id", id, "approve", approve)
		if err := g.complete(ctx, gov, caller, id, domain.OperationBurn, approve); err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}

	amount := borrowed.LockedFunds.Value()
	proposer := borrowed.Proposer
	funds := borrowed.LockedFunds
	if err := g.settleBurn(ctx, authority, proposer, &funds, approve); err != nil {
		return false, err
	}

	extracted, err := gov.ExtractPayload(ctx, id)
	if err != nil {
		if undoErr := g.unsettleBurn(ctx, authority, proposer, amount, approve); undoErr != nil {
			return false, errors.Join(fmt.Errorf("extract payload %d: %w", id, err), undoErr)
		}
		return false, fmt.Errorf("extract payload %d: %w", id, err)
	}
	if p, ok := extracted.(*domain.BurnPayload); ok {
		p.LockedFunds.Take()
	}

	if err := g.complete(ctx, gov, caller, id, domain.OperationBurn, approve); err != nil {
		return false, err
	}
	if approve {
		g.emitter.CoinBurned(ctx, caller, amount, id)
		g.refreshSupplyGauges(ctx, authority, policy)
	}
	return true, nil
}

// settleBurn burns the funds, or returns them to the proposer.
func (g *Gateway) settleBurn(ctx context.Context, authority *Authority, proposer domain.Address, funds *domain.Coin, approve bool) error {
	if approve {
		return authority.treasury.Burn(ctx, funds)
	}
	return g.ledger.Deposit(ctx, proposer, funds)
}

// unsettleBurn reverses settleBurn while the funds are still locked in the
// proposal: a burn is re-issued and a refund is withdrawn again.
func (g *Gateway) unsettleBurn(ctx context.Context, authority *Authority, proposer domain.Address, amount uint64, approve bool) error {
	var err error
	if approve {
		if err = authority.treasury.Mint(ctx, proposer, amount); err == nil {
			_, err = g.ledger.Withdraw(ctx, proposer, amount)
		}
	} else {
		_, err = g.ledger.Withdraw(ctx, proposer, amount)
	}
	if err != nil {
		g.logger.Error("reverse burn settlement",
			"proposer", proposer.String(),
			"amount", amount,
			"approve", approve,
			"error", err,
		)
		return fmt.Errorf("reverse burn settlement: %w", err)
	}
	return nil
}
