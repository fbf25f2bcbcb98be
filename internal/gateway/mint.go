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

// ProposeMint submits a proposal to mint amount to recipient. The cap check
// here is optimistic; it does not reserve capacity.
func (g *Gateway) ProposeMint(
	ctx context.Context,
	authority *Authority,
	gov governance.Module,
	policy *supply.Policy,
	caller domain.Address,
	amount uint64,
	recipient domain.Address,
) (_ domain.ProposalID, err error) {
	ctx, end := g.begin(ctx, "ProposeMint", caller)
	defer end(&err)

	if err := authorize(ctx, authority, gov, caller); err != nil {
		return 0, err
	}
	if amount == 0 {
		return 0, ErrZeroAmount
	}
	if err := checkMintCap(ctx, authority, policy, amount); err != nil {
		return 0, err
	}

	payload := &domain.MintPayload{Amount: amount, Recipient: recipient}
	return g.submit(ctx, gov, caller, idhash.ComputeProposalDescription(caller, payload), payload)
}

// ExecuteMint applies or discards a resolved mint proposal. The cap is
// re-checked against the supply at this moment; if it fails, nothing
// changes and the proposal stays open. A mint whose proposal cannot be
// completed is taken back, so the proposal never mints twice.
func (g *Gateway) ExecuteMint(
	ctx context.Context,
	authority *Authority,
	gov governance.Module,
	policy *supply.Policy,
	caller domain.Address,
	id domain.ProposalID,
	approve bool,
) (_ bool, err error) {
	ctx, end := g.begin(ctx, "ExecuteMint", caller)
	defer end(&err)

	if err := authorize(ctx, authority, gov, caller); err != nil {
		return false, err
	}
	if err := awaitDecision(ctx, gov, id, approve); err != nil {
		return false, err
	}
	payload, err := borrowPayload[*domain.MintPayload](ctx, gov, id)
	if err != nil {
		return false, err
	}

	if approve {
		if err := checkMintCap(ctx, authority, policy, payload.Amount); err != nil {
			return false, err
		}
		if err := authority.treasury.Mint(ctx, payload.Recipient, payload.Amount); err != nil {
			return false, err
		}
	}

	if err := g.complete(ctx, gov, caller, id, domain.OperationMint, approve); err != nil {
		if approve {
			if undoErr := g.undoMint(ctx, authority, payload); undoErr != nil {
				return false, errors.Join(err, undoErr)
			}
		}
		return false, err
	}
	if approve {
		g.emitter.CoinMinted(ctx, caller, payload.Recipient, payload.Amount, id)
		g.refreshSupplyGauges(ctx, authority, policy)
	}
	return true, nil
}

func checkMintCap(ctx context.Context, authority *Authority, policy *supply.Policy, amount uint64) error {
	current, err := authority.treasury.TotalSupply(ctx)
	if err != nil {
		return err
	}
	maxSupply, err := policy.MaxSupply(ctx)
	if err != nil {
		return err
	}
	if err := supply.ValidateMintWithinCap(current, amount, maxSupply); err != nil {
		return fmt.Errorf("mint %d: %w", amount, err)
	}
	return nil
}

// undoMint withdraws a minted amount from the recipient and burns it.
func (g *Gateway) undoMint(ctx context.Context, authority *Authority, p *domain.MintPayload) error {
	coin, err := g.ledger.Withdraw(ctx, p.Recipient, p.Amount)
	if err == nil {
		if err = authority.treasury.Burn(ctx, &coin); err != nil {
			if depositErr := g.ledger.Deposit(ctx, p.Recipient, &coin); depositErr != nil {
				err = errors.Join(err, depositErr)
			}
		}
	}
	if err != nil {
		g.logger.Error("take back mint of uncompleted proposal",
			"recipient", p.Recipient.String(),
			"amount", p.Amount,
			"error", err,
		)
		return fmt.Errorf("undo mint %d: %w", p.Amount, err)
	}
	return nil
}
