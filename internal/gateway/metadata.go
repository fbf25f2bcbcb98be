package gateway

import (
	"context"
	"errors"
	"fmt"

	"coin-guardian/internal/domain"
	"coin-guardian/internal/governance"
	"coin-guardian/internal/idhash"
	"coin-guardian/internal/storage"
	"coin-guardian/internal/supply"
)

// ProposeMetadataUpdate submits a metadata patch. Empty strings leave
// fields unchanged. A zero MaxSupply, or one equal to the cap at execution
// time, keeps the cap in force at execution.
func (g *Gateway) ProposeMetadataUpdate(
	ctx context.Context,
	authority *Authority,
	gov governance.Module,
	caller domain.Address,
	update domain.MetadataPayload,
) (_ domain.ProposalID, err error) {
	ctx, end := g.begin(ctx, "ProposeMetadataUpdate", caller)
	defer end(&err)

	if err := authorize(ctx, authority, gov, caller); err != nil {
		return 0, err
	}

	payload := &update
	return g.submit(ctx, gov, caller, idhash.ComputeProposalDescription(caller, payload), payload)
}

// ExecuteMetadataUpdate applies or discards a resolved metadata proposal.
// The patch is all-or-nothing: if any write or the completion fails, the
// previous record and cap are put back.
func (g *Gateway) ExecuteMetadataUpdate(
	ctx context.Context,
	authority *Authority,
	gov governance.Module,
	store storage.MetadataStore,
	policy *supply.Policy,
	caller domain.Address,
	id domain.ProposalID,
	approve bool,
) (_ bool, err error) {
	ctx, end := g.begin(ctx, "ExecuteMetadataUpdate", caller)
	defer end(&err)

	if err := authorize(ctx, authority, gov, caller); err != nil {
		return false, err
	}
	if err := awaitDecision(ctx, gov, id, approve); err != nil {
		return false, err
	}
	payload, err := borrowPayload[*domain.MetadataPayload](ctx, gov, id)
	if err != nil {
		return false, err
	}

	undo := func(context.Context) error { return nil }
	if approve {
		if undo, err = g.applyMetadata(ctx, store, policy, payload); err != nil {
			return false, err
		}
	}

	if err := g.complete(ctx, gov, caller, id, domain.OperationMetadataUpdate, approve); err != nil {
		if undoErr := undo(ctx); undoErr != nil {
			return false, errors.Join(err, undoErr)
		}
		return false, err
	}
	if approve {
		g.refreshSupplyGauges(ctx, authority, policy)
	}
	return true, nil
}

// applyMetadata writes the cap, then the descriptive fields. A failed
// second write restores the cap. On success it returns a function that
// restores both.
func (g *Gateway) applyMetadata(ctx context.Context, store storage.MetadataStore, policy *supply.Policy, p *domain.MetadataPayload) (func(context.Context) error, error) {
	current, err := store.Get(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		current = &domain.CoinMetadata{Decimals: domain.Decimals}
	} else if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}
	previous := *current
	currentMax, err := policy.MaxSupply(ctx)
	if err != nil {
		return nil, err
	}

	next, changed := PatchMetadata(previous, p)
	capChanged := p.MaxSupply != 0 && p.MaxSupply != currentMax

	restoreCap := func(ctx context.Context) error {
		if !capChanged {
			return nil
		}
		if err := policy.SetMaxSupply(ctx, currentMax); err != nil {
			g.logger.Error("restore max supply", "max_supply", currentMax, "error", err)
			return fmt.Errorf("restore max supply: %w", err)
		}
		return nil
	}
	restoreMetadata := func(ctx context.Context) error {
		if !changed {
			return nil
		}
		if err := store.Put(ctx, &previous); err != nil {
			g.logger.Error("restore metadata", "error", err)
			return fmt.Errorf("restore metadata: %w", err)
		}
		return nil
	}

	if capChanged {
		if err := policy.SetMaxSupply(ctx, p.MaxSupply); err != nil {
			return nil, err
		}
	}
	if changed {
		next.UpdatedAt = g.now().UnixMilli()
		if err := store.Put(ctx, &next); err != nil {
			err = fmt.Errorf("store metadata: %w", err)
			if restoreErr := restoreCap(ctx); restoreErr != nil {
				return nil, errors.Join(err, restoreErr)
			}
			return nil, err
		}
	}

	return func(ctx context.Context) error {
		return errors.Join(restoreMetadata(ctx), restoreCap(ctx))
	}, nil
}

// PatchMetadata returns current with every non-empty, differing field of p
// applied, and whether anything changed.
func PatchMetadata(current domain.CoinMetadata, p *domain.MetadataPayload) (domain.CoinMetadata, bool) {
	next := current
	changed := false

	apply := func(dst *string, v string) {
		if v != "" && v != *dst {
			*dst = v
			changed = true
		}
	}
	apply(&next.Name, p.Name)
	apply(&next.Symbol, p.Symbol)
	apply(&next.Description, p.Description)
	apply(&next.IconURL, p.IconURL)

	return next, changed
}
