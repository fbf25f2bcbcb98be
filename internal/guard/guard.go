// Package guard holds the permission predicates evaluated before any
// gateway operation touches state.
package guard

import (
	"context"
	"errors"
	"fmt"

	"coin-guardian/internal/domain"
)

var (
	// ErrScopeMismatch is returned when a governance instance is not the
	// one the authority is bound to.
	ErrScopeMismatch = errors.New("governance scope mismatch")

	// ErrNotParticipant is returned when the caller is not a registered voter.
	ErrNotParticipant = errors.New("caller is not a governance participant")
)

// Bound is implemented by an authority permanently bound to one governance instance.
type Bound interface {
	GovernanceID() domain.Address
}

// Identified is implemented by a governance instance.
type Identified interface {
	ID() domain.Address
}

// Roster answers participant membership queries.
type Roster interface {
	IsParticipant(ctx context.Context, addr domain.Address) (bool, error)
}

// CheckScope fails with ErrScopeMismatch unless gov is the instance the
// authority is bound to.
func CheckScope(gov Identified, authority Bound) error {
	if gov.ID() != authority.GovernanceID() {
		return fmt.Errorf("%w: got %s, bound to %s", ErrScopeMismatch, gov.ID(), authority.GovernanceID())
	}
	return nil
}

// CheckParticipant fails with ErrNotParticipant unless caller is a
// registered voter of gov.
func CheckParticipant(ctx context.Context, gov Roster, caller domain.Address) error {
	ok, err := gov.IsParticipant(ctx, caller)
	if err != nil {
		return fmt.Errorf("check participant %s: %w", caller, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotParticipant, caller)
	}
	return nil
}
