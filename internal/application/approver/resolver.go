// Package approver resolves approval authority by walking supervisor
// links upward from a request's creator.
package approver

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/worksite/pms-workflow/internal/application/port"
	"github.com/worksite/pms-workflow/internal/domain/entity"
	"github.com/worksite/pms-workflow/internal/domain/workflow"
)

// maxChainDepth caps the supervisor walk. The directory validates against
// circular supervision, but a corrupted link must not hang resolution.
const maxChainDepth = 32

// Resolver computes the approver chain for a request creator
type Resolver struct {
	directory port.UserDirectory
	logger    *zap.Logger
}

// NewResolver creates a new chain resolver
func NewResolver(directory port.UserDirectory, logger *zap.Logger) *Resolver {
	return &Resolver{
		directory: directory,
		logger:    logger,
	}
}

// Chain returns the ordered supervisors above creatorID, nearest first.
// Level 1 is the creator's direct supervisor.
func (r *Resolver) Chain(ctx context.Context, creatorID string) ([]*entity.User, error) {
	creator, err := r.directory.GetUser(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load creator %s: %w", creatorID, err)
	}

	var chain []*entity.User
	seen := map[string]bool{creator.ID: true}

	next := creator.SupervisorID
	for next != nil {
		if len(chain) >= maxChainDepth {
			return nil, fmt.Errorf("approver chain for %s exceeds %d levels", creatorID, maxChainDepth)
		}
		if seen[*next] {
			return nil, fmt.Errorf("circular supervision detected above %s at %s", creatorID, *next)
		}

		supervisor, err := r.directory.GetUser(ctx, *next)
		if err != nil {
			return nil, fmt.Errorf("failed to load supervisor %s: %w", *next, err)
		}

		chain = append(chain, supervisor)
		seen[supervisor.ID] = true
		next = supervisor.SupervisorID
	}

	return chain, nil
}

// Resolve returns the user empowered to act on a request entering PENDING.
// Under single-level policy the creator's direct supervisor is simultaneously
// the sole and final approver; a creator without a supervisor yields
// workflow.ErrNoApproverAvailable.
func (r *Resolver) Resolve(ctx context.Context, creatorID string) (*entity.User, error) {
	chain, err := r.Chain(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	if len(chain) == 0 {
		r.logger.Warn("No approver available", zap.String("creator_id", creatorID))
		return nil, fmt.Errorf("%w: creator %s has no supervisor", workflow.ErrNoApproverAvailable, creatorID)
	}

	return chain[0], nil
}

// IsFinal reports whether approverID is the last level of the chain above
// creatorID. With single-level policy this is true for the sole approver;
// it is the only place a multi-level policy would change.
func (r *Resolver) IsFinal(ctx context.Context, creatorID, approverID string) (bool, error) {
	chain, err := r.Chain(ctx, creatorID)
	if err != nil {
		return false, err
	}
	if len(chain) == 0 {
		return false, fmt.Errorf("%w: creator %s has no supervisor", workflow.ErrNoApproverAvailable, creatorID)
	}
	return chain[len(chain)-1].ID == approverID, nil
}

// Level returns the 1-based position of userID in the chain above creatorID,
// or 0 if the user is not part of it (purchasing team, admins).
func (r *Resolver) Level(ctx context.Context, creatorID, userID string) (int, error) {
	chain, err := r.Chain(ctx, creatorID)
	if err != nil {
		return 0, err
	}
	for i, u := range chain {
		if u.ID == userID {
			return i + 1, nil
		}
	}
	return 0, nil
}

// NextAfter returns the chain member following approverID, or nil when
// approverID is the final level. Unreachable under single-level policy but
// required for the IN_REVIEW rows of the transition table.
func (r *Resolver) NextAfter(ctx context.Context, creatorID, approverID string) (*entity.User, error) {
	chain, err := r.Chain(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	for i, u := range chain {
		if u.ID == approverID {
			if i+1 < len(chain) {
				return chain[i+1], nil
			}
			return nil, nil
		}
	}
	return nil, nil
}
