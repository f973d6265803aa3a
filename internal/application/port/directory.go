package port

import (
	"context"
	"errors"

	"github.com/worksite/pms-workflow/internal/domain/entity"
)

// ErrUserNotFound is returned when the directory has no user for an identifier
var ErrUserNotFound = errors.New("user not found")

// UserDirectory exposes the org hierarchy the approver-chain resolver walks.
// Reads must be consistent at the instant a chain is resolved; a stale read
// can resolve to a wrong approver and is an accepted limitation of the
// directory boundary.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*entity.User, error)
}
