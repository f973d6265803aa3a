package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/worksite/pms-workflow/internal/application/port"
	"github.com/worksite/pms-workflow/internal/domain/entity"
	sqlitedb "github.com/worksite/pms-workflow/internal/infrastructure/persistence/sqlite"
)

// UserRepository implements port.UserDirectory over sqlite. In a deployment
// where the org hierarchy lives in an external directory this is replaced at
// the port boundary.
type UserRepository struct {
	db     *sqlitedb.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlitedb.DB, logger *zap.Logger) *UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// GetUser retrieves a user by ID
func (r *UserRepository) GetUser(ctx context.Context, id string) (*entity.User, error) {
	query := `
		SELECT id, name, supervisor_id, is_admin, can_purchase, worksite_id
		FROM users
		WHERE id = ?
	`

	var user entity.User
	var supervisorID sql.NullString

	err := sqlitedb.ExecutorFrom(ctx, r.db.DB).QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&supervisorID,
		&user.IsAdmin,
		&user.CanPurchase,
		&user.WorksiteID,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", port.ErrUserNotFound, id)
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if supervisorID.Valid {
		user.SupervisorID = &supervisorID.String
	}

	return &user, nil
}

// UpsertUser inserts or updates a directory entry. Used by the CLI to seed
// the hierarchy.
func (r *UserRepository) UpsertUser(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, name, supervisor_id, is_admin, can_purchase, worksite_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			supervisor_id = excluded.supervisor_id,
			is_admin = excluded.is_admin,
			can_purchase = excluded.can_purchase,
			worksite_id = excluded.worksite_id
	`

	_, err := sqlitedb.ExecutorFrom(ctx, r.db.DB).ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.SupervisorID,
		user.IsAdmin,
		user.CanPurchase,
		user.WorksiteID,
	)
	if err != nil {
		r.logger.Error("Failed to upsert user", zap.String("id", user.ID), zap.Error(err))
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

// Verify interface compliance
var _ port.UserDirectory = (*UserRepository)(nil)
