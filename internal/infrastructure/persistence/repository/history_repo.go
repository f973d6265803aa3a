package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/worksite/pms-workflow/internal/application/port"
	"github.com/worksite/pms-workflow/internal/domain/entity"
	"github.com/worksite/pms-workflow/internal/domain/workflow"
	sqlitedb "github.com/worksite/pms-workflow/internal/infrastructure/persistence/sqlite"
)

// HistoryRepository implements port.HistoryRepository over sqlite
type HistoryRepository struct {
	db     *sqlitedb.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sqlitedb.DB, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// GetByRequestID retrieves the full trail for a request, oldest first.
// History rows are inserted by RequestRepository.SaveWithHistory; this
// repository only reads them.
func (r *HistoryRepository) GetByRequestID(ctx context.Context, requestID int64) ([]*entity.ApprovalHistory, error) {
	query := `
		SELECT id, request_id, action, actor_id, actor_name, previous_status,
			new_status, level, notes, review_notes, created_at
		FROM approval_history
		WHERE request_id = ?
		ORDER BY created_at, id
	`

	rows, err := sqlitedb.ExecutorFrom(ctx, r.db.DB).QueryContext(ctx, query, requestID)
	if err != nil {
		r.logger.Error("Failed to list history", zap.Int64("request_id", requestID), zap.Error(err))
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []*entity.ApprovalHistory
	for rows.Next() {
		var entry entity.ApprovalHistory
		var action, previousStatus, newStatus string

		err := rows.Scan(
			&entry.ID,
			&entry.RequestID,
			&action,
			&entry.ActorID,
			&entry.ActorName,
			&previousStatus,
			&newStatus,
			&entry.Level,
			&entry.Notes,
			&entry.ReviewNotes,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		entry.Action = workflow.Transition(action)
		entry.PreviousStatus = workflow.Status(previousStatus)
		entry.NewStatus = workflow.Status(newStatus)
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
