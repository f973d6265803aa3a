package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/worksite/pms-workflow/internal/application/port"
	"github.com/worksite/pms-workflow/internal/domain/entity"
	"github.com/worksite/pms-workflow/internal/domain/workflow"
	sqlitedb "github.com/worksite/pms-workflow/internal/infrastructure/persistence/sqlite"
)

const requestColumns = `id, request_number, status, created_by, item, description,
	quantity, unit, category, delivery_address, reason, next_approver,
	revision_count, revision_notes, submitted_at, version, created_at, updated_at`

// RequestRepository implements port.RequestRepository over sqlite
type RequestRepository struct {
	db     *sqlitedb.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *sqlitedb.DB, logger *zap.Logger) *RequestRepository {
	return &RequestRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new draft request
func (r *RequestRepository) Create(ctx context.Context, request *entity.Request) error {
	query := `
		INSERT INTO requests (
			request_number, status, created_by, item, description,
			quantity, unit, category, delivery_address, reason, next_approver,
			revision_count, revision_notes, submitted_at, version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlitedb.ExecutorFrom(ctx, r.db.DB).ExecContext(ctx, query,
		request.RequestNumber,
		request.Status.String(),
		request.CreatedBy,
		request.Item,
		request.Description,
		request.Quantity.String(),
		request.Unit,
		request.Category,
		request.DeliveryAddress,
		request.Reason,
		request.NextApprover,
		request.RevisionCount,
		request.RevisionNotes,
		request.SubmittedAt,
		request.Version,
		request.CreatedAt,
		request.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create request", zap.Error(err))
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	request.ID = id
	return nil
}

// GetByID retrieves a request by ID; returns nil when absent
func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*entity.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE id = ?`, requestColumns)
	return r.scanOne(ctx, query, id)
}

// GetByNumber retrieves a request by its request number; returns nil when absent
func (r *RequestRepository) GetByNumber(ctx context.Context, requestNumber string) (*entity.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE request_number = ?`, requestColumns)
	return r.scanOne(ctx, query, requestNumber)
}

// List retrieves requests matching the filter, newest first
func (r *RequestRepository) List(ctx context.Context, filter port.RequestFilter) ([]*entity.Request, error) {
	var conditions []string
	var args []interface{}

	if filter.CreatedBy != "" {
		conditions = append(conditions, "created_by = ?")
		args = append(args, filter.CreatedBy)
	}
	if filter.NextApprover != "" {
		conditions = append(conditions, "next_approver = ?")
		args = append(args, filter.NextApprover)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, status.String())
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}

	query := fmt.Sprintf(`SELECT %s FROM requests`, requestColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	return r.scanMany(ctx, query, args...)
}

// ListCompletedBetween retrieves COMPLETED requests updated inside [from, to)
func (r *RequestRepository) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*entity.Request, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM requests
		WHERE status = ? AND updated_at >= ? AND updated_at < ?
		ORDER BY updated_at
	`, requestColumns)

	return r.scanMany(ctx, query, workflow.StatusCompleted.String(), from, to)
}

// SaveWithHistory applies a transition atomically: the request row is updated
// guarded by expectedVersion and the history entry is appended in the same
// transaction. Losing the version race returns workflow.ErrConcurrentModification
// with nothing persisted.
func (r *RequestRepository) SaveWithHistory(ctx context.Context, request *entity.Request, history *entity.ApprovalHistory, expectedVersion int64) error {
	return r.db.WithTransaction(ctx, func(txCtx context.Context) error {
		query := `
			UPDATE requests SET
				status = ?, next_approver = ?, revision_count = ?, revision_notes = ?,
				submitted_at = ?, version = ?, updated_at = ?
			WHERE id = ? AND version = ?
		`

		result, err := sqlitedb.ExecutorFrom(txCtx, r.db.DB).ExecContext(txCtx, query,
			request.Status.String(),
			request.NextApprover,
			request.RevisionCount,
			request.RevisionNotes,
			request.SubmittedAt,
			request.Version,
			request.UpdatedAt,
			request.ID,
			expectedVersion,
		)
		if err != nil {
			r.logger.Error("Failed to update request", zap.Int64("id", request.ID), zap.Error(err))
			return fmt.Errorf("failed to update request: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: request %d expected version %d", workflow.ErrConcurrentModification, request.ID, expectedVersion)
		}

		historyQuery := `
			INSERT INTO approval_history (
				request_id, action, actor_id, actor_name, previous_status,
				new_status, level, notes, review_notes, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		historyResult, err := sqlitedb.ExecutorFrom(txCtx, r.db.DB).ExecContext(txCtx, historyQuery,
			history.RequestID,
			history.Action.String(),
			history.ActorID,
			history.ActorName,
			history.PreviousStatus.String(),
			history.NewStatus.String(),
			history.Level,
			history.Notes,
			history.ReviewNotes,
			history.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to append history", zap.Int64("request_id", history.RequestID), zap.Error(err))
			return fmt.Errorf("failed to append history: %w", err)
		}

		historyID, err := historyResult.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get history insert id: %w", err)
		}
		history.ID = historyID

		return nil
	})
}

// DeleteDraft removes a draft request. The engine has already verified
// ownership and status; the status guard here is belt only.
func (r *RequestRepository) DeleteDraft(ctx context.Context, id int64) error {
	result, err := sqlitedb.ExecutorFrom(ctx, r.db.DB).ExecContext(ctx,
		`DELETE FROM requests WHERE id = ? AND status = ?`, id, workflow.StatusDraft.String())
	if err != nil {
		r.logger.Error("Failed to delete draft", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: draft %d", port.ErrRequestNotFound, id)
	}

	return nil
}

func (r *RequestRepository) scanOne(ctx context.Context, query string, args ...interface{}) (*entity.Request, error) {
	row := sqlitedb.ExecutorFrom(ctx, r.db.DB).QueryRowContext(ctx, query, args...)

	request, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get request", zap.Error(err))
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	return request, nil
}

func (r *RequestRepository) scanMany(ctx context.Context, query string, args ...interface{}) ([]*entity.Request, error) {
	rows, err := sqlitedb.ExecutorFrom(ctx, r.db.DB).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list requests", zap.Error(err))
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	var requests []*entity.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, request)
	}

	return requests, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*entity.Request, error) {
	var request entity.Request
	var status, quantity string
	var nextApprover sql.NullString
	var submittedAt sql.NullTime

	err := row.Scan(
		&request.ID,
		&request.RequestNumber,
		&status,
		&request.CreatedBy,
		&request.Item,
		&request.Description,
		&quantity,
		&request.Unit,
		&request.Category,
		&request.DeliveryAddress,
		&request.Reason,
		&nextApprover,
		&request.RevisionCount,
		&request.RevisionNotes,
		&submittedAt,
		&request.Version,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	request.Status = workflow.Status(status)

	parsed, err := decimal.NewFromString(quantity)
	if err != nil {
		return nil, fmt.Errorf("invalid stored quantity %q: %w", quantity, err)
	}
	request.Quantity = parsed

	if nextApprover.Valid {
		request.NextApprover = &nextApprover.String
	}
	if submittedAt.Valid {
		request.SubmittedAt = &submittedAt.Time
	}

	return &request, nil
}

// Verify interface compliance
var _ port.RequestRepository = (*RequestRepository)(nil)
