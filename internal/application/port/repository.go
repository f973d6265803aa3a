package port

import (
	"context"
	"errors"
	"time"

	"github.com/worksite/pms-workflow/internal/domain/entity"
	"github.com/worksite/pms-workflow/internal/domain/workflow"
)

// ErrRequestNotFound is returned when no request exists for an identifier
var ErrRequestNotFound = errors.New("request not found")

// RequestFilter narrows request listings
type RequestFilter struct {
	CreatedBy    string
	NextApprover string
	Statuses     []workflow.Status
	Limit        int
	Offset       int
}

// RequestRepository defines persistence operations for Request.
//
// SaveWithHistory is the only way a transition reaches the store: it updates
// the request row guarded by expectedVersion and appends the history entry in
// one atomic unit. A version mismatch returns workflow.ErrConcurrentModification
// and leaves nothing persisted.
type RequestRepository interface {
	Create(ctx context.Context, request *entity.Request) error
	GetByID(ctx context.Context, id int64) (*entity.Request, error)
	GetByNumber(ctx context.Context, requestNumber string) (*entity.Request, error)
	List(ctx context.Context, filter RequestFilter) ([]*entity.Request, error)
	ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*entity.Request, error)
	SaveWithHistory(ctx context.Context, request *entity.Request, history *entity.ApprovalHistory, expectedVersion int64) error
	DeleteDraft(ctx context.Context, id int64) error
}

// HistoryRepository reads the approval trail. History rows are written only
// by RequestRepository.SaveWithHistory, never independently.
type HistoryRepository interface {
	GetByRequestID(ctx context.Context, requestID int64) ([]*entity.ApprovalHistory, error)
}

// DocumentRepository defines persistence operations for Document metadata
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	GetByRequestID(ctx context.Context, requestID int64) ([]*entity.Document, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
