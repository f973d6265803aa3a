package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/worksite/pms-workflow/internal/application/approver"
	"github.com/worksite/pms-workflow/internal/application/authz"
	"github.com/worksite/pms-workflow/internal/application/port"
	"github.com/worksite/pms-workflow/internal/domain/entity"
	"github.com/worksite/pms-workflow/internal/domain/workflow"
)

// ApproverStatus describes one level of the chain in a CurrentApprover report
type ApproverStatus struct {
	Level     int          `json:"level"`
	Approver  *entity.User `json:"approver"`
	Approved  bool         `json:"approved"`
	IsCurrent bool         `json:"is_current"`
}

// CurrentApproverReport summarizes where a request sits in its chain
type CurrentApproverReport struct {
	RequestID     int64            `json:"request_id"`
	RequestNumber string           `json:"request_number"`
	Status        workflow.Status  `json:"status"`
	NextApprover  *entity.User     `json:"next_approver,omitempty"`
	Chain         []ApproverStatus `json:"chain,omitempty"`
}

// RequestService answers the read-side questions the UI asks: a user's own
// requests, their approval inbox, the purchasing queue, and the audit trail.
type RequestService interface {
	GetRequest(ctx context.Context, requestID int64, actorID string) (*entity.Request, error)
	MyRequests(ctx context.Context, actorID string, limit, offset int) ([]*entity.Request, error)
	PendingApprovals(ctx context.Context, actorID string, limit, offset int) ([]*entity.Request, error)
	PurchasingQueue(ctx context.Context, actorID string, limit, offset int) ([]*entity.Request, error)
	History(ctx context.Context, requestID int64, actorID string) ([]*entity.ApprovalHistory, error)
	CurrentApprover(ctx context.Context, requestID int64) (*CurrentApproverReport, error)
}

type requestServiceImpl struct {
	requestRepo port.RequestRepository
	historyRepo port.HistoryRepository
	directory   port.UserDirectory
	gate        *authz.Gate
	resolver    *approver.Resolver
	logger      *zap.Logger
}

// NewRequestService creates a new RequestService
func NewRequestService(
	requestRepo port.RequestRepository,
	historyRepo port.HistoryRepository,
	directory port.UserDirectory,
	gate *authz.Gate,
	resolver *approver.Resolver,
	logger *zap.Logger,
) RequestService {
	return &requestServiceImpl{
		requestRepo: requestRepo,
		historyRepo: historyRepo,
		directory:   directory,
		gate:        gate,
		resolver:    resolver,
		logger:      logger,
	}
}

func (s *requestServiceImpl) GetRequest(ctx context.Context, requestID int64, actorID string) (*entity.Request, error) {
	request, actor, err := s.load(ctx, requestID, actorID)
	if err != nil {
		return nil, err
	}

	chain, err := s.resolver.Chain(ctx, request.CreatedBy)
	if err != nil {
		return nil, err
	}

	if !s.gate.CanRead(actor, request, chain) {
		return nil, fmt.Errorf("%w: user %s may not view request %s", workflow.ErrPermissionDenied, actorID, request.RequestNumber)
	}

	return request, nil
}

func (s *requestServiceImpl) MyRequests(ctx context.Context, actorID string, limit, offset int) ([]*entity.Request, error) {
	return s.requestRepo.List(ctx, port.RequestFilter{
		CreatedBy: actorID,
		Limit:     normalizeLimit(limit),
		Offset:    offset,
	})
}

func (s *requestServiceImpl) PendingApprovals(ctx context.Context, actorID string, limit, offset int) ([]*entity.Request, error) {
	return s.requestRepo.List(ctx, port.RequestFilter{
		NextApprover: actorID,
		Statuses:     []workflow.Status{workflow.StatusPending, workflow.StatusInReview},
		Limit:        normalizeLimit(limit),
		Offset:       offset,
	})
}

func (s *requestServiceImpl) PurchasingQueue(ctx context.Context, actorID string, limit, offset int) ([]*entity.Request, error) {
	actor, err := s.directory.GetUser(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", actorID, err)
	}
	if !actor.IsAdmin && !actor.CanPurchase {
		return nil, fmt.Errorf("%w: user %s is not on the purchasing team", workflow.ErrPermissionDenied, actorID)
	}

	return s.requestRepo.List(ctx, port.RequestFilter{
		Statuses: []workflow.Status{workflow.StatusApproved, workflow.StatusPurchasing},
		Limit:    normalizeLimit(limit),
		Offset:   offset,
	})
}

func (s *requestServiceImpl) History(ctx context.Context, requestID int64, actorID string) ([]*entity.ApprovalHistory, error) {
	request, actor, err := s.load(ctx, requestID, actorID)
	if err != nil {
		return nil, err
	}

	chain, err := s.resolver.Chain(ctx, request.CreatedBy)
	if err != nil {
		return nil, err
	}

	if !s.gate.CanRead(actor, request, chain) {
		return nil, fmt.Errorf("%w: user %s may not view request %s", workflow.ErrPermissionDenied, actorID, request.RequestNumber)
	}

	return s.historyRepo.GetByRequestID(ctx, requestID)
}

func (s *requestServiceImpl) CurrentApprover(ctx context.Context, requestID int64) (*CurrentApproverReport, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load request %d: %w", requestID, err)
	}
	if request == nil {
		return nil, fmt.Errorf("%w: id %d", port.ErrRequestNotFound, requestID)
	}

	report := &CurrentApproverReport{
		RequestID:     request.ID,
		RequestNumber: request.RequestNumber,
		Status:        request.Status,
	}

	if request.NextApprover != nil {
		next, err := s.directory.GetUser(ctx, *request.NextApprover)
		if err != nil {
			return nil, fmt.Errorf("failed to load next approver: %w", err)
		}
		report.NextApprover = next
	}

	if !request.Status.AwaitingApproval() {
		return report, nil
	}

	chain, err := s.resolver.Chain(ctx, request.CreatedBy)
	if err != nil {
		return nil, err
	}

	passedCurrent := false
	for i, member := range chain {
		isCurrent := request.NextApprover != nil && member.ID == *request.NextApprover
		report.Chain = append(report.Chain, ApproverStatus{
			Level:     i + 1,
			Approver:  member,
			Approved:  !isCurrent && !passedCurrent,
			IsCurrent: isCurrent,
		})
		if isCurrent {
			passedCurrent = true
		}
	}

	return report, nil
}

func (s *requestServiceImpl) load(ctx context.Context, requestID int64, actorID string) (*entity.Request, *entity.User, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load request %d: %w", requestID, err)
	}
	if request == nil {
		return nil, nil, fmt.Errorf("%w: id %d", port.ErrRequestNotFound, requestID)
	}

	actor, err := s.directory.GetUser(ctx, actorID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user %s: %w", actorID, err)
	}

	return request, actor, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}
