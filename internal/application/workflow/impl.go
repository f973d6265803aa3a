package workflow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/worksite/pms-workflow/internal/application/approver"
	"github.com/worksite/pms-workflow/internal/application/authz"
	"github.com/worksite/pms-workflow/internal/application/port"
	"github.com/worksite/pms-workflow/internal/domain/entity"
	domainwf "github.com/worksite/pms-workflow/internal/domain/workflow"
)

// engineImpl is the concrete implementation of Engine
type engineImpl struct {
	requestRepo port.RequestRepository
	directory   port.UserDirectory
	gate        *authz.Gate
	resolver    *approver.Resolver
	logger      *zap.Logger
	now         func() time.Time
}

// EngineOption configures the workflow engine
type EngineOption func(*engineImpl)

// WithClock overrides the engine clock; used by tests
func WithClock(now func() time.Time) EngineOption {
	return func(e *engineImpl) {
		e.now = now
	}
}

// NewEngine creates a new workflow engine
func NewEngine(
	requestRepo port.RequestRepository,
	directory port.UserDirectory,
	gate *authz.Gate,
	resolver *approver.Resolver,
	logger *zap.Logger,
	opts ...EngineOption,
) Engine {
	e := &engineImpl{
		requestRepo: requestRepo,
		directory:   directory,
		gate:        gate,
		resolver:    resolver,
		logger:      logger,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

func (e *engineImpl) CreateDraft(ctx context.Context, input CreateDraftInput) (*entity.Request, error) {
	if strings.TrimSpace(input.CreatedBy) == "" {
		return nil, fmt.Errorf("%w: created_by is required", domainwf.ErrValidation)
	}
	if strings.TrimSpace(input.Item) == "" {
		return nil, fmt.Errorf("%w: item is required", domainwf.ErrValidation)
	}
	if !entity.IsValidUnit(input.Unit) {
		return nil, fmt.Errorf("%w: unknown unit %q", domainwf.ErrValidation, input.Unit)
	}

	quantity, err := decimal.NewFromString(input.Quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid quantity %q", domainwf.ErrValidation, input.Quantity)
	}
	if !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be positive", domainwf.ErrValidation)
	}

	if _, err := e.directory.GetUser(ctx, input.CreatedBy); err != nil {
		return nil, fmt.Errorf("failed to load creator: %w", err)
	}

	now := e.now()
	request := &entity.Request{
		RequestNumber:   entity.NewRequestNumber(now),
		Status:          domainwf.StatusDraft,
		CreatedBy:       input.CreatedBy,
		Item:            input.Item,
		Description:     input.Description,
		Quantity:        quantity,
		Unit:            input.Unit,
		Category:        input.Category,
		DeliveryAddress: input.DeliveryAddress,
		Reason:          input.Reason,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := e.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	e.logger.Info("Request draft created",
		zap.Int64("request_id", request.ID),
		zap.String("request_number", request.RequestNumber),
		zap.String("created_by", request.CreatedBy))

	return request, nil
}

func (e *engineImpl) SubmitRequest(ctx context.Context, requestID int64, actorID string) (*entity.Request, error) {
	request, actor, err := e.loadRequestAndActor(ctx, requestID, actorID)
	if err != nil {
		return nil, err
	}

	transition := domainwf.TransitionSubmit
	if request.Status == domainwf.StatusRevisionRequested {
		transition = domainwf.TransitionResubmit
	}

	machine := BuildRequestStateMachine(request.Status)
	if !machine.CanFire(transition) {
		return nil, fmt.Errorf("%w: cannot fire %s from status %s", domainwf.ErrInvalidTransition, transition, request.Status)
	}

	if !e.gate.CanPerform(actor, request, transition) {
		return nil, fmt.Errorf("%w: user %s may not %s request %s", domainwf.ErrPermissionDenied, actorID, transition, request.RequestNumber)
	}

	// Resolve before mutating anything; a request must never sit in
	// PENDING without a next approver.
	nextApprover, err := e.resolver.Resolve(ctx, request.CreatedBy)
	if err != nil {
		return nil, err
	}

	previous := request.Status
	if err := machine.Fire(ctx, transition); err != nil {
		return nil, err
	}

	expectedVersion := request.Version
	now := e.now()
	request.Status = machine.Status()
	request.NextApprover = &nextApprover.ID
	request.UpdatedAt = now
	if request.SubmittedAt == nil {
		request.SubmittedAt = &now
	}
	if transition == domainwf.TransitionResubmit {
		request.RevisionCount++
	}
	request.Version = expectedVersion + 1

	history := &entity.ApprovalHistory{
		RequestID:      request.ID,
		Action:         transition,
		ActorID:        actor.ID,
		ActorName:      actor.Name,
		PreviousStatus: previous,
		NewStatus:      request.Status,
		CreatedAt:      now,
	}

	if err := e.requestRepo.SaveWithHistory(ctx, request, history, expectedVersion); err != nil {
		return nil, err
	}

	e.logger.Info("Request submitted",
		zap.String("request_number", request.RequestNumber),
		zap.String("next_approver", nextApprover.ID),
		zap.Int("revision_count", request.RevisionCount))

	return request, nil
}

func (e *engineImpl) Decide(ctx context.Context, requestID int64, actorID string, decision Decision, notes string) (*entity.Request, error) {
	transition, err := decisionTransition(decision)
	if err != nil {
		return nil, err
	}

	request, actor, err := e.loadRequestAndActor(ctx, requestID, actorID)
	if err != nil {
		return nil, err
	}

	machine := BuildRequestStateMachine(request.Status)
	if !machine.CanFire(transition) {
		return nil, fmt.Errorf("%w: cannot fire %s from status %s", domainwf.ErrInvalidTransition, transition, request.Status)
	}

	if !e.gate.CanPerform(actor, request, transition) {
		return nil, fmt.Errorf("%w: user %s may not %s request %s", domainwf.ErrPermissionDenied, actorID, transition, request.RequestNumber)
	}

	if transition.RequiresNotes() && strings.TrimSpace(notes) == "" {
		return nil, fmt.Errorf("%w: %s requires a reason", domainwf.ErrValidation, transition)
	}

	level, err := e.resolver.Level(ctx, request.CreatedBy, actor.ID)
	if err != nil {
		return nil, err
	}

	fireCtx := ctx
	var advanceTo *entity.User
	if transition == domainwf.TransitionApprove {
		final, err := e.resolver.IsFinal(ctx, request.CreatedBy, actor.ID)
		if err != nil {
			return nil, err
		}
		if !final {
			advanceTo, err = e.resolver.NextAfter(ctx, request.CreatedBy, actor.ID)
			if err != nil {
				return nil, err
			}
			if advanceTo == nil {
				return nil, fmt.Errorf("%w: no approver after %s", domainwf.ErrNoApproverAvailable, actor.ID)
			}
		}
		fireCtx = WithFinalApproval(ctx, final)
	}

	previous := request.Status
	if err := machine.Fire(fireCtx, transition); err != nil {
		return nil, err
	}

	expectedVersion := request.Version
	now := e.now()
	request.Status = machine.Status()
	request.UpdatedAt = now
	request.Version = expectedVersion + 1

	switch {
	case request.Status == domainwf.StatusInReview && advanceTo != nil:
		request.NextApprover = &advanceTo.ID
	default:
		request.NextApprover = nil
	}

	history := &entity.ApprovalHistory{
		RequestID:      request.ID,
		Action:         transition,
		ActorID:        actor.ID,
		ActorName:      actor.Name,
		PreviousStatus: previous,
		NewStatus:      request.Status,
		Level:          level,
		Notes:          notes,
		CreatedAt:      now,
	}

	if transition == domainwf.TransitionRequestRevision {
		request.RevisionNotes = notes
		history.ReviewNotes = notes
	}

	if err := e.requestRepo.SaveWithHistory(ctx, request, history, expectedVersion); err != nil {
		return nil, err
	}

	e.logger.Info("Decision applied",
		zap.String("request_number", request.RequestNumber),
		zap.String("decision", string(decision)),
		zap.String("actor_id", actor.ID),
		zap.String("new_status", request.Status.String()))

	return request, nil
}

func (e *engineImpl) AdvancePurchasing(ctx context.Context, requestID int64, actorID string, stage PurchasingStage, notes string) (*entity.Request, error) {
	transition, err := stageTransition(stage)
	if err != nil {
		return nil, err
	}

	request, actor, err := e.loadRequestAndActor(ctx, requestID, actorID)
	if err != nil {
		return nil, err
	}

	machine := BuildRequestStateMachine(request.Status)
	if !machine.CanFire(transition) {
		return nil, fmt.Errorf("%w: cannot fire %s from status %s", domainwf.ErrInvalidTransition, transition, request.Status)
	}

	if !e.gate.CanPerform(actor, request, transition) {
		return nil, fmt.Errorf("%w: user %s may not %s request %s", domainwf.ErrPermissionDenied, actorID, transition, request.RequestNumber)
	}

	previous := request.Status
	if err := machine.Fire(ctx, transition); err != nil {
		return nil, err
	}

	expectedVersion := request.Version
	now := e.now()
	request.Status = machine.Status()
	request.NextApprover = nil
	request.UpdatedAt = now
	request.Version = expectedVersion + 1

	history := &entity.ApprovalHistory{
		RequestID:      request.ID,
		Action:         transition,
		ActorID:        actor.ID,
		ActorName:      actor.Name,
		PreviousStatus: previous,
		NewStatus:      request.Status,
		Notes:          notes,
		CreatedAt:      now,
	}

	if err := e.requestRepo.SaveWithHistory(ctx, request, history, expectedVersion); err != nil {
		return nil, err
	}

	e.logger.Info("Purchasing stage advanced",
		zap.String("request_number", request.RequestNumber),
		zap.String("stage", string(stage)),
		zap.String("actor_id", actor.ID))

	return request, nil
}

func (e *engineImpl) DeleteDraft(ctx context.Context, requestID int64, actorID string) error {
	request, actor, err := e.loadRequestAndActor(ctx, requestID, actorID)
	if err != nil {
		return err
	}

	if !e.gate.CanPerform(actor, request, domainwf.TransitionDeleteDraft) {
		return fmt.Errorf("%w: user %s may not delete request %s", domainwf.ErrPermissionDenied, actorID, request.RequestNumber)
	}

	if err := e.requestRepo.DeleteDraft(ctx, requestID); err != nil {
		return err
	}

	e.logger.Info("Draft deleted",
		zap.String("request_number", request.RequestNumber),
		zap.String("actor_id", actorID))

	return nil
}

func (e *engineImpl) loadRequestAndActor(ctx context.Context, requestID int64, actorID string) (*entity.Request, *entity.User, error) {
	request, err := e.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load request %d: %w", requestID, err)
	}
	if request == nil {
		return nil, nil, fmt.Errorf("%w: id %d", port.ErrRequestNotFound, requestID)
	}

	actor, err := e.directory.GetUser(ctx, actorID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user %s: %w", actorID, err)
	}

	return request, actor, nil
}

func decisionTransition(decision Decision) (domainwf.Transition, error) {
	switch decision {
	case DecisionApprove:
		return domainwf.TransitionApprove, nil
	case DecisionReject:
		return domainwf.TransitionReject, nil
	case DecisionRequestRevision:
		return domainwf.TransitionRequestRevision, nil
	default:
		return "", fmt.Errorf("%w: unknown decision %q", domainwf.ErrValidation, decision)
	}
}

func stageTransition(stage PurchasingStage) (domainwf.Transition, error) {
	switch stage {
	case StageMarkOrdered:
		return domainwf.TransitionMarkOrdered, nil
	case StageMarkDelivered:
		return domainwf.TransitionMarkDelivered, nil
	case StageMarkCompleted:
		return domainwf.TransitionMarkCompleted, nil
	default:
		return "", fmt.Errorf("%w: unknown purchasing stage %q", domainwf.ErrValidation, stage)
	}
}
