// Package workflow contains the engine that owns every request mutation.
// Callers ask the authorization gate what a user may do; only the engine
// applies transitions, and it re-validates authorization itself before
// touching the store.
package workflow

import (
	"context"

	"github.com/worksite/pms-workflow/internal/domain/entity"
)

// Decision is an approver's verdict on a pending request
type Decision string

const (
	DecisionApprove         Decision = "APPROVE"
	DecisionReject          Decision = "REJECT"
	DecisionRequestRevision Decision = "REQUEST_REVISION"
)

// PurchasingStage is a purchasing-team advancement of an approved request
type PurchasingStage string

const (
	StageMarkOrdered   PurchasingStage = "MARK_ORDERED"
	StageMarkDelivered PurchasingStage = "MARK_DELIVERED"
	StageMarkCompleted PurchasingStage = "MARK_COMPLETED"
)

// CreateDraftInput carries the owner-editable fields of a new request
type CreateDraftInput struct {
	CreatedBy       string
	Item            string
	Description     string
	Quantity        string
	Unit            string
	Category        string
	DeliveryAddress string
	Reason          string
}

// Engine validates and applies request lifecycle transitions. Every applied
// transition updates the request and appends exactly one history row
// atomically; when two transitions race on the same request, one wins and
// the other receives workflow.ErrConcurrentModification.
type Engine interface {
	// CreateDraft creates a new request in DRAFT owned by input.CreatedBy
	CreateDraft(ctx context.Context, input CreateDraftInput) (*entity.Request, error)

	// SubmitRequest moves a DRAFT to PENDING (or resubmits a
	// REVISION_REQUESTED request, bumping its revision count) and resolves
	// the next approver
	SubmitRequest(ctx context.Context, requestID int64, actorID string) (*entity.Request, error)

	// Decide applies an approver's verdict on a PENDING/IN_REVIEW request.
	// REJECT and REQUEST_REVISION require non-empty notes.
	Decide(ctx context.Context, requestID int64, actorID string, decision Decision, notes string) (*entity.Request, error)

	// AdvancePurchasing moves an approved request through the purchasing
	// stages (ordered, delivered, completed)
	AdvancePurchasing(ctx context.Context, requestID int64, actorID string, stage PurchasingStage, notes string) (*entity.Request, error)

	// DeleteDraft removes a DRAFT request; owner only
	DeleteDraft(ctx context.Context, requestID int64, actorID string) error
}
