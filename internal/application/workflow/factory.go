package workflow

import (
	"context"

	domainwf "github.com/worksite/pms-workflow/internal/domain/workflow"
)

type finalApprovalKey struct{}

// WithFinalApproval marks the context with whether the acting approver is the
// final level of the chain; the APPROVE branches read it as their guard.
func WithFinalApproval(ctx context.Context, final bool) context.Context {
	return context.WithValue(ctx, finalApprovalKey{}, final)
}

func isFinalApproval(ctx context.Context) bool {
	final, ok := ctx.Value(finalApprovalKey{}).(bool)
	return ok && final
}

func isNotFinalApproval(ctx context.Context) bool {
	final, ok := ctx.Value(finalApprovalKey{}).(bool)
	return ok && !final
}

// BuildRequestStateMachine creates a state machine configured for the
// procurement request lifecycle, positioned at initial.
func BuildRequestStateMachine(initial domainwf.Status) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	builder.Configure(domainwf.StatusDraft).
		Permit(domainwf.TransitionSubmit, domainwf.StatusPending)

	// Under the current single-level chain every APPROVE is final, so the
	// IN_REVIEW branch never fires; it stays configured for a deeper chain.
	builder.Configure(domainwf.StatusPending).
		PermitIf(domainwf.TransitionApprove, domainwf.StatusApproved, isFinalApproval).
		PermitIf(domainwf.TransitionApprove, domainwf.StatusInReview, isNotFinalApproval).
		Permit(domainwf.TransitionReject, domainwf.StatusRejected).
		Permit(domainwf.TransitionRequestRevision, domainwf.StatusRevisionRequested)

	builder.Configure(domainwf.StatusInReview).
		PermitIf(domainwf.TransitionApprove, domainwf.StatusApproved, isFinalApproval).
		PermitIf(domainwf.TransitionApprove, domainwf.StatusInReview, isNotFinalApproval).
		Permit(domainwf.TransitionReject, domainwf.StatusRejected).
		Permit(domainwf.TransitionRequestRevision, domainwf.StatusRevisionRequested)

	builder.Configure(domainwf.StatusRevisionRequested).
		Permit(domainwf.TransitionResubmit, domainwf.StatusPending)

	// The PURCHASING hop is implicit when ordering straight from APPROVED;
	// the status remains addressable for requests parked with the team.
	builder.Configure(domainwf.StatusApproved).
		Permit(domainwf.TransitionMarkOrdered, domainwf.StatusOrdered)

	builder.Configure(domainwf.StatusPurchasing).
		Permit(domainwf.TransitionMarkOrdered, domainwf.StatusOrdered)

	builder.Configure(domainwf.StatusOrdered).
		Permit(domainwf.TransitionMarkDelivered, domainwf.StatusDelivered)

	builder.Configure(domainwf.StatusDelivered).
		Permit(domainwf.TransitionMarkCompleted, domainwf.StatusCompleted)

	// REJECTED and COMPLETED are terminal - no outgoing transitions

	return builder.Build(initial)
}
