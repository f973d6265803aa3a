// Package authz is the stateless authorization gate for workflow
// transitions. It only reads request and user state; the workflow engine
// independently re-checks it before mutating, so UI-side calls are
// advisory only.
package authz

import (
	"github.com/worksite/pms-workflow/internal/domain/entity"
	"github.com/worksite/pms-workflow/internal/domain/workflow"
)

// Gate decides which transitions a user may invoke on a request right now
type Gate struct{}

// NewGate creates a new authorization gate
func NewGate() *Gate {
	return &Gate{}
}

// CanPerform reports whether user may invoke the transition on the request.
// It never mutates and never errors; disallowed is simply false.
func (g *Gate) CanPerform(user *entity.User, request *entity.Request, transition workflow.Transition) bool {
	if user == nil || request == nil {
		return false
	}

	switch transition {
	case workflow.TransitionSubmit, workflow.TransitionResubmit, workflow.TransitionEdit:
		return user.ID == request.CreatedBy &&
			(request.Status == workflow.StatusDraft || request.Status == workflow.StatusRevisionRequested)

	case workflow.TransitionDeleteDraft:
		return user.ID == request.CreatedBy && request.Status == workflow.StatusDraft

	case workflow.TransitionApprove:
		// Approval authority is non-delegable: admins do not bypass the
		// next-approver check here.
		return isNextApprover(user, request)

	case workflow.TransitionRequestRevision:
		return isNextApprover(user, request)

	case workflow.TransitionReject:
		if user.IsAdmin && request.Status.AwaitingApproval() {
			return true
		}
		return isNextApprover(user, request)

	case workflow.TransitionMarkOrdered:
		return canAdvancePurchasing(user) &&
			(request.Status == workflow.StatusApproved || request.Status == workflow.StatusPurchasing)

	case workflow.TransitionMarkDelivered:
		return canAdvancePurchasing(user) && request.Status == workflow.StatusOrdered

	case workflow.TransitionMarkCompleted:
		return canAdvancePurchasing(user) && request.Status == workflow.StatusDelivered

	default:
		return false
	}
}

// CanRead reports whether user may see the request. chain is the ordered
// supervisor chain above the request's creator, nearest first.
func (g *Gate) CanRead(user *entity.User, request *entity.Request, chain []*entity.User) bool {
	if user == nil || request == nil {
		return false
	}

	if user.IsAdmin || user.ID == request.CreatedBy {
		return true
	}

	// Chain members between the creator and the current approver, inclusive
	for _, member := range chain {
		if member.ID == user.ID {
			return true
		}
		if request.NextApprover != nil && member.ID == *request.NextApprover {
			break
		}
	}

	// Purchasing team sees requests once they reach APPROVED or later
	if user.CanPurchase && hasReachedApproval(request.Status) {
		return true
	}

	return false
}

func isNextApprover(user *entity.User, request *entity.Request) bool {
	return request.Status.AwaitingApproval() &&
		request.NextApprover != nil &&
		user.ID == *request.NextApprover
}

func canAdvancePurchasing(user *entity.User) bool {
	return user.IsAdmin || user.CanPurchase
}

func hasReachedApproval(status workflow.Status) bool {
	switch status {
	case workflow.StatusApproved, workflow.StatusPurchasing, workflow.StatusOrdered,
		workflow.StatusDelivered, workflow.StatusCompleted:
		return true
	}
	return false
}
