package workflow

import (
	"context"
	"fmt"

	"github.com/worksite/pms-workflow/internal/domain/entity"
	domainwf "github.com/worksite/pms-workflow/internal/domain/workflow"
)

// Replay walks an ordered approval history from DRAFT and returns the status
// it reconstructs. Each row must continue where the previous one left off and
// its action must be a configured transition out of that status; otherwise the
// trail has been corrupted and an error is returned.
func Replay(entries []*entity.ApprovalHistory) (domainwf.Status, error) {
	current := domainwf.StatusDraft

	for i, entry := range entries {
		if entry.PreviousStatus != current {
			return "", fmt.Errorf("history entry %d starts at %s, expected %s", i, entry.PreviousStatus, current)
		}

		machine := BuildRequestStateMachine(current)
		if !machine.CanFire(entry.Action) {
			return "", fmt.Errorf("history entry %d: %s cannot fire from %s", i, entry.Action, current)
		}

		// The recorded outcome selects the branch; APPROVE has two.
		fireCtx := WithFinalApproval(context.Background(), entry.NewStatus == domainwf.StatusApproved)
		if err := machine.Fire(fireCtx, entry.Action); err != nil {
			return "", fmt.Errorf("history entry %d: %w", i, err)
		}
		if machine.Status() != entry.NewStatus {
			return "", fmt.Errorf("history entry %d lands in %s, recorded %s", i, machine.Status(), entry.NewStatus)
		}

		current = entry.NewStatus
	}

	return current, nil
}
