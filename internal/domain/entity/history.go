package entity

import (
	"time"

	"github.com/worksite/pms-workflow/internal/domain/workflow"
)

// ApprovalHistory is the append-only audit trail of a request. One row is
// written per applied transition; replaying the ordered rows from DRAFT
// must reconstruct the request's current status.
type ApprovalHistory struct {
	ID             int64               `json:"id"`
	RequestID      int64               `json:"request_id"`
	Action         workflow.Transition `json:"action"`
	ActorID        string              `json:"actor_id"`
	ActorName      string              `json:"actor_name"`
	PreviousStatus workflow.Status     `json:"previous_status"`
	NewStatus      workflow.Status     `json:"new_status"`

	// Level is the actor's position in the approval hierarchy
	// (1 = immediate supervisor); 0 for purchasing team and admins.
	Level int `json:"level"`

	Notes       string    `json:"notes"`
	ReviewNotes string    `json:"review_notes"`
	CreatedAt   time.Time `json:"created_at"`
}
