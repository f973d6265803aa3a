package workflow

import (
	"testing"

	"github.com/worksite/pms-workflow/internal/domain/entity"
	domainwf "github.com/worksite/pms-workflow/internal/domain/workflow"
)

func entry(action domainwf.Transition, from, to domainwf.Status) *entity.ApprovalHistory {
	return &entity.ApprovalHistory{
		Action:         action,
		PreviousStatus: from,
		NewStatus:      to,
	}
}

func TestReplay(t *testing.T) {
	tests := []struct {
		name    string
		entries []*entity.ApprovalHistory
		want    domainwf.Status
	}{
		{
			name:    "empty trail is a draft",
			entries: nil,
			want:    domainwf.StatusDraft,
		},
		{
			name: "submit only",
			entries: []*entity.ApprovalHistory{
				entry(domainwf.TransitionSubmit, domainwf.StatusDraft, domainwf.StatusPending),
			},
			want: domainwf.StatusPending,
		},
		{
			name: "revision round trip to approval",
			entries: []*entity.ApprovalHistory{
				entry(domainwf.TransitionSubmit, domainwf.StatusDraft, domainwf.StatusPending),
				entry(domainwf.TransitionRequestRevision, domainwf.StatusPending, domainwf.StatusRevisionRequested),
				entry(domainwf.TransitionResubmit, domainwf.StatusRevisionRequested, domainwf.StatusPending),
				entry(domainwf.TransitionApprove, domainwf.StatusPending, domainwf.StatusApproved),
			},
			want: domainwf.StatusApproved,
		},
		{
			name: "full lifecycle to completion",
			entries: []*entity.ApprovalHistory{
				entry(domainwf.TransitionSubmit, domainwf.StatusDraft, domainwf.StatusPending),
				entry(domainwf.TransitionApprove, domainwf.StatusPending, domainwf.StatusApproved),
				entry(domainwf.TransitionMarkOrdered, domainwf.StatusApproved, domainwf.StatusOrdered),
				entry(domainwf.TransitionMarkDelivered, domainwf.StatusOrdered, domainwf.StatusDelivered),
				entry(domainwf.TransitionMarkCompleted, domainwf.StatusDelivered, domainwf.StatusCompleted),
			},
			want: domainwf.StatusCompleted,
		},
		{
			name: "rejection",
			entries: []*entity.ApprovalHistory{
				entry(domainwf.TransitionSubmit, domainwf.StatusDraft, domainwf.StatusPending),
				entry(domainwf.TransitionReject, domainwf.StatusPending, domainwf.StatusRejected),
			},
			want: domainwf.StatusRejected,
		},
		{
			name: "non-final approval lands in review",
			entries: []*entity.ApprovalHistory{
				entry(domainwf.TransitionSubmit, domainwf.StatusDraft, domainwf.StatusPending),
				entry(domainwf.TransitionApprove, domainwf.StatusPending, domainwf.StatusInReview),
			},
			want: domainwf.StatusInReview,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Replay(tt.entries)
			if err != nil {
				t.Fatalf("Replay() failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Replay() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestReplay_CorruptedTrail(t *testing.T) {
	tests := []struct {
		name    string
		entries []*entity.ApprovalHistory
	}{
		{
			name: "gap in the trail",
			entries: []*entity.ApprovalHistory{
				entry(domainwf.TransitionSubmit, domainwf.StatusDraft, domainwf.StatusPending),
				entry(domainwf.TransitionMarkOrdered, domainwf.StatusApproved, domainwf.StatusOrdered),
			},
		},
		{
			name: "action not permitted from status",
			entries: []*entity.ApprovalHistory{
				entry(domainwf.TransitionApprove, domainwf.StatusDraft, domainwf.StatusApproved),
			},
		},
		{
			name: "recorded outcome does not match",
			entries: []*entity.ApprovalHistory{
				entry(domainwf.TransitionSubmit, domainwf.StatusDraft, domainwf.StatusApproved),
			},
		},
		{
			name: "transition out of terminal status",
			entries: []*entity.ApprovalHistory{
				entry(domainwf.TransitionSubmit, domainwf.StatusDraft, domainwf.StatusPending),
				entry(domainwf.TransitionReject, domainwf.StatusPending, domainwf.StatusRejected),
				entry(domainwf.TransitionResubmit, domainwf.StatusRejected, domainwf.StatusPending),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Replay(tt.entries); err == nil {
				t.Error("Replay() should fail on a corrupted trail")
			}
		})
	}
}
