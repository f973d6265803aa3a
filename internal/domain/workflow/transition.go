package workflow

// Transition represents an operation that moves a request between statuses
type Transition string

const (
	TransitionSubmit          Transition = "SUBMIT"
	TransitionResubmit        Transition = "RESUBMIT"
	TransitionApprove         Transition = "APPROVE"
	TransitionReject          Transition = "REJECT"
	TransitionRequestRevision Transition = "REQUEST_REVISION"
	TransitionMarkOrdered     Transition = "MARK_ORDERED"
	TransitionMarkDelivered   Transition = "MARK_DELIVERED"
	TransitionMarkCompleted   Transition = "MARK_COMPLETED"

	// Edit and DeleteDraft do not move a request through the lifecycle;
	// they exist so the authorization gate can answer for them uniformly.
	TransitionEdit        Transition = "EDIT"
	TransitionDeleteDraft Transition = "DELETE_DRAFT"
)

// String returns the string representation of the transition
func (t Transition) String() string {
	return string(t)
}

// RequiresNotes returns true if the transition must carry a non-empty
// reason before it may be applied.
func (t Transition) RequiresNotes() bool {
	return t == TransitionReject || t == TransitionRequestRevision
}
