package workflow

// Status represents a request status in the procurement lifecycle
type Status string

const (
	StatusDraft             Status = "DRAFT"
	StatusPending           Status = "PENDING"
	StatusInReview          Status = "IN_REVIEW"
	StatusRevisionRequested Status = "REVISION_REQUESTED"
	StatusApproved          Status = "APPROVED"
	StatusRejected          Status = "REJECTED"
	StatusPurchasing        Status = "PURCHASING"
	StatusOrdered           Status = "ORDERED"
	StatusDelivered         Status = "DELIVERED"
	StatusCompleted         Status = "COMPLETED"
)

var validStatuses = map[Status]bool{
	StatusDraft:             true,
	StatusPending:           true,
	StatusInReview:          true,
	StatusRevisionRequested: true,
	StatusApproved:          true,
	StatusRejected:          true,
	StatusPurchasing:        true,
	StatusOrdered:           true,
	StatusDelivered:         true,
	StatusCompleted:         true,
}

var terminalStatuses = map[Status]bool{
	StatusRejected:  true,
	StatusCompleted: true,
}

// awaitingApproval holds the statuses in which a request has a next approver.
var awaitingApproval = map[Status]bool{
	StatusPending:  true,
	StatusInReview: true,
}

// IsTerminal returns true if the status is terminal (no further transitions allowed)
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// AwaitingApproval returns true if a request in this status must have a next approver
func (s Status) AwaitingApproval() bool {
	return awaitingApproval[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is a valid lifecycle status
func (s Status) IsValid() bool {
	return validStatuses[s]
}
