package workflow

import "context"

// StateMachine tracks the current status of a request and validates transitions
type StateMachine interface {
	// Status returns the current status
	Status() Status

	// CanFire returns true if the transition is permitted in the current status
	CanFire(transition Transition) bool

	// Fire attempts to execute the transition, moving to the new status if allowed
	Fire(ctx context.Context, transition Transition) error

	// PermittedTransitions returns all transitions that can fire in the current status
	PermittedTransitions() []Transition
}
