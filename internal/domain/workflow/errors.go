package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when the current status does not
	// support the requested transition
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrInvalidStatus is returned when a status is not a valid lifecycle status
	ErrInvalidStatus = errors.New("invalid status")

	// ErrGuardFailed is returned when a guard condition rejects a transition
	ErrGuardFailed = errors.New("guard condition failed")

	// ErrValidation is returned when a transition is missing required input,
	// such as the reason on a rejection or revision request
	ErrValidation = errors.New("validation failed")

	// ErrPermissionDenied is returned when the authorization gate rejects the actor
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNoApproverAvailable is returned when chain resolution finds no supervisor
	ErrNoApproverAvailable = errors.New("no approver available")

	// ErrConcurrentModification is returned when an optimistic-lock race is lost;
	// callers should reload the request and retry
	ErrConcurrentModification = errors.New("request was modified concurrently")
)
