package workflow

import (
	"context"
	"fmt"
)

// GuardFunc evaluates whether a configured transition branch should be taken
type GuardFunc func(ctx context.Context) bool

// StateMachineBuilder builds a configured state machine
type StateMachineBuilder interface {
	// Configure returns a configuration for the given status
	Configure(status Status) StatusConfiguration

	// Build creates a new state machine instance with the given initial status
	Build(initial Status) StateMachine
}

// StatusConfiguration configures transitions out of a specific status
type StatusConfiguration interface {
	// Permit allows a transition to the target status
	Permit(transition Transition, to Status) StatusConfiguration

	// PermitIf allows a transition to the target status when the guard passes
	PermitIf(transition Transition, to Status, guard GuardFunc) StatusConfiguration
}

// branch is one configured outcome of a transition, with an optional guard
type branch struct {
	to    Status
	guard GuardFunc
}

type statusConfig struct {
	from     Status
	branches map[Transition][]branch
}

type stateMachineBuilder struct {
	configurations map[Status]*statusConfig
}

type stateMachine struct {
	current        Status
	configurations map[Status]*statusConfig
}

// NewBuilder creates a new state machine builder
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{
		configurations: make(map[Status]*statusConfig),
	}
}

func (b *stateMachineBuilder) Configure(status Status) StatusConfiguration {
	if !status.IsValid() {
		panic(fmt.Sprintf("invalid status: %s", status))
	}

	config, exists := b.configurations[status]
	if !exists {
		config = &statusConfig{
			from:     status,
			branches: make(map[Transition][]branch),
		}
		b.configurations[status] = config
	}

	return config
}

func (b *stateMachineBuilder) Build(initial Status) StateMachine {
	if !initial.IsValid() {
		panic(fmt.Sprintf("invalid initial status: %s", initial))
	}

	// Deep copy configurations so built machines are independent of the builder
	configsCopy := make(map[Status]*statusConfig)
	for status, config := range b.configurations {
		branchesCopy := make(map[Transition][]branch)
		for transition, branches := range config.branches {
			branchesCopy[transition] = append([]branch{}, branches...)
		}
		configsCopy[status] = &statusConfig{
			from:     status,
			branches: branchesCopy,
		}
	}

	return &stateMachine{
		current:        initial,
		configurations: configsCopy,
	}
}

func (c *statusConfig) Permit(transition Transition, to Status) StatusConfiguration {
	return c.PermitIf(transition, to, nil)
}

func (c *statusConfig) PermitIf(transition Transition, to Status, guard GuardFunc) StatusConfiguration {
	if !to.IsValid() {
		panic(fmt.Sprintf("invalid target status: %s", to))
	}

	c.branches[transition] = append(c.branches[transition], branch{
		to:    to,
		guard: guard,
	})

	return c
}

func (m *stateMachine) Status() Status {
	return m.current
}

func (m *stateMachine) CanFire(transition Transition) bool {
	config, exists := m.configurations[m.current]
	if !exists {
		return false
	}

	branches, exists := config.branches[transition]
	return exists && len(branches) > 0
}

func (m *stateMachine) Fire(ctx context.Context, transition Transition) error {
	config, exists := m.configurations[m.current]
	if !exists {
		return fmt.Errorf("%w: cannot fire %s from status %s (no configuration)", ErrInvalidTransition, transition, m.current)
	}

	branches, exists := config.branches[transition]
	if !exists || len(branches) == 0 {
		return fmt.Errorf("%w: cannot fire %s from status %s", ErrInvalidTransition, transition, m.current)
	}

	// Take the first branch whose guard passes
	for _, b := range branches {
		if b.guard == nil || b.guard(ctx) {
			m.current = b.to
			return nil
		}
	}

	return fmt.Errorf("%w: %s from status %s", ErrGuardFailed, transition, m.current)
}

func (m *stateMachine) PermittedTransitions() []Transition {
	config, exists := m.configurations[m.current]
	if !exists {
		return []Transition{}
	}

	transitions := make([]Transition, 0, len(config.branches))
	for transition := range config.branches {
		transitions = append(transitions, transition)
	}

	return transitions
}
