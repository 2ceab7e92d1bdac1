// Package state defines the classification job state machine.
package state

import "fmt"

// JobState represents the state of a classification job.
type JobState int

const (
	// StateIdle is the initial state before the job starts.
	StateIdle JobState = iota
	// StateLoading indicates the labels and model are being loaded.
	StateLoading
	// StateRunning indicates images are being classified.
	StateRunning
	// StateCancelling indicates a cancel was requested and in-flight images are draining.
	StateCancelling
	// StateCompleted indicates every discovered image was processed.
	StateCompleted
	// StateCancelled indicates the job stopped on user request.
	StateCancelled
	// StateFailed indicates the job could not be set up.
	StateFailed
)

// String returns the string representation of the state.
func (s JobState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StateRunning:
		return "Running"
	case StateCancelling:
		return "Cancelling"
	case StateCompleted:
		return "Completed"
	case StateCancelled:
		return "Cancelled"
	case StateFailed:
		return "Failed"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// validTransitions defines the allowed state transitions.
// Key is the current state, value is a list of valid target states.
var validTransitions = map[JobState][]JobState{
	StateIdle:       {StateLoading},
	StateLoading:    {StateRunning, StateCancelling, StateFailed},
	StateRunning:    {StateCancelling, StateCompleted, StateFailed},
	StateCancelling: {StateCancelled},
	StateCompleted:  {},
	StateCancelled:  {},
	StateFailed:     {},
}

// CanTransitionTo checks if transitioning from the current state to the target state is valid.
func (s JobState) CanTransitionTo(target JobState) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// ValidTransitions returns the list of valid target states from the current state.
func (s JobState) ValidTransitions() []JobState {
	return validTransitions[s]
}

// IsTerminal returns true if no further transitions are possible.
func (s JobState) IsTerminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// IsActive returns true while the job holds resources (model loaded or loading).
func (s JobState) IsActive() bool {
	return s == StateLoading || s == StateRunning || s == StateCancelling
}

// CanCancel returns true if a cancel request has any effect in this state.
func (s JobState) CanCancel() bool {
	return s == StateLoading || s == StateRunning
}

// TransitionError represents an invalid state transition attempt.
type TransitionError struct {
	From   JobState
	To     JobState
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid state transition from %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// NewTransitionError creates a new TransitionError.
func NewTransitionError(from, to JobState, reason string) *TransitionError {
	return &TransitionError{From: from, To: to, Reason: reason}
}
