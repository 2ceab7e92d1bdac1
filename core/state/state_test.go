package state

import "testing"

func TestJobState_String(t *testing.T) {
	tests := []struct {
		state    JobState
		expected string
	}{
		{StateIdle, "Idle"},
		{StateLoading, "Loading"},
		{StateRunning, "Running"},
		{StateCancelling, "Cancelling"},
		{StateCompleted, "Completed"},
		{StateCancelled, "Cancelled"},
		{StateFailed, "Failed"},
		{JobState(99), "Unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.state.String(); got != tt.expected {
				t.Errorf("JobState.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestJobState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name     string
		from     JobState
		to       JobState
		expected bool
	}{
		{"Idle -> Loading", StateIdle, StateLoading, true},
		{"Idle -> Running (invalid)", StateIdle, StateRunning, false},

		{"Loading -> Running", StateLoading, StateRunning, true},
		{"Loading -> Failed", StateLoading, StateFailed, true},
		{"Loading -> Cancelling", StateLoading, StateCancelling, true},
		{"Loading -> Completed (invalid)", StateLoading, StateCompleted, false},

		{"Running -> Completed", StateRunning, StateCompleted, true},
		{"Running -> Cancelling", StateRunning, StateCancelling, true},
		{"Running -> Failed", StateRunning, StateFailed, true},
		{"Running -> Idle (invalid)", StateRunning, StateIdle, false},

		{"Cancelling -> Cancelled", StateCancelling, StateCancelled, true},
		{"Cancelling -> Completed (invalid)", StateCancelling, StateCompleted, false},

		{"Completed -> Loading (invalid)", StateCompleted, StateLoading, false},
		{"Cancelled -> Running (invalid)", StateCancelled, StateRunning, false},
		{"Failed -> Idle (invalid)", StateFailed, StateIdle, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.expected {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestJobState_Predicates(t *testing.T) {
	tests := []struct {
		state     JobState
		terminal  bool
		active    bool
		canCancel bool
	}{
		{StateIdle, false, false, false},
		{StateLoading, false, true, true},
		{StateRunning, false, true, true},
		{StateCancelling, false, true, false},
		{StateCompleted, true, false, false},
		{StateCancelled, true, false, false},
		{StateFailed, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.terminal)
			}
			if got := tt.state.IsActive(); got != tt.active {
				t.Errorf("IsActive() = %v, want %v", got, tt.active)
			}
			if got := tt.state.CanCancel(); got != tt.canCancel {
				t.Errorf("CanCancel() = %v, want %v", got, tt.canCancel)
			}
		})
	}
}

func TestJobState_TerminalHasNoTransitions(t *testing.T) {
	for _, s := range []JobState{StateCompleted, StateCancelled, StateFailed} {
		if len(s.ValidTransitions()) != 0 {
			t.Errorf("%s should have no valid transitions", s)
		}
	}
}

func TestTransitionError(t *testing.T) {
	err := NewTransitionError(StateIdle, StateRunning, "not loaded")
	want := "invalid state transition from Idle to Running: not loaded"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	err = NewTransitionError(StateCompleted, StateLoading, "")
	want = "invalid state transition from Completed to Loading"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
