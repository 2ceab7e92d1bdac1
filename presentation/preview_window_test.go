package presentation

import "testing"

func TestStepIndex(t *testing.T) {
	tests := []struct {
		index, delta, n, want int
	}{
		{0, 1, 3, 1},
		{2, 1, 3, 0},
		{0, -1, 3, 2},
		{1, -1, 3, 0},
		{0, 1, 1, 0},
		{0, 1, 0, -1},
	}
	for _, tt := range tests {
		if got := stepIndex(tt.index, tt.delta, tt.n); got != tt.want {
			t.Errorf("stepIndex(%d, %d, %d) = %d, want %d", tt.index, tt.delta, tt.n, got, tt.want)
		}
	}
}
