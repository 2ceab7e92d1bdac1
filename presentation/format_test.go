package presentation

import (
	"errors"
	"testing"

	"dotmini-mcx/core/event"
)

func TestProgressStatus(t *testing.T) {
	tests := []struct {
		processed, total int
		want             string
	}{
		{0, 0, "Processing images: 0/0 (0%)"},
		{1, 3, "Processing images: 1/3 (33%)"},
		{16, 16, "Processing images: 16/16 (100%)"},
	}
	for _, tt := range tests {
		if got := ProgressStatus(tt.processed, tt.total); got != tt.want {
			t.Errorf("ProgressStatus(%d, %d) = %q, want %q", tt.processed, tt.total, got, tt.want)
		}
	}
}

func TestFinishedStatus(t *testing.T) {
	tests := []struct {
		name   string
		reason event.StopReason
		err    error
		want   string
	}{
		{"completed", event.StopReasonCompleted, nil, "Classification complete. Processed 7 images."},
		{"cancelled", event.StopReasonCancelled, nil, "Classification canceled."},
		{"error", event.StopReasonError, errors.New("bad model"), "Classification failed: bad model"},
		{"error without cause", event.StopReasonError, nil, "Classification failed."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FinishedStatus(tt.reason, 7, tt.err); got != tt.want {
				t.Errorf("FinishedStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRoutePath(t *testing.T) {
	tests := []struct {
		path      string
		isDir     bool
		hasInputs bool
		want      pathTarget
	}{
		{"/m/model.onnx", false, false, targetModel},
		{"/m/model.ORT", false, true, targetModel},
		{"/m/labels.txt", false, false, targetLabels},
		{"/m/notes.md", false, false, targetNone},
		{"/images", true, false, targetInput},
		{"/out", true, true, targetOutput},
	}
	for _, tt := range tests {
		if got := routePath(tt.path, tt.isDir, tt.hasInputs); got != tt.want {
			t.Errorf("routePath(%q, %v, %v) = %v, want %v", tt.path, tt.isDir, tt.hasInputs, got, tt.want)
		}
	}
}
