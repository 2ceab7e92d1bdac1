package presentation

import (
	"errors"
	"testing"

	"dotmini-mcx/core/event"
	"dotmini-mcx/core/state"
	"dotmini-mcx/domain/classification"
)

func TestUICallbacks_Nil(t *testing.T) {
	// Nil callbacks must not panic.
	callbacks := &UICallbacks{}
	dispatchEvent(callbacks, event.NewJobStarted("j1", classification.Request{}))
	dispatchEvent(callbacks, event.NewProgressUpdated("j1", 1, 2))
	dispatchEvent(callbacks, event.NewJobFinished("j1", event.StopReasonCompleted, nil, nil))
}

func TestDispatchEvent_AllCallbacks(t *testing.T) {
	called := make(map[string]int)

	callbacks := &UICallbacks{
		OnJobStarted: func(jobID string, req classification.Request) {
			called["started"]++
		},
		OnJobStateChanged: func(jobID string, oldState, newState state.JobState) {
			called["state"]++
		},
		OnJobFinished: func(jobID string, reason event.StopReason, stats *classification.Stats, err error) {
			called["finished"]++
		},
		OnModelLoaded: func(jobID string, labels []string, inputShape []int64) {
			called["model"]++
		},
		OnImagesDiscovered: func(jobID string, total int) {
			called["discovered"]++
		},
		OnImageClassified: func(jobID string, result classification.Result) {
			if result.Class != "cat" {
				t.Errorf("result class = %q, want cat", result.Class)
			}
			called["classified"]++
		},
		OnImageFailed: func(jobID, path string, err error) {
			called["failed"]++
		},
		OnProgress: func(jobID string, processed, total int) {
			if processed != 3 || total != 4 {
				t.Errorf("progress = %d/%d, want 3/4", processed, total)
			}
			called["progress"]++
		},
		OnResultsExported: func(jobID, path string, count int) {
			called["exported"]++
		},
		OnOperationFailed: func(jobID, operation string, err error) {
			called["opfailed"]++
		},
	}

	events := []event.Event{
		event.NewJobStarted("j1", classification.Request{}),
		event.NewJobStateChanged("j1", state.StateIdle, state.StateLoading),
		event.NewModelLoaded("j1", []string{"cat"}, []int64{1, 224, 224, 3}),
		event.NewImagesDiscovered("j1", 4),
		event.NewImageClassified("j1", classification.Result{Class: "cat"}),
		event.NewImageFailed("j1", "x.jpg", errors.New("bad")),
		event.NewProgressUpdated("j1", 3, 4),
		event.NewJobFinished("j1", event.StopReasonCompleted, classification.NewStats(), nil),
		event.NewResultsExported("j1", "out.csv", 3),
		event.NewOperationFailed("j1", "export", errors.New("disk full")),
	}
	for _, e := range events {
		dispatchEvent(callbacks, e)
	}

	if len(called) != 10 {
		t.Errorf("expected 10 distinct callbacks, got %d: %v", len(called), called)
	}
	for name, n := range called {
		if n != 1 {
			t.Errorf("callback %s called %d times, want 1", name, n)
		}
	}
}

func TestBridgeConfig(t *testing.T) {
	cfg := &BridgeConfig{}

	if cfg.Coordinator != nil {
		t.Error("Coordinator should be nil by default")
	}
	if cfg.EventBus != nil {
		t.Error("EventBus should be nil by default")
	}
	if cfg.Logger != nil {
		t.Error("Logger should be nil by default")
	}
}
