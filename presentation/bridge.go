// Package presentation provides the UI layer with event bridging to the application layer.
package presentation

import (
	"log/slog"
	"sync"

	"dotmini-mcx/application"
	"dotmini-mcx/core/command"
	"dotmini-mcx/core/event"
	"dotmini-mcx/core/eventbus"
	"dotmini-mcx/core/state"
	"dotmini-mcx/domain/classification"
)

// UIEventBridge bridges UI events to the application layer and routes events back to UI.
type UIEventBridge struct {
	coordinator *application.Coordinator
	eventBus    eventbus.EventBus
	logger      *slog.Logger

	// UI callbacks - set by UI components
	callbacks   *UICallbacks
	callbacksMu sync.RWMutex

	subscriptionID string
}

// UICallbacks contains callbacks for UI updates.
// Callbacks run on the event bus goroutine; UI code must wrap mutations in fyne.Do.
type UICallbacks struct {
	// Job lifecycle
	OnJobStarted      func(jobID string, req classification.Request)
	OnJobStateChanged func(jobID string, oldState, newState state.JobState)
	OnJobFinished     func(jobID string, reason event.StopReason, stats *classification.Stats, err error)

	// Progress
	OnModelLoaded      func(jobID string, labels []string, inputShape []int64)
	OnImagesDiscovered func(jobID string, total int)
	OnImageClassified  func(jobID string, result classification.Result)
	OnImageFailed      func(jobID, path string, err error)
	OnProgress         func(jobID string, processed, total int)

	// Export
	OnResultsExported func(jobID, path string, count int)
	OnOperationFailed func(jobID, operation string, err error)
}

// BridgeConfig holds configuration for UIEventBridge.
type BridgeConfig struct {
	Coordinator *application.Coordinator
	EventBus    eventbus.EventBus
	Logger      *slog.Logger
}

// NewUIEventBridge creates a new UI event bridge.
func NewUIEventBridge(cfg *BridgeConfig) *UIEventBridge {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	b := &UIEventBridge{
		coordinator: cfg.Coordinator,
		eventBus:    cfg.EventBus,
		logger:      cfg.Logger,
		callbacks:   &UICallbacks{},
	}

	if b.eventBus != nil {
		b.subscriptionID = b.eventBus.Subscribe(b.handleEvent)
	}

	return b
}

// SetCallbacks sets the UI callbacks.
func (b *UIEventBridge) SetCallbacks(callbacks *UICallbacks) {
	b.callbacksMu.Lock()
	defer b.callbacksMu.Unlock()
	b.callbacks = callbacks
}

// Close unsubscribes from the event bus.
func (b *UIEventBridge) Close() {
	if b.eventBus != nil && b.subscriptionID != "" {
		b.eventBus.Unsubscribe(b.subscriptionID)
	}
}

// Command dispatching methods

// StartClassification starts a classification job for req.
func (b *UIEventBridge) StartClassification(req classification.Request) error {
	return b.coordinator.Dispatch(&command.StartClassification{Request: req})
}

// CancelClassification cancels a running job.
func (b *UIEventBridge) CancelClassification(jobID string) error {
	return b.coordinator.Dispatch(command.NewCancelClassification(jobID))
}

// CancelAll cancels the active job, if any.
func (b *UIEventBridge) CancelAll() error {
	return b.coordinator.Dispatch(&command.CancelAll{})
}

// ExportResults writes the results of a job to path.
func (b *UIEventBridge) ExportResults(jobID, path string) error {
	return b.coordinator.Dispatch(command.NewExportResults(jobID, path, command.FormatAuto))
}

// Query methods

// IsRunning reports whether a job is active.
func (b *UIEventBridge) IsRunning() bool {
	return b.coordinator.ActiveJob() != nil
}

// JobState returns the state of a job, or StateIdle if it is unknown.
func (b *UIEventBridge) JobState(jobID string) state.JobState {
	j := b.coordinator.Job(jobID)
	if j == nil {
		return state.StateIdle
	}
	return j.State()
}

// Event handling

func (b *UIEventBridge) handleEvent(e event.Event) {
	b.callbacksMu.RLock()
	callbacks := b.callbacks
	b.callbacksMu.RUnlock()

	if callbacks == nil {
		return
	}
	dispatchEvent(callbacks, e)
}

func dispatchEvent(callbacks *UICallbacks, e event.Event) {
	switch evt := e.(type) {
	case *event.JobStarted:
		if callbacks.OnJobStarted != nil {
			callbacks.OnJobStarted(evt.JobID(), evt.Request)
		}

	case *event.JobStateChanged:
		if callbacks.OnJobStateChanged != nil {
			callbacks.OnJobStateChanged(evt.JobID(), evt.OldState, evt.NewState)
		}

	case *event.ModelLoaded:
		if callbacks.OnModelLoaded != nil {
			callbacks.OnModelLoaded(evt.JobID(), evt.Labels, evt.InputShape)
		}

	case *event.ImagesDiscovered:
		if callbacks.OnImagesDiscovered != nil {
			callbacks.OnImagesDiscovered(evt.JobID(), evt.Total)
		}

	case *event.ImageClassified:
		if callbacks.OnImageClassified != nil {
			callbacks.OnImageClassified(evt.JobID(), evt.Result)
		}

	case *event.ImageFailed:
		if callbacks.OnImageFailed != nil {
			callbacks.OnImageFailed(evt.JobID(), evt.Path, evt.Error)
		}

	case *event.ProgressUpdated:
		if callbacks.OnProgress != nil {
			callbacks.OnProgress(evt.JobID(), evt.Processed, evt.Total)
		}

	case *event.JobFinished:
		if callbacks.OnJobFinished != nil {
			callbacks.OnJobFinished(evt.JobID(), evt.Reason, evt.Stats, evt.Error)
		}

	case *event.ResultsExported:
		if callbacks.OnResultsExported != nil {
			callbacks.OnResultsExported(evt.JobID(), evt.Path, evt.Count)
		}

	case *event.OperationFailed:
		if callbacks.OnOperationFailed != nil {
			callbacks.OnOperationFailed(evt.JobID(), evt.Operation, evt.Error)
		}
	}
}
