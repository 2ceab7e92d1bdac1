// Package event defines all events that can be published by the application.
// Events represent state changes and are consumed by the presentation layer.
package event

import (
	"dotmini-mcx/core/state"
	"dotmini-mcx/domain/classification"
)

// Event is the base interface for all events.
// Events are published by the application layer and consumed by subscribers.
type Event interface {
	// EventName returns the name of the event for logging/debugging
	EventName() string
}

// JobEvent is an event that originates from a specific job.
type JobEvent interface {
	Event
	// JobID returns the source job ID
	JobID() string
}

// baseJobEvent provides common implementation for job events.
type baseJobEvent struct {
	jobID string
}

func (e *baseJobEvent) JobID() string {
	return e.jobID
}

// JobStarted is published when a job has been accepted and begins loading.
type JobStarted struct {
	baseJobEvent
	Request classification.Request
}

func NewJobStarted(jobID string, req classification.Request) *JobStarted {
	return &JobStarted{
		baseJobEvent: baseJobEvent{jobID: jobID},
		Request:      req,
	}
}

func (e *JobStarted) EventName() string {
	return "JobStarted"
}

// JobStateChanged is published when a job's state changes.
type JobStateChanged struct {
	baseJobEvent
	OldState state.JobState
	NewState state.JobState
}

func NewJobStateChanged(jobID string, oldState, newState state.JobState) *JobStateChanged {
	return &JobStateChanged{
		baseJobEvent: baseJobEvent{jobID: jobID},
		OldState:     oldState,
		NewState:     newState,
	}
}

func (e *JobStateChanged) EventName() string {
	return "JobStateChanged"
}

// ModelLoaded is published once the model and labels are ready.
type ModelLoaded struct {
	baseJobEvent
	Labels     []string
	InputShape []int64
}

func NewModelLoaded(jobID string, labels []string, inputShape []int64) *ModelLoaded {
	return &ModelLoaded{
		baseJobEvent: baseJobEvent{jobID: jobID},
		Labels:       labels,
		InputShape:   inputShape,
	}
}

func (e *ModelLoaded) EventName() string {
	return "ModelLoaded"
}

// ImagesDiscovered is published after the input folders have been scanned.
type ImagesDiscovered struct {
	baseJobEvent
	Total int
}

func NewImagesDiscovered(jobID string, total int) *ImagesDiscovered {
	return &ImagesDiscovered{
		baseJobEvent: baseJobEvent{jobID: jobID},
		Total:        total,
	}
}

func (e *ImagesDiscovered) EventName() string {
	return "ImagesDiscovered"
}

// ImageClassified is published for every successfully classified image.
type ImageClassified struct {
	baseJobEvent
	Result classification.Result
}

func NewImageClassified(jobID string, result classification.Result) *ImageClassified {
	return &ImageClassified{
		baseJobEvent: baseJobEvent{jobID: jobID},
		Result:       result,
	}
}

func (e *ImageClassified) EventName() string {
	return "ImageClassified"
}

// ImageFailed is published when a single image cannot be processed.
// The job continues with the remaining images.
type ImageFailed struct {
	baseJobEvent
	Path  string
	Error error
}

func NewImageFailed(jobID, path string, err error) *ImageFailed {
	return &ImageFailed{
		baseJobEvent: baseJobEvent{jobID: jobID},
		Path:         path,
		Error:        err,
	}
}

func (e *ImageFailed) EventName() string {
	return "ImageFailed"
}

// ProgressUpdated is published after each batch.
type ProgressUpdated struct {
	baseJobEvent
	Processed int
	Total     int
}

func NewProgressUpdated(jobID string, processed, total int) *ProgressUpdated {
	return &ProgressUpdated{
		baseJobEvent: baseJobEvent{jobID: jobID},
		Processed:    processed,
		Total:        total,
	}
}

func (e *ProgressUpdated) EventName() string {
	return "ProgressUpdated"
}

// Percent returns progress in the range [0, 100].
func (e *ProgressUpdated) Percent() int {
	if e.Total <= 0 {
		return 0
	}
	return e.Processed * 100 / e.Total
}

// StopReason indicates why a job finished.
type StopReason int

const (
	// StopReasonCompleted indicates every image was processed.
	StopReasonCompleted StopReason = iota
	// StopReasonCancelled indicates the user cancelled the job.
	StopReasonCancelled
	// StopReasonError indicates the job could not be set up.
	StopReasonError
)

func (r StopReason) String() string {
	switch r {
	case StopReasonCompleted:
		return "Completed"
	case StopReasonCancelled:
		return "Cancelled"
	case StopReasonError:
		return "Error"
	default:
		return "Unknown"
	}
}

// JobFinished is always published when a job ends, including on setup errors.
type JobFinished struct {
	baseJobEvent
	Reason    StopReason
	Stats     *classification.Stats
	Total     int
	Processed int
	Failed    int
	Error     error // Non-nil if Reason is StopReasonError
}

func NewJobFinished(jobID string, reason StopReason, stats *classification.Stats, err error) *JobFinished {
	return &JobFinished{
		baseJobEvent: baseJobEvent{jobID: jobID},
		Reason:       reason,
		Stats:        stats,
		Error:        err,
	}
}

func (e *JobFinished) EventName() string {
	return "JobFinished"
}

// ResultsExported is published after a successful export.
type ResultsExported struct {
	baseJobEvent
	Path  string
	Count int
}

func NewResultsExported(jobID, path string, count int) *ResultsExported {
	return &ResultsExported{
		baseJobEvent: baseJobEvent{jobID: jobID},
		Path:         path,
		Count:        count,
	}
}

func (e *ResultsExported) EventName() string {
	return "ResultsExported"
}

// OperationFailed is published when a command cannot be carried out.
type OperationFailed struct {
	baseJobEvent
	Operation string
	Error     error
}

func NewOperationFailed(jobID, operation string, err error) *OperationFailed {
	return &OperationFailed{
		baseJobEvent: baseJobEvent{jobID: jobID},
		Operation:    operation,
		Error:        err,
	}
}

func (e *OperationFailed) EventName() string {
	return "OperationFailed"
}
