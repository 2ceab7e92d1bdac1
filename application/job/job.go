// Package job runs a single classification job as an actor.
package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"dotmini-mcx/core/event"
	"dotmini-mcx/core/eventbus"
	"dotmini-mcx/core/state"
	"dotmini-mcx/domain/classification"
	"dotmini-mcx/domain/label"
	"dotmini-mcx/infrastructure/imageio"
	"dotmini-mcx/infrastructure/inference"
)

// MaxWorkers caps the per-batch worker pool.
const MaxWorkers = 8

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("job already started")

// DefaultWorkers returns min(NumCPU, MaxWorkers).
func DefaultWorkers() int {
	return min(runtime.NumCPU(), MaxWorkers)
}

// Config holds configuration for creating a new Job.
type Config struct {
	ID         string
	Request    classification.Request
	Classifier inference.Factory
	EventBus   eventbus.EventBus
	Logger     *slog.Logger
	// Workers bounds concurrent images inside a batch. Defaults to DefaultWorkers().
	Workers int
}

// Summary is a snapshot of a job's counters.
type Summary struct {
	Total      int
	Processed  int
	Failed     int
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// Job classifies every image of a request and files copies by predicted class.
type Job struct {
	id      string
	req     classification.Request
	factory inference.Factory
	bus     eventbus.EventBus
	logger  *slog.Logger
	workers int

	state   state.JobState
	stateMu sync.RWMutex

	results   []classification.Result
	summary   Summary
	resultsMu sync.RWMutex
	stats     *classification.Stats

	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	done    chan struct{}
}

// New creates a job in the Idle state.
func New(cfg *Config) *Job {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Job{
		id:      cfg.ID,
		req:     cfg.Request,
		factory: cfg.Classifier,
		bus:     cfg.EventBus,
		logger:  cfg.Logger.With("job_id", cfg.ID),
		workers: cfg.Workers,
		state:   state.StateIdle,
		stats:   classification.NewStats(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
}

// ID returns the job ID.
func (j *Job) ID() string {
	return j.id
}

// Request returns the request the job was created with.
func (j *Job) Request() classification.Request {
	return j.req
}

// State returns the current job state.
func (j *Job) State() state.JobState {
	j.stateMu.RLock()
	defer j.stateMu.RUnlock()
	return j.state
}

// Stats returns the live class statistics.
func (j *Job) Stats() *classification.Stats {
	return j.stats
}

// Results returns a copy of the results collected so far.
func (j *Job) Results() []classification.Result {
	j.resultsMu.RLock()
	defer j.resultsMu.RUnlock()

	out := make([]classification.Result, len(j.results))
	copy(out, j.results)
	return out
}

// Summary returns the job counters.
func (j *Job) Summary() Summary {
	j.resultsMu.RLock()
	defer j.resultsMu.RUnlock()
	return j.summary
}

// Done is closed when the job has finished.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Start launches the job in the background.
func (j *Job) Start() error {
	j.stateMu.Lock()
	if j.started {
		j.stateMu.Unlock()
		return ErrAlreadyStarted
	}
	j.started = true
	j.stateMu.Unlock()

	go j.run()
	return nil
}

// Cancel stops scheduling new images. In-flight images finish.
func (j *Job) Cancel() {
	j.stateMu.Lock()
	old := j.state
	moved := old.CanCancel()
	if moved {
		j.state = state.StateCancelling
	}
	j.stateMu.Unlock()

	if moved {
		j.logger.Info("Cancelling job", "from", old)
		j.publish(event.NewJobStateChanged(j.id, old, state.StateCancelling))
	}
	j.cancel()
}

// Wait blocks until the job finishes or ctx is done.
func (j *Job) Wait(ctx context.Context) error {
	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (j *Job) run() {
	defer close(j.done)
	defer j.cancel()

	j.setSummary(func(s *Summary) { s.StartedAt = time.Now() })
	j.publish(event.NewJobStarted(j.id, j.req))
	j.logger.Info("Job started",
		"model", j.req.ModelPath,
		"labels", j.req.LabelsPath,
		"inputs", len(j.req.InputFolders),
		"output", j.req.OutputFolder)

	if err := j.transitionTo(state.StateLoading); err != nil {
		j.finish(event.StopReasonError, err)
		return
	}

	labels, clf, files, err := j.setup()
	if err != nil {
		if j.ctx.Err() != nil {
			j.finish(event.StopReasonCancelled, nil)
			return
		}
		j.logger.Error("Job setup failed", "error", err)
		j.finish(event.StopReasonError, err)
		return
	}
	defer func() {
		if err := clf.Close(); err != nil {
			j.logger.Warn("Failed to close classifier", "error", err)
		}
	}()

	if err := j.transitionTo(state.StateRunning); err != nil {
		// Cancel won the race while loading.
		j.finish(event.StopReasonCancelled, nil)
		return
	}

	j.process(labels, clf, files)

	if j.ctx.Err() != nil {
		j.finish(event.StopReasonCancelled, nil)
		return
	}
	j.finish(event.StopReasonCompleted, nil)
}

// setup loads labels and model, discovers images and prepares output folders.
func (j *Job) setup() (*label.Set, inference.Classifier, []string, error) {
	if err := j.req.Validate(); err != nil {
		return nil, nil, nil, err
	}

	labels, err := label.LoadFile(j.req.LabelsPath)
	if err != nil {
		return nil, nil, nil, err
	}

	if j.factory == nil {
		return nil, nil, nil, errors.New("no model loader configured")
	}
	clf, err := j.factory(j.req.ModelPath, labels.Len())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load model: %w", err)
	}
	j.publish(event.NewModelLoaded(j.id, labels.Names(), clf.InputShape()))

	files, err := classification.DiscoverImages(j.req.InputFolders, func(path string, err error) {
		j.logger.Warn("Skipping unreadable path", "path", path, "error", err)
	})
	if err != nil {
		clf.Close()
		return nil, nil, nil, err
	}
	j.setSummary(func(s *Summary) { s.Total = len(files) })
	j.publish(event.NewImagesDiscovered(j.id, len(files)))
	j.logger.Info("Images discovered", "count", len(files))

	for _, name := range labels.Names() {
		dir := filepath.Join(j.req.OutputFolder, label.FolderName(name))
		if err := os.MkdirAll(dir, 0755); err != nil {
			clf.Close()
			return nil, nil, nil, fmt.Errorf("failed to create output folder: %w", err)
		}
	}

	if err := j.ctx.Err(); err != nil {
		clf.Close()
		return nil, nil, nil, err
	}
	return labels, clf, files, nil
}

type outcome struct {
	result *classification.Result
	path   string
	err    error
}

func (j *Job) process(labels *label.Set, clf inference.Classifier, files []string) {
	total := len(files)
	done := 0

	for _, batch := range classification.Batches(files, j.req.EffectiveBatchSize()) {
		if j.ctx.Err() != nil {
			return
		}

		outcomes := make([]outcome, len(batch))

		g := new(errgroup.Group)
		g.SetLimit(j.workers)
		for i, path := range batch {
			// Stop scheduling once cancelled; images already running finish.
			if j.ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				res, err := j.classifyOne(labels, clf, path)
				outcomes[i] = outcome{result: res, path: path, err: err}
				return nil
			})
		}
		_ = g.Wait()

		for _, o := range outcomes {
			switch {
			case o.path == "":
				continue
			case o.err != nil:
				done++
				j.recordFailure(o.path, o.err)
			default:
				done++
				j.recordResult(*o.result)
			}
		}
		j.publish(event.NewProgressUpdated(j.id, done, total))
	}
}

func (j *Job) classifyOne(labels *label.Set, clf inference.Classifier, path string) (*classification.Result, error) {
	img, err := imageio.Decode(path)
	if err != nil {
		return nil, err
	}

	// In-flight images run to completion even after Cancel.
	pred, err := clf.Classify(context.WithoutCancel(j.ctx), img)
	if err != nil {
		return nil, err
	}

	name, ok := labels.Name(pred.Index)
	if !ok {
		return nil, fmt.Errorf("predicted class index %d has no label", pred.Index)
	}

	dst, err := imageio.CopyInto(path, filepath.Join(j.req.OutputFolder, label.FolderName(name)))
	if err != nil {
		return nil, err
	}

	return &classification.Result{
		ImagePath:  path,
		Class:      name,
		Confidence: pred.Confidence,
		OutputPath: dst,
	}, nil
}

func (j *Job) recordResult(r classification.Result) {
	j.resultsMu.Lock()
	j.results = append(j.results, r)
	j.summary.Processed++
	j.resultsMu.Unlock()

	j.stats.Add(r.Class)
	j.publish(event.NewImageClassified(j.id, r))
}

func (j *Job) recordFailure(path string, err error) {
	j.resultsMu.Lock()
	j.summary.Failed++
	j.resultsMu.Unlock()

	j.logger.Warn("Image failed", "path", path, "error", err)
	j.publish(event.NewImageFailed(j.id, path, err))
}

// finish moves the job to its terminal state and always publishes JobFinished.
func (j *Job) finish(reason event.StopReason, err error) {
	if reason == event.StopReasonCompleted && j.State() == state.StateCancelling {
		reason = event.StopReasonCancelled
	}

	var target state.JobState
	switch reason {
	case event.StopReasonCompleted:
		target = state.StateCompleted
	case event.StopReasonCancelled:
		target = state.StateCancelled
		if j.State() != state.StateCancelling {
			_ = j.transitionTo(state.StateCancelling)
		}
	default:
		target = state.StateFailed
	}
	if terr := j.transitionTo(target); terr != nil {
		j.logger.Warn("Unexpected final transition", "error", terr)
		j.forceState(target)
	}

	j.setSummary(func(s *Summary) {
		s.FinishedAt = time.Now()
		s.Err = err
	})
	summary := j.Summary()

	finished := event.NewJobFinished(j.id, reason, j.stats, err)
	finished.Total = summary.Total
	finished.Processed = summary.Processed
	finished.Failed = summary.Failed
	j.publish(finished)

	j.logger.Info("Job finished",
		"reason", reason,
		"processed", summary.Processed,
		"failed", summary.Failed,
		"total", summary.Total,
		"duration", summary.FinishedAt.Sub(summary.StartedAt))
}

func (j *Job) transitionTo(newState state.JobState) error {
	j.stateMu.Lock()
	old := j.state
	if !old.CanTransitionTo(newState) {
		j.stateMu.Unlock()
		return state.NewTransitionError(old, newState, "")
	}
	j.state = newState
	j.stateMu.Unlock()

	j.logger.Debug("State transition", "from", old, "to", newState)
	j.publish(event.NewJobStateChanged(j.id, old, newState))
	return nil
}

func (j *Job) forceState(newState state.JobState) {
	j.stateMu.Lock()
	old := j.state
	j.state = newState
	j.stateMu.Unlock()
	j.publish(event.NewJobStateChanged(j.id, old, newState))
}

func (j *Job) setSummary(fn func(s *Summary)) {
	j.resultsMu.Lock()
	fn(&j.summary)
	j.resultsMu.Unlock()
}

func (j *Job) publish(e event.Event) {
	if j.bus != nil {
		j.bus.Publish(e)
	}
}
