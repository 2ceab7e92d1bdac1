// Package application orchestrates classification jobs.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"dotmini-mcx/application/job"
	"dotmini-mcx/core/command"
	"dotmini-mcx/core/event"
	"dotmini-mcx/core/eventbus"
	"dotmini-mcx/domain/history"
	"dotmini-mcx/infrastructure/export"
	"dotmini-mcx/infrastructure/inference"
)

// Common coordinator errors.
var (
	ErrJobRunning  = errors.New("a classification job is already running")
	ErrJobNotFound = errors.New("job not found")
)

// keptJobs is how many finished jobs stay available for export.
const keptJobs = 10

// Coordinator runs at most one classification job at a time.
type Coordinator struct {
	jobs   map[string]*job.Job
	order  []string
	active *job.Job
	jobsMu sync.RWMutex

	eventBus   eventbus.EventBus
	classifier inference.Factory
	history    *history.Service
	workers    int
	logger     *slog.Logger

	subID  string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// CoordinatorConfig holds configuration for the Coordinator.
type CoordinatorConfig struct {
	EventBus   eventbus.EventBus
	Classifier inference.Factory
	// History records finished runs. Optional.
	History *history.Service
	// Workers overrides the per-batch worker count.
	Workers int
	Logger  *slog.Logger
}

// NewCoordinator creates a new job coordinator.
func NewCoordinator(cfg *CoordinatorConfig) *Coordinator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Coordinator{
		jobs:       make(map[string]*job.Job),
		eventBus:   cfg.EventBus,
		classifier: cfg.Classifier,
		history:    cfg.History,
		workers:    cfg.Workers,
		logger:     cfg.Logger,
		ctx:        ctx,
		cancel:     cancel,
	}

	if c.eventBus != nil {
		c.subID = c.eventBus.Subscribe(c.handleEvent)
	}

	return c
}

// Start begins the coordinator.
func (c *Coordinator) Start() {
	c.logger.Info("Coordinator started")
}

// Stop cancels the active job and waits for it to finish.
func (c *Coordinator) Stop() {
	c.cancel()

	if active := c.ActiveJob(); active != nil {
		active.Cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		c.logger.Warn("Coordinator stop timeout, active job may not have finished")
	}

	if c.eventBus != nil && c.subID != "" {
		c.eventBus.Unsubscribe(c.subID)
	}
	c.logger.Info("Coordinator stopped")
}

// Dispatch sends a command to the appropriate handler.
func (c *Coordinator) Dispatch(cmd command.Command) error {
	c.logger.Debug("Dispatching command", "command", cmd.CommandName())

	switch cmd := cmd.(type) {
	case *command.StartClassification:
		_, err := c.StartClassification(cmd)
		return err
	case *command.CancelClassification:
		return c.handleCancel(cmd)
	case *command.CancelAll:
		return c.handleCancelAll()
	case *command.ExportResults:
		return c.handleExport(cmd)
	default:
		return fmt.Errorf("unknown command type: %T", cmd)
	}
}

// StartClassification validates the request and starts a new job.
func (c *Coordinator) StartClassification(cmd *command.StartClassification) (*job.Job, error) {
	if err := c.ctx.Err(); err != nil {
		return nil, fmt.Errorf("coordinator stopped: %w", err)
	}
	if err := cmd.Request.Validate(); err != nil {
		return nil, err
	}

	c.jobsMu.Lock()
	if c.active != nil {
		c.jobsMu.Unlock()
		return nil, ErrJobRunning
	}

	id := uuid.NewString()
	j := job.New(&job.Config{
		ID:         id,
		Request:    cmd.Request,
		Classifier: c.classifier,
		EventBus:   c.eventBus,
		Logger:     c.logger,
		Workers:    c.workers,
	})
	c.active = j
	c.jobs[id] = j
	c.order = append(c.order, id)
	c.pruneLocked()
	c.jobsMu.Unlock()

	c.wg.Add(1)
	go c.watch(j)

	if err := j.Start(); err != nil {
		return nil, err
	}
	c.logger.Info("Job created", "job_id", id, "inputs", len(cmd.Request.InputFolders))
	return j, nil
}

// ActiveJob returns the running job, or nil.
func (c *Coordinator) ActiveJob() *job.Job {
	c.jobsMu.RLock()
	defer c.jobsMu.RUnlock()
	return c.active
}

// Job returns a job by ID, or nil.
func (c *Coordinator) Job(id string) *job.Job {
	c.jobsMu.RLock()
	defer c.jobsMu.RUnlock()
	return c.jobs[id]
}

// JobCount returns the number of jobs kept by the coordinator.
func (c *Coordinator) JobCount() int {
	c.jobsMu.RLock()
	defer c.jobsMu.RUnlock()
	return len(c.jobs)
}

// watch clears the active slot once j is done.
func (c *Coordinator) watch(j *job.Job) {
	defer c.wg.Done()
	<-j.Done()

	c.jobsMu.Lock()
	if c.active == j {
		c.active = nil
	}
	c.jobsMu.Unlock()
}

// pruneLocked drops the oldest finished jobs beyond keptJobs.
func (c *Coordinator) pruneLocked() {
	for len(c.order) > keptJobs {
		oldest := c.order[0]
		if j := c.jobs[oldest]; j == c.active {
			return
		}
		delete(c.jobs, oldest)
		c.order = c.order[1:]
	}
}

// Command handlers

func (c *Coordinator) handleCancel(cmd *command.CancelClassification) error {
	j := c.Job(cmd.JobID())
	if j == nil {
		return fmt.Errorf("%w: %s", ErrJobNotFound, cmd.JobID())
	}
	j.Cancel()
	return nil
}

func (c *Coordinator) handleCancelAll() error {
	if active := c.ActiveJob(); active != nil {
		active.Cancel()
	}
	return nil
}

func (c *Coordinator) handleExport(cmd *command.ExportResults) error {
	j := c.Job(cmd.JobID())
	if j == nil {
		err := fmt.Errorf("%w: %s", ErrJobNotFound, cmd.JobID())
		c.publish(event.NewOperationFailed(cmd.JobID(), "export", err))
		return err
	}

	n, err := export.WriteFile(cmd.Path, j.Results())
	if err != nil {
		c.publish(event.NewOperationFailed(cmd.JobID(), "export", err))
		return err
	}

	c.logger.Info("Results exported", "job_id", cmd.JobID(), "path", cmd.Path, "count", n)
	c.publish(event.NewResultsExported(cmd.JobID(), cmd.Path, n))
	return nil
}

// handleEvent handles events from the event bus.
func (c *Coordinator) handleEvent(e event.Event) {
	switch evt := e.(type) {
	case *event.JobFinished:
		c.recordHistory(evt)
	}
}

func (c *Coordinator) recordHistory(evt *event.JobFinished) {
	if c.history == nil {
		return
	}
	j := c.Job(evt.JobID())
	if j == nil {
		return
	}

	run := RunFromJob(j, evt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.history.Record(ctx, run); err != nil {
		c.logger.Warn("Failed to record run history", "job_id", run.ID, "error", err)
	}
}

// RunFromJob builds the history record for a finished job.
func RunFromJob(j *job.Job, evt *event.JobFinished) *history.Run {
	req := j.Request()
	summary := j.Summary()

	run := &history.Run{
		ID:           j.ID(),
		StartedAt:    summary.StartedAt,
		FinishedAt:   summary.FinishedAt,
		ModelPath:    req.ModelPath,
		LabelsPath:   req.LabelsPath,
		InputFolders: append([]string(nil), req.InputFolders...),
		OutputFolder: req.OutputFolder,
		BatchSize:    req.EffectiveBatchSize(),
		Total:        evt.Total,
		Processed:    evt.Processed,
		Failed:       evt.Failed,
	}
	if evt.Stats != nil {
		run.ClassCounts = evt.Stats.Counts()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}

	switch evt.Reason {
	case event.StopReasonCompleted:
		run.Status = history.StatusCompleted
	case event.StopReasonCancelled:
		run.Status = history.StatusCancelled
	default:
		run.Status = history.StatusFailed
	}
	if evt.Error != nil {
		run.Error = evt.Error.Error()
	}
	return run
}

func (c *Coordinator) publish(e event.Event) {
	if c.eventBus != nil {
		c.eventBus.Publish(e)
	}
}
