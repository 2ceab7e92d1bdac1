// Package main is a headless batch classifier sharing the desktop app's job pipeline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"dotmini-mcx/application"
	"dotmini-mcx/application/job"
	"dotmini-mcx/core/command"
	"dotmini-mcx/core/event"
	"dotmini-mcx/core/eventbus"
	"dotmini-mcx/core/state"
	"dotmini-mcx/domain/classification"
	"dotmini-mcx/infrastructure/config"
	"dotmini-mcx/infrastructure/inference"
	"dotmini-mcx/infrastructure/logging"
)

// Exit codes.
const (
	exitOK        = 0
	exitFailed    = 1
	exitUsage     = 2
	exitCancelled = 130
)

// drainTimeout bounds the wait for queued progress lines after a job ends.
const drainTimeout = 5 * time.Second

// folderList collects a repeatable -input flag. Each value is one path.
type folderList []string

func (f *folderList) String() string { return strings.Join(*f, ", ") }

func (f *folderList) Set(v string) error {
	if strings.TrimSpace(v) == "" {
		return errors.New("empty input folder")
	}
	*f = append(*f, v)
	return nil
}

type options struct {
	model   string
	labels  string
	inputs  folderList
	output  string
	batch   int
	workers int
	export  string
	ortLib  string
	quiet   bool
}

func parseFlags(args []string, cfg *config.Config, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("mcx-batch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.model, "model", "", "model file (.onnx)")
	fs.StringVar(&opts.labels, "labels", "", "labels file, one class per line")
	fs.Var(&opts.inputs, "input", "input folder (repeatable)")
	fs.StringVar(&opts.output, "output", "", "output folder")
	fs.IntVar(&opts.batch, "batch", classification.DefaultBatchSize, "batch size")
	fs.IntVar(&opts.workers, "workers", 0, "parallel workers per batch (0 = auto)")
	fs.StringVar(&opts.export, "export", "", "write results to this CSV file")
	fs.StringVar(&opts.ortLib, "ort", cfg.ORTLibraryPath, "onnxruntime shared library path")
	fs.BoolVar(&opts.quiet, "quiet", false, "print only the final summary")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return opts, nil
}

func (o *options) request() classification.Request {
	return classification.Request{
		ModelPath:    o.model,
		LabelsPath:   o.labels,
		InputFolders: o.inputs,
		OutputFolder: o.output,
		BatchSize:    o.batch,
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	opts, err := parseFlags(args, cfg, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	req := opts.request()
	if err := req.Validate(); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitUsage
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.ParseLevel(cfg.LogLevel, slog.LevelWarn)
	logger, closeLog, err := logging.Setup(logCfg)
	if err != nil {
		fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return exitFailed
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventBus := eventbus.New(eventbus.DefaultBufferSize, eventbus.WithLogger(logger))
	defer eventBus.Close()

	// Closed once the bus has delivered JobFinished, so every earlier
	// progress line is already written.
	drained := make(chan struct{})
	printer := progressPrinter(stdout, opts.quiet, drained)
	eventBus.Subscribe(printer)

	coordinator := application.NewCoordinator(&application.CoordinatorConfig{
		EventBus: eventBus,
		Classifier: inference.NewONNXFactory(&inference.ONNXConfig{
			SharedLibraryPath: opts.ortLib,
			Logger:            logger,
		}),
		Workers: opts.workers,
		Logger:  logger,
	})
	coordinator.Start()
	defer func() {
		coordinator.Stop()
		if err := inference.Shutdown(); err != nil {
			logger.Warn("Failed to shut down ONNX Runtime", "error", err)
		}
	}()

	j, err := coordinator.StartClassification(&command.StartClassification{Request: req})
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return exitFailed
	}

	return waitAndReport(ctx, coordinator, j, drained, opts, stdout, stderr)
}

func waitAndReport(ctx context.Context, c *application.Coordinator, j *job.Job, drained <-chan struct{}, opts *options, stdout, stderr io.Writer) int {
	select {
	case <-j.Done():
	case <-ctx.Done():
		fmt.Fprintln(stderr, "\ninterrupted, finishing in-flight images...")
		j.Cancel()
		<-j.Done()
	}

	// JobFinished can be dropped when the bus buffer is full.
	select {
	case <-drained:
	case <-time.After(drainTimeout):
		logging.L().Warn("Timed out waiting for progress output", "job_id", j.ID())
	}

	summary := j.Summary()
	fmt.Fprintln(stdout, j.Stats().String())
	fmt.Fprintf(stdout, "Classified %d of %d images (%d failed) in %s\n",
		summary.Processed, summary.Total, summary.Failed, summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))

	switch j.State() {
	case state.StateFailed:
		fmt.Fprintln(stderr, "error:", summary.Err)
		return exitFailed
	case state.StateCancelled:
		return exitCancelled
	}

	if opts.export != "" {
		if err := c.Dispatch(command.NewExportResults(j.ID(), opts.export, command.FormatAuto)); err != nil {
			fmt.Fprintln(stderr, "export failed:", err)
			return exitFailed
		}
		fmt.Fprintf(stdout, "Results exported to %s\n", opts.export)
	}
	return exitOK
}

// progressPrinter prints per-image results and batch progress unless quiet.
// It closes finished after handling the first JobFinished event.
func progressPrinter(w io.Writer, quiet bool, finished chan<- struct{}) eventbus.EventHandler {
	var once sync.Once
	return func(e event.Event) {
		if _, ok := e.(*event.JobFinished); ok {
			once.Do(func() { close(finished) })
			return
		}
		if quiet {
			return
		}

		switch evt := e.(type) {
		case *event.ModelLoaded:
			fmt.Fprintf(w, "Model loaded: %d classes, input %v\n", len(evt.Labels), evt.InputShape)
		case *event.ImagesDiscovered:
			fmt.Fprintf(w, "Found %d images\n", evt.Total)
		case *event.ImageClassified:
			fmt.Fprintln(w, evt.Result.String())
		case *event.ImageFailed:
			fmt.Fprintf(w, "%s: failed: %v\n", evt.Path, evt.Error)
		case *event.ProgressUpdated:
			fmt.Fprintf(w, "Processing images: %d/%d (%d%%)\n", evt.Processed, evt.Total, evt.Percent())
		}
	}
}
