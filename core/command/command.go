// Package command defines all commands that can be sent to the application.
// Commands represent user intentions and are processed by the application layer.
package command

import "dotmini-mcx/domain/classification"

// Command is the base interface for all commands.
// Commands are sent from the presentation layer to the application layer.
type Command interface {
	// CommandName returns the name of the command for logging/debugging
	CommandName() string
}

// JobCommand is a command that targets a specific classification job.
type JobCommand interface {
	Command
	// JobID returns the target job ID
	JobID() string
}

// baseJobCommand provides common implementation for job commands.
type baseJobCommand struct {
	jobID string
}

func (c *baseJobCommand) JobID() string {
	return c.jobID
}

// StartClassification starts a new classification job.
type StartClassification struct {
	Request classification.Request
}

func (c *StartClassification) CommandName() string {
	return "StartClassification"
}

// CancelClassification asks a running job to stop after its in-flight images.
type CancelClassification struct {
	baseJobCommand
}

func NewCancelClassification(jobID string) *CancelClassification {
	return &CancelClassification{baseJobCommand{jobID: jobID}}
}

func (c *CancelClassification) CommandName() string {
	return "CancelClassification"
}

// CancelAll cancels every active job.
type CancelAll struct{}

func (c *CancelAll) CommandName() string {
	return "CancelAll"
}

// ExportFormat selects the export file format.
type ExportFormat string

const (
	// FormatAuto picks the format from the file extension.
	FormatAuto ExportFormat = ""
	FormatCSV  ExportFormat = "csv"
)

// ExportResults writes a job's results to Path.
type ExportResults struct {
	baseJobCommand
	Path   string
	Format ExportFormat
}

func NewExportResults(jobID, path string, format ExportFormat) *ExportResults {
	return &ExportResults{
		baseJobCommand: baseJobCommand{jobID: jobID},
		Path:           path,
		Format:         format,
	}
}

func (c *ExportResults) CommandName() string {
	return "ExportResults"
}
