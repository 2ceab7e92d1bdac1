// Package history records finished classification runs.
package history

import (
	"sort"
	"time"
)

// Status is the terminal outcome of a run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusFailed    Status = "failed"
)

// Run is one finished classification job.
type Run struct {
	// ID is the job identifier
	ID string

	StartedAt  time.Time
	FinishedAt time.Time

	ModelPath    string
	LabelsPath   string
	InputFolders []string
	OutputFolder string
	BatchSize    int

	// Total is the number of images discovered
	Total int

	// Processed counts images classified successfully
	Processed int

	// Failed counts images that could not be read or classified
	Failed int

	Status      Status
	ClassCounts map[string]int

	// Error holds the setup error message for failed runs
	Error string
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// TopClasses returns class names ordered by count descending, then name.
func (r *Run) TopClasses() []string {
	classes := make([]string, 0, len(r.ClassCounts))
	for c := range r.ClassCounts {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool {
		ci, cj := r.ClassCounts[classes[i]], r.ClassCounts[classes[j]]
		if ci != cj {
			return ci > cj
		}
		return classes[i] < classes[j]
	})
	return classes
}

// Clone creates a deep copy of the run.
func (r *Run) Clone() *Run {
	clone := *r
	if r.InputFolders != nil {
		clone.InputFolders = make([]string, len(r.InputFolders))
		copy(clone.InputFolders, r.InputFolders)
	}
	if r.ClassCounts != nil {
		clone.ClassCounts = make(map[string]int, len(r.ClassCounts))
		for k, v := range r.ClassCounts {
			clone.ClassCounts[k] = v
		}
	}
	return &clone
}
