package presentation

import (
	"fmt"
	"path/filepath"
	"strings"

	"dotmini-mcx/core/event"
)

// ProgressStatus renders the status line shown while a job runs.
func ProgressStatus(processed, total int) string {
	pct := 0
	if total > 0 {
		pct = processed * 100 / total
	}
	return fmt.Sprintf("Processing images: %d/%d (%d%%)", processed, total, pct)
}

// FinishedStatus renders the status line shown after a job ends.
func FinishedStatus(reason event.StopReason, processed int, err error) string {
	switch reason {
	case event.StopReasonCompleted:
		return fmt.Sprintf("Classification complete. Processed %d images.", processed)
	case event.StopReasonCancelled:
		return "Classification canceled."
	default:
		if err != nil {
			return "Classification failed: " + err.Error()
		}
		return "Classification failed."
	}
}

// pathTarget is the field a recent or dropped path fills.
type pathTarget int

const (
	targetNone pathTarget = iota
	targetModel
	targetLabels
	targetInput
	targetOutput
)

// routePath decides where a recent or dropped path goes.
// Directories become inputs until one exists, then the output folder.
func routePath(path string, isDir, hasInputs bool) pathTarget {
	if isDir {
		if hasInputs {
			return targetOutput
		}
		return targetInput
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".onnx", ".ort":
		return targetModel
	case ".txt":
		return targetLabels
	}
	return targetNone
}
