// Package export writes classification results to files.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dotmini-mcx/domain/classification"
)

// ErrNoResults is returned when there is nothing to export.
var ErrNoResults = errors.New("no results to export")

// Header is the first CSV row.
var Header = []string{"Filename", "Class", "Confidence"}

// Format is an export file format.
type Format string

const (
	FormatCSV Format = "csv"
)

// FormatFor picks the format for a destination path.
// CSV is the only format, so unknown extensions also get CSV.
func FormatFor(path string) Format {
	return FormatCSV
}

// WriteCSV writes results with a header row.
func WriteCSV(w io.Writer, results []classification.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range results {
		r := &results[i]
		if err := cw.Write([]string{r.FileName(), r.Class, r.ConfidenceString()}); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile exports results to path and returns the number of rows written.
func WriteFile(path string, results []classification.Result) (int, error) {
	if len(results) == 0 {
		return 0, ErrNoResults
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create export folder: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create export file: %w", err)
	}

	switch FormatFor(path) {
	case FormatCSV:
		err = WriteCSV(f, results)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("failed to export results: %w", err)
	}
	return len(results), nil
}
