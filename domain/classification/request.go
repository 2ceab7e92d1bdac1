// Package classification defines classification requests, results and statistics.
package classification

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultBatchSize is used when a request does not specify a positive batch size.
const DefaultBatchSize = 16

// Validation errors, checked in this order by Request.Validate.
var (
	ErrNoInputFolders = errors.New("please select at least one input folder")
	ErrNoModel        = errors.New("please select a model file")
	ErrNoLabels       = errors.New("please select a labels file")
	ErrNoOutputFolder = errors.New("please select an output folder")
)

// ImageExtensions are the file extensions picked up from input folders.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// Request describes a classification run.
type Request struct {
	ModelPath    string
	LabelsPath   string
	InputFolders []string
	OutputFolder string
	BatchSize    int
}

// Validate returns the first missing input.
func (r *Request) Validate() error {
	if len(nonBlank(r.InputFolders)) == 0 {
		return ErrNoInputFolders
	}
	if strings.TrimSpace(r.ModelPath) == "" {
		return ErrNoModel
	}
	if strings.TrimSpace(r.LabelsPath) == "" {
		return ErrNoLabels
	}
	if strings.TrimSpace(r.OutputFolder) == "" {
		return ErrNoOutputFolder
	}
	return nil
}

// EffectiveBatchSize returns BatchSize, or DefaultBatchSize when unset.
func (r *Request) EffectiveBatchSize() int {
	if r.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return r.BatchSize
}

// IsImageFile reports whether path has one of ImageExtensions (case-insensitive).
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// SkipFunc is told about entries below an input folder that could not be read.
type SkipFunc func(path string, err error)

// DiscoverImages walks every folder recursively and returns the image files found.
// Overlapping folders yield each file once; the result is sorted.
// An unreadable input folder is an error. Unreadable entries below it are
// skipped and reported to skipped, which may be nil.
func DiscoverImages(folders []string, skipped SkipFunc) ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	for _, folder := range nonBlank(folders) {
		info, err := os.Stat(folder)
		if err != nil {
			return nil, fmt.Errorf("input folder %s: %w", folder, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("input folder %s: not a directory", folder)
		}

		err = filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == folder {
					return err
				}
				if skipped != nil {
					skipped(path, err)
				}
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !IsImageFile(path) {
				return nil
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				abs = filepath.Clean(path)
			}
			if _, ok := seen[abs]; ok {
				return nil
			}
			seen[abs] = struct{}{}
			files = append(files, abs)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", folder, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// Batches splits items into consecutive chunks of at most size elements.
func Batches(items []string, size int) [][]string {
	if size <= 0 {
		size = DefaultBatchSize
	}

	batches := make([][]string, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}

func nonBlank(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
