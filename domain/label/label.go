// Package label parses labels files, the ordered list of class names a model predicts.
package label

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Common errors for labels files.
var (
	ErrEmpty     = errors.New("labels file contains no labels")
	ErrDuplicate = errors.New("duplicate label")
	ErrBlankLine = errors.New("blank line between labels")
)

// Set is an ordered, immutable list of class names.
// The index of a name is the model output index it corresponds to.
type Set struct {
	names []string
}

// Load reads one label per line. Lines are trimmed and trailing blank lines
// are ignored. Line i is always class index i, so a blank line before the last
// label is rejected. Two labels that map to the same output folder are
// rejected as duplicates.
func Load(r io.Reader) (*Set, error) {
	var lines []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}

	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil, ErrEmpty
	}

	seen := make(map[string]int, len(lines))
	folders := make(map[string]int, len(lines))
	for i, name := range lines {
		line := i + 1
		if name == "" {
			return nil, fmt.Errorf("%w on line %d", ErrBlankLine, line)
		}
		if prev, ok := seen[name]; ok {
			return nil, fmt.Errorf("%w %q on lines %d and %d", ErrDuplicate, name, prev, line)
		}
		seen[name] = line

		// Case-insensitive filesystems merge folders that differ only by case.
		folder := strings.ToLower(FolderName(name))
		if prev, ok := folders[folder]; ok {
			return nil, fmt.Errorf("%w: %q on line %d and %q on line %d share output folder %q",
				ErrDuplicate, lines[prev-1], prev, name, line, FolderName(name))
		}
		folders[folder] = line
	}

	return &Set{names: lines}, nil
}

// LoadFile reads a labels file from disk.
func LoadFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open labels file: %w", err)
	}
	defer f.Close()

	set, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// New builds a set from names that are already known to be valid.
func New(names ...string) *Set {
	s := &Set{names: make([]string, len(names))}
	copy(s.names, names)
	return s
}

// Len returns the number of labels.
func (s *Set) Len() int {
	return len(s.names)
}

// Name returns the label at index i.
func (s *Set) Name(i int) (string, bool) {
	if i < 0 || i >= len(s.names) {
		return "", false
	}
	return s.names[i], true
}

// Names returns a copy of all labels in index order.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// FolderName maps a label to a directory name that is valid on common filesystems.
func FolderName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))

	cleaned = strings.Trim(cleaned, ". ")
	if cleaned == "" {
		return "unlabeled"
	}
	return cleaned
}
