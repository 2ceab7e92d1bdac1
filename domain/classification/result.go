package classification

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Result is the outcome of classifying a single image.
type Result struct {
	ImagePath  string
	Class      string
	Confidence float32
	OutputPath string
}

// FileName returns the base name of the source image.
func (r *Result) FileName() string {
	return filepath.Base(r.ImagePath)
}

// ConfidenceString formats the confidence with two decimals.
func (r *Result) ConfidenceString() string {
	return fmt.Sprintf("%.2f", r.Confidence)
}

// String renders the result as "name → class (confidence: 0.97)".
func (r *Result) String() string {
	return fmt.Sprintf("%s → %s (confidence: %s)", r.FileName(), r.Class, r.ConfidenceString())
}

// ClassShare is one entry of a class distribution.
type ClassShare struct {
	Class   string
	Count   int
	Percent float64
}

// Stats accumulates per-class counts. It is safe for concurrent use.
type Stats struct {
	counts map[string]int
	total  int
	mu     sync.RWMutex
}

// NewStats creates an empty Stats.
func NewStats() *Stats {
	return &Stats{counts: make(map[string]int)}
}

// Add records one image classified as class.
func (s *Stats) Add(class string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[class]++
	s.total++
}

// Reset clears all counts.
func (s *Stats) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = make(map[string]int)
	s.total = 0
}

// Total returns the number of recorded images.
func (s *Stats) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Counts returns a copy of the per-class counts.
func (s *Stats) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

// Distribution returns the classes sorted by count descending, then by name.
func (s *Stats) Distribution() []ClassShare {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shares := make([]ClassShare, 0, len(s.counts))
	for class, count := range s.counts {
		share := ClassShare{Class: class, Count: count}
		if s.total > 0 {
			share.Percent = float64(count) / float64(s.total) * 100
		}
		shares = append(shares, share)
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Count != shares[j].Count {
			return shares[i].Count > shares[j].Count
		}
		return shares[i].Class < shares[j].Class
	})
	return shares
}

// String renders a one-line summary for the status area.
func (s *Stats) String() string {
	if s.Total() == 0 {
		return "No results yet"
	}

	dist := s.Distribution()
	parts := make([]string, len(dist))
	for i, share := range dist {
		parts[i] = fmt.Sprintf("%s: %d (%.1f%%)", share.Class, share.Count, share.Percent)
	}
	return fmt.Sprintf("Total processed: %d images | Classes: %s", s.Total(), strings.Join(parts, ", "))
}
