// Package settings defines persisted user preferences.
package settings

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Preference bounds and defaults.
const (
	DefaultBatchSize  = 16
	DefaultBrightness = 100
	MinBrightness     = 50
	MaxBrightness     = 150
	BrightnessStep    = 10
	MaxRecentPaths    = 10
)

// AllowedBatchSizes lists the batch sizes offered to the user.
var AllowedBatchSizes = []int{1, 4, 8, 16, 32, 64}

// ThemeMode selects the UI colour variant.
type ThemeMode string

const (
	ThemeAuto  ThemeMode = "auto"
	ThemeLight ThemeMode = "light"
	ThemeDark  ThemeMode = "dark"
)

// Valid reports whether m is a known mode.
func (m ThemeMode) Valid() bool {
	switch m {
	case ThemeAuto, ThemeLight, ThemeDark:
		return true
	}
	return false
}

// Next cycles auto → light → dark → auto.
func (m ThemeMode) Next() ThemeMode {
	switch m {
	case ThemeAuto:
		return ThemeLight
	case ThemeLight:
		return ThemeDark
	default:
		return ThemeAuto
	}
}

// Settings holds everything remembered between launches.
type Settings struct {
	BatchSize    int       `yaml:"batchSize"`
	ModelPath    string    `yaml:"modelPath,omitempty"`
	LabelsPath   string    `yaml:"labelsPath,omitempty"`
	OutputFolder string    `yaml:"outputFolder,omitempty"`
	InputFolders []string  `yaml:"inputFolders,omitempty"`
	RecentPaths  []string  `yaml:"recentPaths,omitempty"`
	ThemeMode    ThemeMode `yaml:"themeMode"`
	Brightness   int       `yaml:"brightness"`
	LicenseKey   string    `yaml:"licenseKey,omitempty"`
	LicenseHash  string    `yaml:"licenseHash,omitempty"`
}

// Default returns settings for a fresh install.
func Default() *Settings {
	return &Settings{
		BatchSize:  DefaultBatchSize,
		ThemeMode:  ThemeAuto,
		Brightness: DefaultBrightness,
	}
}

// Repository loads and stores settings.
type Repository interface {
	// Load returns the stored settings, or defaults when none exist.
	Load(ctx context.Context) (*Settings, error)

	// Save persists s.
	Save(ctx context.Context, s *Settings) error
}

// AddRecent moves path to the front of the recent list.
func (s *Settings) AddRecent(path string) {
	path = strings.TrimSpace(path)
	if path == "" {
		return
	}

	recent := make([]string, 0, MaxRecentPaths)
	recent = append(recent, path)
	for _, p := range s.RecentPaths {
		if p != path && len(recent) < MaxRecentPaths {
			recent = append(recent, p)
		}
	}
	s.RecentPaths = recent
}

// ClearRecent empties the recent list.
func (s *Settings) ClearRecent() {
	s.RecentPaths = nil
}

// SetBrightness stores v clamped to [MinBrightness, MaxBrightness].
func (s *Settings) SetBrightness(v int) {
	s.Brightness = clamp(v, MinBrightness, MaxBrightness)
}

// Dim lowers brightness by one step.
func (s *Settings) Dim() {
	s.SetBrightness(s.Brightness - BrightnessStep)
}

// Brighten raises brightness by one step.
func (s *Settings) Brighten() {
	s.SetBrightness(s.Brightness + BrightnessStep)
}

// ResetBrightness restores the default brightness.
func (s *Settings) ResetBrightness() {
	s.Brightness = DefaultBrightness
}

// BrightnessFactor returns brightness as a multiplier (1.0 at 100%).
func (s *Settings) BrightnessFactor() float64 {
	return float64(s.Brightness) / 100
}

// SetBatchSize stores n if it is one of AllowedBatchSizes.
func (s *Settings) SetBatchSize(n int) error {
	if !slices.Contains(AllowedBatchSizes, n) {
		return fmt.Errorf("batch size %d not allowed, choose one of %v", n, AllowedBatchSizes)
	}
	s.BatchSize = n
	return nil
}

// Normalize repairs out-of-range values, e.g. after loading a hand-edited file.
func (s *Settings) Normalize() {
	if !slices.Contains(AllowedBatchSizes, s.BatchSize) {
		s.BatchSize = DefaultBatchSize
	}
	if !s.ThemeMode.Valid() {
		s.ThemeMode = ThemeAuto
	}
	if s.Brightness == 0 {
		s.Brightness = DefaultBrightness
	}
	s.Brightness = clamp(s.Brightness, MinBrightness, MaxBrightness)

	recent := s.RecentPaths
	s.RecentPaths = nil
	for i := len(recent) - 1; i >= 0; i-- {
		s.AddRecent(recent[i])
	}

	folders := s.InputFolders[:0]
	for _, f := range s.InputFolders {
		if strings.TrimSpace(f) != "" && !slices.Contains(folders, f) {
			folders = append(folders, f)
		}
	}
	s.InputFolders = folders
}

// Clone creates a deep copy.
func (s *Settings) Clone() *Settings {
	clone := *s
	clone.InputFolders = slices.Clone(s.InputFolders)
	clone.RecentPaths = slices.Clone(s.RecentPaths)
	return &clone
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
