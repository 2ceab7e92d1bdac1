package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dotmini-mcx/domain/settings"
)

func TestFileSettingsRepository_MissingFile(t *testing.T) {
	repo := NewFileSettingsRepository(filepath.Join(t.TempDir(), "settings.yaml"))

	s, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.BatchSize != settings.DefaultBatchSize || s.Brightness != settings.DefaultBrightness {
		t.Errorf("Load() = %+v, want defaults", s)
	}
}

func TestFileSettingsRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	repo := NewFileSettingsRepository(path)

	s := settings.Default()
	s.ModelPath = "/models/m.onnx"
	s.InputFolders = []string{"/a", "/b"}
	s.ThemeMode = settings.ThemeDark
	s.SetBrightness(120)
	s.AddRecent("/models/m.onnx")
	_ = s.SetBatchSize(32)

	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.ModelPath != s.ModelPath || got.ThemeMode != settings.ThemeDark ||
		got.Brightness != 120 || got.BatchSize != 32 || len(got.InputFolders) != 2 ||
		len(got.RecentPaths) != 1 {
		t.Errorf("Load() = %+v, want %+v", got, s)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("expected only settings.yaml in folder, found %d entries", len(entries))
	}
}

func TestFileSettingsRepository_NormalizesOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "batchSize: 7\nbrightness: 300\nthemeMode: neon\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := NewFileSettingsRepository(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.BatchSize != settings.DefaultBatchSize || s.Brightness != settings.MaxBrightness || s.ThemeMode != settings.ThemeAuto {
		t.Errorf("Load() = %+v, want normalized values", s)
	}
}

func TestFileSettingsRepository_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	if err := os.WriteFile(path, []byte("batchSize: [1, 2"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewFileSettingsRepository(path).Load(context.Background()); err == nil {
		t.Error("Load() should fail on invalid YAML")
	}
}
