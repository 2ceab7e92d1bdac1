package classification

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
)

func TestRequest_Validate(t *testing.T) {
	full := Request{
		ModelPath:    "model.onnx",
		LabelsPath:   "labels.txt",
		InputFolders: []string{"in"},
		OutputFolder: "out",
	}

	tests := []struct {
		name    string
		mutate  func(r *Request)
		wantErr error
	}{
		{"valid", func(r *Request) {}, nil},
		{"no inputs", func(r *Request) { r.InputFolders = nil }, ErrNoInputFolders},
		{"blank inputs", func(r *Request) { r.InputFolders = []string{" "} }, ErrNoInputFolders},
		{"no model", func(r *Request) { r.ModelPath = "" }, ErrNoModel},
		{"no labels", func(r *Request) { r.LabelsPath = "" }, ErrNoLabels},
		{"no output", func(r *Request) { r.OutputFolder = "" }, ErrNoOutputFolder},
		{"inputs checked first", func(r *Request) { r.InputFolders = nil; r.ModelPath = "" }, ErrNoInputFolders},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := full
			tt.mutate(&r)
			if err := r.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequest_EffectiveBatchSize(t *testing.T) {
	r := &Request{}
	if got := r.EffectiveBatchSize(); got != DefaultBatchSize {
		t.Errorf("EffectiveBatchSize() = %d, want %d", got, DefaultBatchSize)
	}
	r.BatchSize = 4
	if got := r.EffectiveBatchSize(); got != 4 {
		t.Errorf("EffectiveBatchSize() = %d, want 4", got)
	}
}

func TestIsImageFile(t *testing.T) {
	tests := map[string]bool{
		"a.jpg":      true,
		"a.JPEG":     true,
		"dir/a.png":  true,
		"a.bmp":      true,
		"a.gif":      false,
		"a.txt":      false,
		"jpg":        false,
		"a.jpg.json": false,
	}
	for path, want := range tests {
		if got := IsImageFile(path); got != want {
			t.Errorf("IsImageFile(%q) = %v, want %v", path, got, want)
		}
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverImages(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jpg"))
	touch(t, filepath.Join(root, "b.PNG"))
	touch(t, filepath.Join(root, "notes.txt"))
	touch(t, filepath.Join(root, "sub", "c.bmp"))
	touch(t, filepath.Join(root, "sub", "deeper", "d.jpeg"))

	// Overlapping folders must not duplicate files.
	files, err := DiscoverImages([]string{root, filepath.Join(root, "sub"), ""}, nil)
	if err != nil {
		t.Fatalf("DiscoverImages() error = %v", err)
	}

	if len(files) != 4 {
		t.Fatalf("DiscoverImages() returned %d files, want 4: %v", len(files), files)
	}

	for i := 1; i < len(files); i++ {
		if files[i-1] >= files[i] {
			t.Errorf("result not sorted: %q >= %q", files[i-1], files[i])
		}
	}
}

func TestDiscoverImages_MissingFolder(t *testing.T) {
	_, err := DiscoverImages([]string{filepath.Join(t.TempDir(), "missing")}, nil)
	if err == nil {
		t.Error("expected error for missing folder")
	}
}

func TestDiscoverImages_FileNotFolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.jpg")
	touch(t, path)

	if _, err := DiscoverImages([]string{path}, nil); err == nil {
		t.Error("expected error when input is a file")
	}
}

func TestDiscoverImages_SkipsUnreadableSubfolder(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root can read any directory")
	}

	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jpg"))
	locked := filepath.Join(root, ".Trashes")
	touch(t, filepath.Join(locked, "b.jpg"))
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	var skippedPaths []string
	files, err := DiscoverImages([]string{root}, func(path string, err error) {
		skippedPaths = append(skippedPaths, path)
	})
	if err != nil {
		t.Fatalf("DiscoverImages() error = %v", err)
	}

	if len(files) != 1 || filepath.Base(files[0]) != "a.jpg" {
		t.Errorf("files = %v, want only a.jpg", files)
	}
	if len(skippedPaths) != 1 || skippedPaths[0] != locked {
		t.Errorf("skipped = %v, want [%s]", skippedPaths, locked)
	}
}

func TestDiscoverImages_UnreadableRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root can read any directory")
	}

	root := t.TempDir()
	touch(t, filepath.Join(root, "a.jpg"))
	if err := os.Chmod(root, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(root, 0755) })

	if _, err := DiscoverImages([]string{root}, nil); err == nil {
		t.Error("expected error for unreadable input folder")
	}
}

func TestBatches(t *testing.T) {
	items := []string{"1", "2", "3", "4", "5"}

	tests := []struct {
		size  int
		sizes []int
	}{
		{2, []int{2, 2, 1}},
		{5, []int{5}},
		{10, []int{5}},
		{1, []int{1, 1, 1, 1, 1}},
	}

	for _, tt := range tests {
		got := Batches(items, tt.size)
		if len(got) != len(tt.sizes) {
			t.Fatalf("Batches(size=%d) returned %d batches, want %d", tt.size, len(got), len(tt.sizes))
		}
		for i, b := range got {
			if len(b) != tt.sizes[i] {
				t.Errorf("Batches(size=%d)[%d] has %d items, want %d", tt.size, i, len(b), tt.sizes[i])
			}
		}
	}

	if got := Batches(nil, 4); len(got) != 0 {
		t.Errorf("Batches(nil) = %v, want empty", got)
	}
}

func TestResult_Format(t *testing.T) {
	r := &Result{ImagePath: filepath.Join("in", "cat.jpg"), Class: "cat", Confidence: 0.9671}

	if got := r.FileName(); got != "cat.jpg" {
		t.Errorf("FileName() = %q, want cat.jpg", got)
	}
	if got := r.ConfidenceString(); got != "0.97" {
		t.Errorf("ConfidenceString() = %q, want 0.97", got)
	}
	if got := r.String(); got != "cat.jpg → cat (confidence: 0.97)" {
		t.Errorf("String() = %q", got)
	}
}

func TestStats(t *testing.T) {
	s := NewStats()
	if s.String() != "No results yet" {
		t.Errorf("empty String() = %q", s.String())
	}

	for _, c := range []string{"dog", "cat", "cat", "bird", "cat"} {
		s.Add(c)
	}

	if s.Total() != 5 {
		t.Fatalf("Total() = %d, want 5", s.Total())
	}

	dist := s.Distribution()
	want := []ClassShare{
		{Class: "cat", Count: 3, Percent: 60},
		{Class: "bird", Count: 1, Percent: 20},
		{Class: "dog", Count: 1, Percent: 20},
	}
	for i, w := range want {
		if dist[i] != w {
			t.Errorf("Distribution()[%d] = %+v, want %+v", i, dist[i], w)
		}
	}

	wantStr := "Total processed: 5 images | Classes: cat: 3 (60.0%), bird: 1 (20.0%), dog: 1 (20.0%)"
	if s.String() != wantStr {
		t.Errorf("String() = %q, want %q", s.String(), wantStr)
	}

	s.Reset()
	if s.Total() != 0 || len(s.Counts()) != 0 {
		t.Error("Reset() did not clear stats")
	}
}

func TestStats_Concurrent(t *testing.T) {
	s := NewStats()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add("x")
		}()
	}
	wg.Wait()

	if s.Counts()["x"] != 50 {
		t.Errorf("Counts()[x] = %d, want 50", s.Counts()["x"])
	}
}
