package imageio

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"golang.org/x/image/bmp"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	writePNG(t, path, 5, 3)

	img, err := Decode(path)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 5 || b.Dy() != 3 {
		t.Errorf("bounds = %v, want 5x3", b)
	}
}

func TestDecode_BMP(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.bmp")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := bmp.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if _, err := Decode(path); err != nil {
		t.Errorf("Decode(bmp) error = %v", err)
	}
}

func TestDecode_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Decode(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("Decode() of missing file should fail")
	}

	bad := filepath.Join(dir, "bad.jpg")
	if err := os.WriteFile(bad, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(bad); err == nil {
		t.Error("Decode() of garbage should fail")
	}
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()

	got, err := UniquePath(dir, "cat.jpg")
	if err != nil || got != filepath.Join(dir, "cat.jpg") {
		t.Fatalf("UniquePath() = %q, %v", got, err)
	}

	os.WriteFile(filepath.Join(dir, "cat.jpg"), nil, 0644)
	os.WriteFile(filepath.Join(dir, "cat (1).jpg"), nil, 0644)

	got, _ = UniquePath(dir, "cat.jpg")
	if want := filepath.Join(dir, "cat (2).jpg"); got != want {
		t.Errorf("UniquePath() = %q, want %q", got, want)
	}
}

func TestCopyInto(t *testing.T) {
	src := filepath.Join(t.TempDir(), "photo.png")
	writePNG(t, src, 2, 2)
	original, _ := os.ReadFile(src)

	out := filepath.Join(t.TempDir(), "cats")

	first, err := CopyInto(src, out)
	if err != nil {
		t.Fatalf("CopyInto() error = %v", err)
	}
	if first != filepath.Join(out, "photo.png") {
		t.Errorf("first copy = %q", first)
	}

	second, err := CopyInto(src, out)
	if err != nil {
		t.Fatalf("CopyInto() error = %v", err)
	}
	if second != filepath.Join(out, "photo (1).png") {
		t.Errorf("second copy = %q", second)
	}

	copied, _ := os.ReadFile(second)
	if !bytes.Equal(copied, original) {
		t.Error("copied bytes differ from source")
	}
}

func TestCopyInto_Concurrent(t *testing.T) {
	src := filepath.Join(t.TempDir(), "same.png")
	writePNG(t, src, 1, 1)
	out := t.TempDir()

	const n = 8
	var wg sync.WaitGroup
	paths := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			paths[i], errs[i] = CopyInto(src, out)
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("CopyInto() error = %v", errs[i])
		}
		if seen[paths[i]] {
			t.Errorf("duplicate destination %q", paths[i])
		}
		seen[paths[i]] = true
	}
}

func TestThumbnail(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	thumb := Thumbnail(img, 64)

	b := thumb.Bounds()
	if b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("Thumbnail bounds = %dx%d, want 64x32", b.Dx(), b.Dy())
	}
}
