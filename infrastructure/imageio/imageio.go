// Package imageio reads source images and files them into output folders.
package imageio

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// maxCollisionSuffix bounds the " (n)" search in UniquePath.
	maxCollisionSuffix = 10000
	copyAttempts       = 64
)

// Decode opens and decodes an image file.
func Decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// UniquePath returns dir/name, or dir/"stem (n).ext" if that already exists.
func UniquePath(dir, name string) (string, error) {
	candidate := filepath.Join(dir, name)
	if _, err := os.Stat(candidate); os.IsNotExist(err) {
		return candidate, nil
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; n < maxCollisionSuffix; n++ {
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free file name for %s in %s", name, dir)
}

// CopyInto copies src into dir without overwriting and returns the destination path.
// The file bytes are copied unchanged.
func CopyInto(src, dir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	name := filepath.Base(src)
	for attempt := 0; attempt < copyAttempts; attempt++ {
		dst, err := UniquePath(dir, name)
		if err != nil {
			return "", err
		}

		// O_EXCL closes the window between UniquePath and create when workers race.
		out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", dst, err)
		}

		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			os.Remove(dst)
			return "", fmt.Errorf("failed to copy %s: %w", name, err)
		}
		if err := out.Close(); err != nil {
			return "", fmt.Errorf("failed to write %s: %w", dst, err)
		}
		return dst, nil
	}
	return "", fmt.Errorf("failed to copy %s: destination kept changing", name)
}

// Thumbnail scales img so that its longer side is size pixels.
func Thumbnail(img image.Image, size uint) image.Image {
	return resize.Thumbnail(size, size, img, resize.Bilinear)
}

// LoadThumbnail decodes path and returns its thumbnail.
func LoadThumbnail(path string, size uint) (image.Image, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return Thumbnail(img, size), nil
}
