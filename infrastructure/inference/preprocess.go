package inference

import (
	"fmt"
	"image"

	"github.com/nfnt/resize"
)

// Layout is the memory order of an image tensor.
type Layout string

const (
	LayoutNHWC Layout = "NHWC"
	LayoutNCHW Layout = "NCHW"
)

// Default input geometry when the model leaves it dynamic.
const (
	DefaultImageSize = 224
	DefaultChannels  = 3
)

// InputSpec describes how an image becomes a model input.
type InputSpec struct {
	Width    int
	Height   int
	Channels int
	Layout   Layout
	// Scale and Offset map a pixel v in [0,255] to v/255*Scale+Offset.
	Scale  float32
	Offset float32
}

// DefaultInputSpec is a 224x224 RGB NHWC input normalized to [0,1].
func DefaultInputSpec() InputSpec {
	return InputSpec{
		Width:    DefaultImageSize,
		Height:   DefaultImageSize,
		Channels: DefaultChannels,
		Layout:   LayoutNHWC,
		Scale:    1,
	}
}

// Size returns the number of float32 values for one image.
func (s InputSpec) Size() int {
	return s.Width * s.Height * s.Channels
}

// Shape returns the tensor shape for a batch of one.
func (s InputSpec) Shape() []int64 {
	if s.Layout == LayoutNCHW {
		return []int64{1, int64(s.Channels), int64(s.Height), int64(s.Width)}
	}
	return []int64{1, int64(s.Height), int64(s.Width), int64(s.Channels)}
}

// Validate checks that s can be used for preprocessing.
func (s InputSpec) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("invalid input size %dx%d", s.Width, s.Height)
	}
	if s.Channels != 1 && s.Channels != 3 {
		return fmt.Errorf("unsupported channel count %d", s.Channels)
	}
	if s.Layout != LayoutNHWC && s.Layout != LayoutNCHW {
		return fmt.Errorf("unsupported layout %q", s.Layout)
	}
	return nil
}

// SpecFromShape derives an InputSpec from a model input shape.
// Dynamic dimensions (<=0) fall back to the defaults.
func SpecFromShape(dims []int64) InputSpec {
	spec := DefaultInputSpec()
	if len(dims) != 4 {
		return spec
	}

	isChannels := func(d int64) bool { return d == 1 || d == 3 }

	var h, w, c int64
	switch {
	case isChannels(dims[3]):
		spec.Layout = LayoutNHWC
		h, w, c = dims[1], dims[2], dims[3]
	case isChannels(dims[1]):
		spec.Layout = LayoutNCHW
		c, h, w = dims[1], dims[2], dims[3]
	default:
		return spec
	}

	if h > 0 {
		spec.Height = int(h)
	}
	if w > 0 {
		spec.Width = int(w)
	}
	if c > 0 {
		spec.Channels = int(c)
	}
	return spec
}

// Preprocess resizes img to the input geometry and returns the normalized tensor data.
func Preprocess(img image.Image, spec InputSpec) []float32 {
	out := make([]float32, spec.Size())
	PreprocessInto(out, img, spec)
	return out
}

// PreprocessInto writes the normalized tensor data for img into dst.
// dst must hold at least spec.Size() values.
func PreprocessInto(dst []float32, img image.Image, spec InputSpec) {
	resized := img
	b := img.Bounds()
	if b.Dx() != spec.Width || b.Dy() != spec.Height {
		resized = resize.Resize(uint(spec.Width), uint(spec.Height), img, resize.Bilinear)
	}
	rb := resized.Bounds()

	plane := spec.Width * spec.Height
	norm := func(v uint32) float32 {
		return float32(v>>8)/255*spec.Scale + spec.Offset
	}

	for y := 0; y < spec.Height; y++ {
		for x := 0; x < spec.Width; x++ {
			r, g, bl, _ := resized.At(rb.Min.X+x, rb.Min.Y+y).RGBA()
			px := y*spec.Width + x

			if spec.Channels == 1 {
				gray := (299*r + 587*g + 114*bl) / 1000
				dst[px] = norm(gray)
				continue
			}

			rgb := [3]float32{norm(r), norm(g), norm(bl)}
			for c := 0; c < 3; c++ {
				if spec.Layout == LayoutNCHW {
					dst[c*plane+px] = rgb[c]
				} else {
					dst[px*3+c] = rgb[c]
				}
			}
		}
	}
}
