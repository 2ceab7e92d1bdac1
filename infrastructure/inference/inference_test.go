package inference

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestArgmax(t *testing.T) {
	tests := []struct {
		name    string
		scores  []float32
		wantIdx int
		wantVal float32
	}{
		{"single", []float32{0.3}, 0, 0.3},
		{"middle", []float32{0.1, 0.7, 0.2}, 1, 0.7},
		{"tie keeps first", []float32{0.5, 0.5}, 0, 0.5},
		{"negative", []float32{-3, -1, -2}, 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, val, err := Argmax(tt.scores)
			if err != nil {
				t.Fatalf("Argmax() error = %v", err)
			}
			if idx != tt.wantIdx || val != tt.wantVal {
				t.Errorf("Argmax() = %d, %v, want %d, %v", idx, val, tt.wantIdx, tt.wantVal)
			}
		})
	}

	if _, _, err := Argmax(nil); !errors.Is(err, ErrEmptyOutput) {
		t.Errorf("Argmax(nil) error = %v, want %v", err, ErrEmptyOutput)
	}
}

func TestCheckClassCount(t *testing.T) {
	if err := CheckClassCount(3, 3); err != nil {
		t.Errorf("CheckClassCount(3, 3) = %v", err)
	}
	if err := CheckClassCount(5, 3); err != nil {
		t.Errorf("CheckClassCount(5, 3) = %v", err)
	}

	err := CheckClassCount(2, 3)
	if err == nil || err.Error() != "model outputs 2 classes but labels file has 3" {
		t.Errorf("CheckClassCount(2, 3) = %v", err)
	}
}

func TestCheckModelPath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"model.onnx", false},
		{"MODEL.ONNX", false},
		{"model.ort", false},
		{"model.h5", true},
		{"model.tflite", true},
		{"model", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := CheckModelPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckModelPath(%q) = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnsupportedModel) {
				t.Errorf("error %v does not wrap ErrUnsupportedModel", err)
			}
		})
	}

	if err := CheckModelPath("model.h5"); !strings.Contains(err.Error(), "ONNX") {
		t.Errorf("h5 error should mention ONNX conversion: %v", err)
	}
}

func TestSpecFromShape(t *testing.T) {
	tests := []struct {
		name string
		dims []int64
		want InputSpec
	}{
		{"keras nhwc", []int64{-1, 224, 224, 3}, InputSpec{224, 224, 3, LayoutNHWC, 1, 0}},
		{"torch nchw", []int64{1, 3, 128, 96}, InputSpec{96, 128, 3, LayoutNCHW, 1, 0}},
		{"grayscale", []int64{1, 28, 28, 1}, InputSpec{28, 28, 1, LayoutNHWC, 1, 0}},
		{"dynamic size", []int64{-1, -1, -1, 3}, InputSpec{224, 224, 3, LayoutNHWC, 1, 0}},
		{"wrong rank", []int64{1, 1000}, DefaultInputSpec()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpecFromShape(tt.dims); got != tt.want {
				t.Errorf("SpecFromShape(%v) = %+v, want %+v", tt.dims, got, tt.want)
			}
		})
	}
}

func TestInputSpec_Shape(t *testing.T) {
	spec := InputSpec{Width: 4, Height: 2, Channels: 3, Layout: LayoutNCHW}
	want := []int64{1, 3, 2, 4}
	got := spec.Shape()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Shape() = %v, want %v", got, want)
		}
	}
}

func TestInputSpec_Validate(t *testing.T) {
	if err := DefaultInputSpec().Validate(); err != nil {
		t.Errorf("default spec invalid: %v", err)
	}
	bad := DefaultInputSpec()
	bad.Channels = 4
	if err := bad.Validate(); err == nil {
		t.Error("4 channels should be rejected")
	}
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestPreprocess_NHWC(t *testing.T) {
	spec := InputSpec{Width: 2, Height: 2, Channels: 3, Layout: LayoutNHWC, Scale: 1}
	data := Preprocess(solid(2, 2, color.RGBA{R: 255, G: 0, B: 51, A: 255}), spec)

	if len(data) != 12 {
		t.Fatalf("len = %d, want 12", len(data))
	}
	for px := 0; px < 4; px++ {
		r, g, b := data[px*3], data[px*3+1], data[px*3+2]
		if r != 1 || g != 0 || b != 0.2 {
			t.Errorf("pixel %d = (%v, %v, %v), want (1, 0, 0.2)", px, r, g, b)
		}
	}
}

func TestPreprocess_NCHW(t *testing.T) {
	spec := InputSpec{Width: 2, Height: 2, Channels: 3, Layout: LayoutNCHW, Scale: 1}
	data := Preprocess(solid(2, 2, color.RGBA{R: 255, G: 0, B: 0, A: 255}), spec)

	for i := 0; i < 4; i++ {
		if data[i] != 1 {
			t.Errorf("red plane[%d] = %v, want 1", i, data[i])
		}
		if data[4+i] != 0 || data[8+i] != 0 {
			t.Errorf("green/blue plane[%d] not zero", i)
		}
	}
}

func TestPreprocess_ScaleOffset(t *testing.T) {
	spec := InputSpec{Width: 1, Height: 1, Channels: 3, Layout: LayoutNHWC, Scale: 2, Offset: -1}
	data := Preprocess(solid(1, 1, color.White), spec)
	for i, v := range data {
		if v != 1 {
			t.Errorf("data[%d] = %v, want 1", i, v)
		}
	}

	data = Preprocess(solid(1, 1, color.Black), spec)
	for i, v := range data {
		if v != -1 {
			t.Errorf("data[%d] = %v, want -1", i, v)
		}
	}
}

func TestPreprocess_Resizes(t *testing.T) {
	spec := InputSpec{Width: 8, Height: 8, Channels: 1, Layout: LayoutNHWC, Scale: 1}
	data := Preprocess(solid(32, 20, color.White), spec)

	if len(data) != 64 {
		t.Fatalf("len = %d, want 64", len(data))
	}
	for i, v := range data {
		if v < 0.99 {
			t.Fatalf("data[%d] = %v, want ~1", i, v)
		}
	}
}

func TestParseSidecar(t *testing.T) {
	sc, err := ParseSidecar([]byte(`
inputName: input_1
outputName: predictions
inputShape: [1, 3, 160, 160]
layout: nchw
scale: 2
offset: -1
`))
	if err != nil {
		t.Fatalf("ParseSidecar() error = %v", err)
	}
	if sc.InputName != "input_1" || sc.OutputName != "predictions" {
		t.Errorf("names = %q, %q", sc.InputName, sc.OutputName)
	}

	spec := sc.Apply(DefaultInputSpec())
	want := InputSpec{Width: 160, Height: 160, Channels: 3, Layout: LayoutNCHW, Scale: 2, Offset: -1}
	if spec != want {
		t.Errorf("Apply() = %+v, want %+v", spec, want)
	}
}

func TestSidecar_ApplyNil(t *testing.T) {
	var sc *Sidecar
	if got := sc.Apply(DefaultInputSpec()); got != DefaultInputSpec() {
		t.Errorf("nil Apply() = %+v", got)
	}
}

func TestLoadSidecar(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "model.onnx")

	sc, err := LoadSidecar(model)
	if err != nil || sc != nil {
		t.Fatalf("LoadSidecar() without file = %v, %v, want nil, nil", sc, err)
	}

	if err := os.WriteFile(SidecarPath(model), []byte("layout: NHWC\n"), 0644); err != nil {
		t.Fatal(err)
	}
	sc, err = LoadSidecar(model)
	if err != nil || sc == nil || sc.Layout != LayoutNHWC {
		t.Errorf("LoadSidecar() = %+v, %v", sc, err)
	}

	if err := os.WriteFile(SidecarPath(model), []byte("inputShape: [oops"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSidecar(model); err == nil {
		t.Error("LoadSidecar() should fail on invalid YAML")
	}
}

func TestNewONNXClassifier_RejectsKeras(t *testing.T) {
	_, err := NewONNXClassifier(filepath.Join(t.TempDir(), "model.h5"), 3, nil)
	if !errors.Is(err, ErrUnsupportedModel) {
		t.Errorf("NewONNXClassifier(.h5) error = %v, want %v", err, ErrUnsupportedModel)
	}
}

func TestOutputSize(t *testing.T) {
	if got := outputSize([]int64{1, 10}, 3); got != 10 {
		t.Errorf("outputSize = %d, want 10", got)
	}
	if got := outputSize([]int64{-1, -1}, 3); got != 3 {
		t.Errorf("dynamic outputSize = %d, want 3", got)
	}
	if got := outputSize(nil, 4); got != 4 {
		t.Errorf("empty outputSize = %d, want 4", got)
	}
}
