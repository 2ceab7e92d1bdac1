// Package inference runs image classification models.
package inference

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

// Common errors for model loading and execution.
var (
	ErrUnsupportedModel = errors.New("unsupported model format")
	ErrEmptyOutput      = errors.New("model produced no scores")
	ErrClosed           = errors.New("classifier is closed")
)

// Prediction is the top class for one image.
type Prediction struct {
	Index      int
	Confidence float32
	Scores     []float32
}

// Classifier predicts a class index for an image.
// Implementations must be safe for concurrent use.
type Classifier interface {
	Classify(ctx context.Context, img image.Image) (*Prediction, error)
	// InputShape returns the model input shape, batch dimension first.
	InputShape() []int64
	Close() error
}

// Factory opens a model expected to predict numClasses classes.
type Factory func(modelPath string, numClasses int) (Classifier, error)

// Argmax returns the index and value of the largest score.
func Argmax(scores []float32) (int, float32, error) {
	if len(scores) == 0 {
		return 0, 0, ErrEmptyOutput
	}

	best := 0
	for i, v := range scores {
		if v > scores[best] {
			best = i
		}
	}
	return best, scores[best], nil
}

// CheckClassCount verifies the model output covers every label.
func CheckClassCount(outputs, labels int) error {
	if outputs < labels {
		return fmt.Errorf("model outputs %d classes but labels file has %d", outputs, labels)
	}
	return nil
}

// CheckModelPath rejects model files that cannot be executed here.
func CheckModelPath(path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".onnx", ".ort":
		return nil
	case ".h5", ".keras", ".pb", ".tflite":
		return fmt.Errorf("%w %q: convert the model to ONNX first (for example with tf2onnx: python -m tf2onnx.convert --keras model%s --output model.onnx)",
			ErrUnsupportedModel, ext, ext)
	default:
		return fmt.Errorf("%w %q: expected an .onnx file", ErrUnsupportedModel, ext)
	}
}
