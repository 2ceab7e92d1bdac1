package inference

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ONNXConfig configures ONNX Runtime model loading.
type ONNXConfig struct {
	// SharedLibraryPath is the onnxruntime library to load. Empty uses the default search.
	SharedLibraryPath string
	Logger            *slog.Logger
}

var (
	envOnce sync.Once
	envErr  error
)

func initEnvironment(libPath string) error {
	envOnce.Do(func() {
		if libPath != "" {
			ort.SetSharedLibraryPath(libPath)
		}
		if err := ort.InitializeEnvironment(); err != nil {
			envErr = fmt.Errorf("failed to initialize ONNX Runtime: %w", err)
		}
	})
	return envErr
}

// Shutdown releases the ONNX Runtime environment. Call once at process exit.
func Shutdown() error {
	if !ort.IsInitialized() {
		return nil
	}
	return ort.DestroyEnvironment()
}

// NewONNXFactory returns a Factory that opens ONNX models.
func NewONNXFactory(cfg *ONNXConfig) Factory {
	if cfg == nil {
		cfg = &ONNXConfig{}
	}
	return func(modelPath string, numClasses int) (Classifier, error) {
		return NewONNXClassifier(modelPath, numClasses, cfg)
	}
}

// ONNXClassifier runs an ONNX image classifier.
type ONNXClassifier struct {
	session    *ort.AdvancedSession
	input      *ort.Tensor[float32]
	output     *ort.Tensor[float32]
	spec       InputSpec
	numOutputs int
	logger     *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewONNXClassifier loads modelPath and checks it predicts at least numClasses classes.
func NewONNXClassifier(modelPath string, numClasses int, cfg *ONNXConfig) (*ONNXClassifier, error) {
	if cfg == nil {
		cfg = &ONNXConfig{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := CheckModelPath(modelPath); err != nil {
		return nil, err
	}

	sidecar, err := LoadSidecar(modelPath)
	if err != nil {
		return nil, err
	}

	if err := initEnvironment(cfg.SharedLibraryPath); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read model %s: %w", modelPath, err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("model %s has no inputs or outputs", modelPath)
	}

	inputName, outputName := inputs[0].Name, outputs[0].Name
	spec := SpecFromShape(inputs[0].Dimensions)
	if sidecar != nil {
		if sidecar.InputName != "" {
			inputName = sidecar.InputName
		}
		if sidecar.OutputName != "" {
			outputName = sidecar.OutputName
		}
		spec = sidecar.Apply(spec)
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", modelPath, err)
	}

	numOutputs := outputSize(findInfo(outputs, outputName).Dimensions, numClasses)
	if err := CheckClassCount(numOutputs, numClasses); err != nil {
		return nil, err
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(spec.Shape()...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(numOutputs)))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{inputName}, []string{outputName},
		[]ort.ArbitraryTensor{input}, []ort.ArbitraryTensor{output},
		nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	logger.Info("Model loaded",
		"path", modelPath,
		"input", inputName,
		"output", outputName,
		"shape", spec.Shape(),
		"layout", spec.Layout,
		"classes", numOutputs)

	return &ONNXClassifier{
		session:    session,
		input:      input,
		output:     output,
		spec:       spec,
		numOutputs: numOutputs,
		logger:     logger,
	}, nil
}

// Classify preprocesses img and runs the model. Preprocessing runs outside the session lock.
func (c *ONNXClassifier) Classify(ctx context.Context, img image.Image) (*Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := Preprocess(img, c.spec)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	copy(c.input.GetData(), data)
	if err := c.session.Run(); err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	scores := make([]float32, c.numOutputs)
	copy(scores, c.output.GetData())
	c.mu.Unlock()

	idx, conf, err := Argmax(scores)
	if err != nil {
		return nil, err
	}
	return &Prediction{Index: idx, Confidence: conf, Scores: scores}, nil
}

// InputShape returns the input tensor shape.
func (c *ONNXClassifier) InputShape() []int64 {
	return c.spec.Shape()
}

// Close destroys the session and its tensors.
func (c *ONNXClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var err error
	if c.session != nil {
		err = c.session.Destroy()
	}
	if c.input != nil {
		c.input.Destroy()
	}
	if c.output != nil {
		c.output.Destroy()
	}
	return err
}

func findInfo(infos []ort.InputOutputInfo, name string) ort.InputOutputInfo {
	for _, info := range infos {
		if info.Name == name {
			return info
		}
	}
	return infos[0]
}

// outputSize returns the class dimension of an output shape, or fallback when dynamic.
func outputSize(dims ort.Shape, fallback int) int {
	if len(dims) == 0 {
		return fallback
	}
	last := dims[len(dims)-1]
	if last <= 0 {
		return fallback
	}
	return int(last)
}

var _ Classifier = (*ONNXClassifier)(nil)
