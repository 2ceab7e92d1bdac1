package inference

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sidecar overrides model metadata. It is read from "<model>.yaml" when present.
type Sidecar struct {
	InputName  string   `yaml:"inputName"`
	OutputName string   `yaml:"outputName"`
	InputShape []int64  `yaml:"inputShape"`
	Layout     Layout   `yaml:"layout"`
	Scale      *float32 `yaml:"scale"`
	Offset     *float32 `yaml:"offset"`
}

// SidecarPath returns the metadata path for a model file.
func SidecarPath(modelPath string) string {
	return modelPath + ".yaml"
}

// LoadSidecar reads the sidecar for modelPath. A missing file returns nil, nil.
func LoadSidecar(modelPath string) (*Sidecar, error) {
	data, err := os.ReadFile(SidecarPath(modelPath))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read model metadata: %w", err)
	}
	return ParseSidecar(data)
}

// ParseSidecar decodes sidecar YAML.
func ParseSidecar(data []byte) (*Sidecar, error) {
	var sc Sidecar
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse model metadata: %w", err)
	}
	sc.Layout = Layout(strings.ToUpper(string(sc.Layout)))
	return &sc, nil
}

// Apply overlays the sidecar onto spec.
func (sc *Sidecar) Apply(spec InputSpec) InputSpec {
	if sc == nil {
		return spec
	}
	if len(sc.InputShape) > 0 {
		spec = SpecFromShape(sc.InputShape)
	}
	if sc.Layout != "" && spec.Layout != sc.Layout {
		spec.Layout = sc.Layout
	}
	if sc.Scale != nil {
		spec.Scale = *sc.Scale
	}
	if sc.Offset != nil {
		spec.Offset = *sc.Offset
	}
	return spec
}
