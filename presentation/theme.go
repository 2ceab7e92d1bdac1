package presentation

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"dotmini-mcx/domain/settings"
)

// Theme wraps the default Fyne theme with a forced variant and a brightness factor.
type Theme struct {
	mode   settings.ThemeMode
	factor float64
}

var _ fyne.Theme = (*Theme)(nil)

// NewTheme creates a theme for the given mode and brightness factor (1.0 = unchanged).
func NewTheme(mode settings.ThemeMode, factor float64) *Theme {
	if factor <= 0 {
		factor = 1
	}
	return &Theme{mode: mode, factor: factor}
}

// ThemeFor builds the theme described by s.
func ThemeFor(s *settings.Settings) *Theme {
	return NewTheme(s.ThemeMode, s.BrightnessFactor())
}

// Mode returns the configured mode.
func (t *Theme) Mode() settings.ThemeMode {
	return t.mode
}

func (t *Theme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	c := theme.DefaultTheme().Color(name, resolveVariant(t.mode, variant))
	return AdjustColor(c, t.factor)
}

func (t *Theme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *Theme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *Theme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}

// resolveVariant returns the variant to render; auto follows the system.
func resolveVariant(mode settings.ThemeMode, system fyne.ThemeVariant) fyne.ThemeVariant {
	switch mode {
	case settings.ThemeLight:
		return theme.VariantLight
	case settings.ThemeDark:
		return theme.VariantDark
	default:
		return system
	}
}

// AdjustColor scales the RGB channels of c by factor, clamped to 255. Alpha is kept.
func AdjustColor(c color.Color, factor float64) color.Color {
	if factor == 1 || c == nil {
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return color.NRGBA{
		R: scaleChannel(n.R, factor),
		G: scaleChannel(n.G, factor),
		B: scaleChannel(n.B, factor),
		A: n.A,
	}
}

func scaleChannel(v uint8, factor float64) uint8 {
	f := float64(v) * factor
	switch {
	case f >= 255:
		return 255
	case f <= 0:
		return 0
	default:
		return uint8(f + 0.5)
	}
}
