package presentation

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const splashIconSize = 96

// SplashWindow is shown while startup connects to storage and loads the runtime.
type SplashWindow struct {
	window fyne.Window
	status *widget.Label
}

// NewSplashWindow creates a borderless splash window when the driver supports it.
func NewSplashWindow(app fyne.App) *SplashWindow {
	var w fyne.Window
	if drv, ok := app.Driver().(desktop.Driver); ok {
		w = drv.CreateSplashWindow()
	} else {
		w = app.NewWindow(AppName)
	}

	s := &SplashWindow{
		window: w,
		status: widget.NewLabelWithStyle("Loading application...", fyne.TextAlignCenter, fyne.TextStyle{}),
	}

	iconRes := app.Icon()
	if iconRes == nil {
		iconRes = theme.FyneLogo()
	}
	icon := canvas.NewImageFromResource(iconRes)
	icon.FillMode = canvas.ImageFillContain
	icon.SetMinSize(fyne.NewSize(splashIconSize, splashIconSize))

	title := canvas.NewText(AppName, theme.Color(theme.ColorNameForeground))
	title.TextSize = 28
	title.TextStyle = fyne.TextStyle{Bold: true}
	title.Alignment = fyne.TextAlignCenter

	w.SetContent(container.NewPadded(container.NewVBox(
		layout.NewSpacer(),
		container.NewCenter(icon),
		title,
		widget.NewLabelWithStyle(versionText(), fyne.TextAlignCenter, fyne.TextStyle{Italic: true}),
		layout.NewSpacer(),
		s.status,
		widget.NewProgressBarInfinite(),
	)))
	w.Resize(fyne.NewSize(500, 300))
	w.CenterOnScreen()
	return s
}

// Show displays the splash window.
func (s *SplashWindow) Show() {
	s.window.Show()
}

// SetStatus updates the status line. Safe to call from any goroutine.
func (s *SplashWindow) SetStatus(text string) {
	fyne.Do(func() {
		s.status.SetText(text)
	})
}

// Close closes the splash window. Call it on the UI thread after another
// window is shown, so the app keeps a window open.
func (s *SplashWindow) Close() {
	s.window.Close()
}

func versionText() string {
	return "Version " + AppVersion
}
