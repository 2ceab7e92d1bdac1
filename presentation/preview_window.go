package presentation

import (
	"image"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"dotmini-mcx/domain/classification"
	"dotmini-mcx/infrastructure/imageio"
)

// PreviewWindow shows a classified image at full size. It is reused and hidden on close.
type PreviewWindow struct {
	window    fyne.Window
	canvas    *ImageCanvas
	caption   *widget.Label
	isVisible bool
	logger    *slog.Logger

	// onStep moves the selection by delta (-1 previous, +1 next).
	onStep func(delta int)
	// current guards against stale decodes finishing after a newer selection.
	current string
}

// NewPreviewWindow creates a hidden preview window.
func NewPreviewWindow(app fyne.App, logger *slog.Logger) *PreviewWindow {
	if logger == nil {
		logger = slog.Default()
	}

	w := &PreviewWindow{
		window:  app.NewWindow("Preview"),
		canvas:  NewImageCanvas(),
		caption: widget.NewLabel(""),
		logger:  logger,
	}
	w.caption.Alignment = fyne.TextAlignCenter

	w.window.SetContent(container.NewBorder(nil, w.caption, nil, nil, w.canvas))
	w.window.Resize(fyne.NewSize(640, 520))
	w.window.SetCloseIntercept(w.Hide)
	w.window.Canvas().SetOnTypedKey(func(e *fyne.KeyEvent) {
		switch e.Name {
		case fyne.KeyLeft, fyne.KeyUp:
			w.step(-1)
		case fyne.KeyRight, fyne.KeyDown, fyne.KeySpace:
			w.step(1)
		case fyne.KeyEscape:
			w.Hide()
		}
	})
	w.canvas.SetOnTapped(func() { w.step(1) })

	return w
}

// SetOnStep sets the handler for previous/next navigation.
func (w *PreviewWindow) SetOnStep(fn func(delta int)) {
	w.onStep = fn
}

func (w *PreviewWindow) step(delta int) {
	if w.onStep != nil {
		w.onStep(delta)
	}
}

// ShowResult loads the image behind r and shows the window. Must run on the UI thread.
func (w *PreviewWindow) ShowResult(r classification.Result) {
	path := r.OutputPath
	if path == "" {
		path = r.ImagePath
	}
	w.current = path
	w.window.SetTitle(r.FileName())
	w.caption.SetText(r.String())
	w.Show()

	go func() {
		img, err := imageio.Decode(path)
		if err != nil {
			w.logger.Warn("Failed to load preview", "path", path, "error", err)
			return
		}
		fyne.Do(func() {
			if w.current == path {
				w.canvas.SetImage(img)
			}
		})
	}()
}

// Show displays the preview window.
func (w *PreviewWindow) Show() {
	if !w.isVisible {
		w.window.Show()
		w.isVisible = true
	}
}

// Hide hides the preview window.
func (w *PreviewWindow) Hide() {
	if w.isVisible {
		w.window.Hide()
		w.isVisible = false
	}
}

// Close closes the preview window for good.
func (w *PreviewWindow) Close() {
	w.window.SetCloseIntercept(nil)
	w.window.Close()
}

// IsVisible returns whether the window is visible.
func (w *PreviewWindow) IsVisible() bool {
	return w.isVisible
}

// ImageCanvas is a tappable widget that scales an image to fit.
type ImageCanvas struct {
	widget.BaseWidget
	canvas   *canvas.Image
	onTapped func()
}

// NewImageCanvas creates an empty image canvas.
func NewImageCanvas() *ImageCanvas {
	ic := &ImageCanvas{
		canvas: canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1))),
	}
	ic.ExtendBaseWidget(ic)
	ic.canvas.FillMode = canvas.ImageFillContain
	ic.canvas.ScaleMode = canvas.ImageScaleSmooth
	return ic
}

// SetImage sets the displayed image.
func (c *ImageCanvas) SetImage(img image.Image) {
	if img == nil {
		return
	}
	c.canvas.Image = img
	c.canvas.Refresh()
}

// Image returns the current image.
func (c *ImageCanvas) Image() image.Image {
	return c.canvas.Image
}

// CreateRenderer creates the widget renderer.
func (c *ImageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.canvas)
}

// SetOnTapped sets the tap handler.
func (c *ImageCanvas) SetOnTapped(fn func()) {
	c.onTapped = fn
}

// Tapped handles tap events.
func (c *ImageCanvas) Tapped(*fyne.PointEvent) {
	if c.onTapped != nil {
		c.onTapped()
	}
}

// MinSize returns the minimum size of the canvas.
func (c *ImageCanvas) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

// stepIndex moves index by delta within [0, n), wrapping around.
func stepIndex(index, delta, n int) int {
	if n <= 0 {
		return -1
	}
	return ((index+delta)%n + n) % n
}
