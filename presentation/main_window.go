package presentation

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"dotmini-mcx/application"
	"dotmini-mcx/core/event"
	"dotmini-mcx/core/state"
	"dotmini-mcx/domain/classification"
	"dotmini-mcx/domain/history"
	"dotmini-mcx/domain/settings"
	"dotmini-mcx/infrastructure/imageio"
)

const (
	thumbnailSize    = 48
	thumbnailWorkers = 4
	defaultExport    = "classification_results.csv"
)

// resultItem is one row of the results list.
type resultItem struct {
	result classification.Result
	err    error
	thumb  image.Image
}

// MainWindow is the main application window.
type MainWindow struct {
	app    fyne.App
	window fyne.Window
	bridge *UIEventBridge
	logger *slog.Logger

	settingsRepo settings.Repository
	history      *history.Service
	settings     *settings.Settings

	// UI components - inputs
	folderList     *widget.List
	inputFolders   []string
	selectedFolder int
	removeBtn      *widget.Button
	clearInputsBtn *widget.Button
	addFolderBtn   *widget.Button
	modelEntry     *widget.Entry
	labelsEntry    *widget.Entry
	outputEntry    *widget.Entry
	browseBtns     []*widget.Button

	// UI components - run
	classifyBtn *widget.Button
	cancelBtn   *widget.Button
	progress    *widget.ProgressBar
	status      *widget.Label

	// UI components - results
	resultList *widget.List
	statsLabel *widget.Label
	exportBtn  *widget.Button
	clearBtn   *widget.Button
	preview    *PreviewWindow

	// Data, touched on the UI thread only
	results []*resultItem
	stats   *classification.Stats
	jobID   string
	running bool

	previewIndex int

	thumbSem    chan struct{}
	cleanupOnce sync.Once
}

// MainWindowConfig holds configuration for MainWindow.
type MainWindowConfig struct {
	App          fyne.App
	Bridge       *UIEventBridge
	Logger       *slog.Logger
	SettingsRepo settings.Repository
	Settings     *settings.Settings
	History      *history.Service
}

// NewMainWindow creates a new main window.
func NewMainWindow(cfg *MainWindowConfig) *MainWindow {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Settings == nil {
		cfg.Settings = settings.Default()
	}

	w := &MainWindow{
		app:            cfg.App,
		window:         cfg.App.NewWindow(AppName),
		bridge:         cfg.Bridge,
		logger:         cfg.Logger,
		settingsRepo:   cfg.SettingsRepo,
		history:        cfg.History,
		settings:       cfg.Settings,
		selectedFolder: -1,
		stats:          classification.NewStats(),
		thumbSem:       make(chan struct{}, thumbnailWorkers),
	}

	w.preview = NewPreviewWindow(cfg.App, cfg.Logger)
	w.preview.SetOnStep(func(delta int) {
		w.selectResult(stepIndex(w.previewIndex, delta, len(w.results)))
	})

	w.init()
	w.setupEventCallbacks()
	w.setupShortcuts()
	w.loadSettings()
	w.applyTheme()

	w.window.SetOnDropped(w.handleDrop)
	w.window.SetOnClosed(func() {
		w.Cleanup()
		cfg.App.Quit()
	})

	return w
}

func (w *MainWindow) init() {
	toolbar := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentSaveIcon(), w.handleExport),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.HistoryIcon(), w.showHistory),
		widget.NewToolbarAction(theme.SettingsIcon(), w.showSettings),
		widget.NewToolbarSpacer(),
		widget.NewToolbarAction(theme.ColorPaletteIcon(), w.toggleTheme),
		widget.NewToolbarAction(theme.HelpIcon(), func() { showDocumentation(w.window) }),
	)

	left := container.NewBorder(nil, w.createRunPanel(), nil, nil, w.createInputPanel())
	right := w.createResultsPanel()

	split := container.NewHSplit(left, right)
	split.SetOffset(0.42)

	w.status = widget.NewLabel("Ready")
	content := container.NewBorder(toolbar, w.status, nil, nil, split)

	w.window.SetMainMenu(w.buildMenu())
	w.window.SetContent(content)
	w.window.Resize(fyne.NewSize(1100, 720))
}

func (w *MainWindow) createInputPanel() fyne.CanvasObject {
	w.folderList = widget.NewList(
		func() int { return len(w.inputFolders) },
		func() fyne.CanvasObject {
			return container.NewHBox(widget.NewIcon(theme.FolderIcon()), widget.NewLabel(""))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(w.inputFolders) {
				obj.(*fyne.Container).Objects[1].(*widget.Label).SetText(w.inputFolders[id])
			}
		},
	)
	w.folderList.OnSelected = func(id widget.ListItemID) {
		w.selectedFolder = id
		if !w.running {
			w.removeBtn.Enable()
		}
	}
	w.folderList.OnUnselected = func(widget.ListItemID) {
		w.selectedFolder = -1
		w.removeBtn.Disable()
	}

	w.addFolderBtn = widget.NewButtonWithIcon("Add", theme.ContentAddIcon(), w.pickInputFolder)
	w.removeBtn = widget.NewButtonWithIcon("Remove", theme.ContentRemoveIcon(), w.removeSelectedFolder)
	w.removeBtn.Disable()
	w.clearInputsBtn = widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), w.clearInputFolders)

	folders := container.NewBorder(
		widget.NewLabelWithStyle("Input Folders", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(w.addFolderBtn, w.removeBtn, layout.NewSpacer(), w.clearInputsBtn),
		nil, nil,
		w.folderList,
	)

	w.modelEntry = widget.NewEntry()
	w.modelEntry.SetPlaceHolder("Model file (*.onnx)")
	w.labelsEntry = widget.NewEntry()
	w.labelsEntry.SetPlaceHolder("Labels file (*.txt)")
	w.outputEntry = widget.NewEntry()
	w.outputEntry.SetPlaceHolder("Output folder")

	modelBtn := widget.NewButtonWithIcon("", theme.FileIcon(), func() {
		w.pickFile([]string{".onnx", ".ort"}, w.modelEntry)
	})
	labelsBtn := widget.NewButtonWithIcon("", theme.FileTextIcon(), func() {
		w.pickFile([]string{".txt"}, w.labelsEntry)
	})
	outputBtn := widget.NewButtonWithIcon("", theme.FolderOpenIcon(), w.pickOutputFolder)
	w.browseBtns = []*widget.Button{modelBtn, labelsBtn, outputBtn}

	form := widget.NewForm(
		widget.NewFormItem("Model", container.NewBorder(nil, nil, nil, modelBtn, w.modelEntry)),
		widget.NewFormItem("Labels", container.NewBorder(nil, nil, nil, labelsBtn, w.labelsEntry)),
		widget.NewFormItem("Output", container.NewBorder(nil, nil, nil, outputBtn, w.outputEntry)),
	)

	return container.NewBorder(nil, form, nil, nil, folders)
}

func (w *MainWindow) createRunPanel() fyne.CanvasObject {
	w.classifyBtn = widget.NewButtonWithIcon("Classify", theme.MediaPlayIcon(), w.handleClassify)
	w.classifyBtn.Importance = widget.HighImportance
	w.cancelBtn = widget.NewButtonWithIcon("Cancel", theme.MediaStopIcon(), w.handleCancel)
	w.cancelBtn.Disable()

	w.progress = widget.NewProgressBar()
	w.progress.TextFormatter = func() string {
		return fmt.Sprintf("%.0f/%.0f", w.progress.Value, w.progress.Max)
	}

	return container.NewVBox(
		widget.NewSeparator(),
		container.NewGridWithColumns(2, w.classifyBtn, w.cancelBtn),
		w.progress,
	)
}

func (w *MainWindow) createResultsPanel() fyne.CanvasObject {
	w.resultList = widget.NewList(
		func() int { return len(w.results) },
		func() fyne.CanvasObject {
			img := canvas.NewImageFromResource(theme.FileImageIcon())
			img.FillMode = canvas.ImageFillContain
			img.SetMinSize(fyne.NewSquareSize(thumbnailSize))
			return container.NewBorder(nil, nil, img, nil, widget.NewLabel(""))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(w.results) {
				return
			}
			w.renderResult(w.results[id], obj.(*fyne.Container))
		},
	)

	w.resultList.OnSelected = func(id widget.ListItemID) {
		if id >= len(w.results) {
			return
		}
		w.previewIndex = id
		if item := w.results[id]; item.err == nil {
			w.preview.ShowResult(item.result)
		}
	}

	w.statsLabel = widget.NewLabel(w.stats.String())
	w.statsLabel.Wrapping = fyne.TextWrapWord

	w.exportBtn = widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), w.handleExport)
	w.clearBtn = widget.NewButtonWithIcon("Clear", theme.DeleteIcon(), w.clearResults)

	return container.NewBorder(
		widget.NewLabelWithStyle("Results", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewVBox(
			w.statsLabel,
			container.NewHBox(layout.NewSpacer(), w.clearBtn, w.exportBtn),
		),
		nil, nil,
		w.resultList,
	)
}

func (w *MainWindow) renderResult(item *resultItem, row *fyne.Container) {
	var img *canvas.Image
	var label *widget.Label
	for _, o := range row.Objects {
		switch v := o.(type) {
		case *canvas.Image:
			img = v
		case *widget.Label:
			label = v
		}
	}

	switch {
	case item.err != nil:
		img.Image = nil
		img.Resource = theme.ErrorIcon()
		label.SetText(fmt.Sprintf("%s: %v", item.result.FileName(), item.err))
	case item.thumb != nil:
		img.Resource = nil
		img.Image = item.thumb
		label.SetText(item.result.String())
	default:
		img.Image = nil
		img.Resource = theme.FileImageIcon()
		label.SetText(item.result.String())
	}
	img.Refresh()
}

func (w *MainWindow) buildMenu() *fyne.MainMenu {
	recent := fyne.NewMenuItem("Recent Files", nil)
	recent.ChildMenu = w.buildRecentMenu()

	file := fyne.NewMenu("File",
		recent,
		fyne.NewMenuItem("Settings", w.showSettings),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Results", w.handleExport),
	)

	view := fyne.NewMenu("View",
		fyne.NewMenuItem("Toggle Theme", w.toggleTheme),
		fyne.NewMenuItem("History", w.showHistory),
	)

	help := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() { showAbout(w.window) }),
		fyne.NewMenuItem("Documentation", func() { showDocumentation(w.window) }),
	)

	return fyne.NewMainMenu(file, view, help)
}

func (w *MainWindow) buildRecentMenu() *fyne.Menu {
	if len(w.settings.RecentPaths) == 0 {
		none := fyne.NewMenuItem("No recent files", nil)
		none.Disabled = true
		return fyne.NewMenu("", none)
	}

	items := make([]*fyne.MenuItem, 0, len(w.settings.RecentPaths)+2)
	for _, path := range w.settings.RecentPaths {
		items = append(items, fyne.NewMenuItem(filepath.Base(path), func() {
			w.openRecent(path)
		}))
	}
	items = append(items,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear Recent Files", func() {
			w.settings.ClearRecent()
			w.refreshMenu()
			w.saveSettingsAsync()
		}),
	)
	return fyne.NewMenu("", items...)
}

func (w *MainWindow) refreshMenu() {
	w.window.SetMainMenu(w.buildMenu())
}

func (w *MainWindow) setupShortcuts() {
	c := w.window.Canvas()
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyE, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
		w.handleExport()
	})
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyT, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
		w.toggleTheme()
	})
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyComma, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
		w.showSettings()
	})
	c.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyQ, Modifier: fyne.KeyModifierShortcutDefault}, func(fyne.Shortcut) {
		w.window.Close()
	})
}

func (w *MainWindow) setupEventCallbacks() {
	if w.bridge == nil {
		return
	}

	w.bridge.SetCallbacks(&UICallbacks{
		OnJobStarted: func(jobID string, req classification.Request) {
			// UI update must run on main thread
			fyne.Do(func() {
				w.jobID = jobID
				w.setRunning(true)
				w.progress.Max = 1
				w.progress.SetValue(0)
				w.status.SetText("Loading model...")
			})
		},
		OnJobStateChanged: func(jobID string, oldState, newState state.JobState) {
			w.logger.Debug("Job state changed", "job_id", jobID, "from", oldState, "to", newState)
			if newState == state.StateCancelling {
				fyne.Do(func() {
					w.cancelBtn.Disable()
					w.status.SetText("Cancelling...")
				})
			}
		},
		OnModelLoaded: func(jobID string, labels []string, inputShape []int64) {
			w.logger.Info("Model loaded", "job_id", jobID, "classes", len(labels), "input_shape", inputShape)
		},
		OnImagesDiscovered: func(jobID string, total int) {
			fyne.Do(func() {
				w.progress.Max = float64(max(total, 1))
				w.progress.SetValue(0)
				w.status.SetText(ProgressStatus(0, total))
			})
		},
		OnImageClassified: func(jobID string, result classification.Result) {
			fyne.Do(func() {
				w.addResult(&resultItem{result: result})
			})
		},
		OnImageFailed: func(jobID, path string, err error) {
			w.logger.Warn("Image failed", "job_id", jobID, "path", path, "error", err)
			fyne.Do(func() {
				w.addResult(&resultItem{result: classification.Result{ImagePath: path}, err: err})
			})
		},
		OnProgress: func(jobID string, processed, total int) {
			fyne.Do(func() {
				w.progress.Max = float64(max(total, 1))
				w.progress.SetValue(float64(processed))
				w.status.SetText(ProgressStatus(processed, total))
			})
		},
		OnJobFinished: func(jobID string, reason event.StopReason, stats *classification.Stats, err error) {
			fyne.Do(func() {
				w.setRunning(false)
				processed := 0
				if stats != nil {
					processed = stats.Total()
				}
				w.status.SetText(FinishedStatus(reason, processed, err))
				if reason == event.StopReasonError && err != nil {
					dialog.ShowError(err, w.window)
				}
			})
		},
		OnResultsExported: func(jobID, path string, count int) {
			fyne.Do(func() {
				w.status.SetText(fmt.Sprintf("Exported %d results to %s", count, path))
				dialog.ShowInformation("Export Complete",
					fmt.Sprintf("Exported %d results to:\n%s", count, path), w.window)
			})
		},
		OnOperationFailed: func(jobID, operation string, err error) {
			w.logger.Error("Operation failed", "job_id", jobID, "operation", operation, "error", err)
			fyne.Do(func() {
				dialog.ShowError(err, w.window)
			})
		},
	})
}

// Inputs

func (w *MainWindow) pickInputFolder() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, w.window)
			return
		}
		if uri == nil {
			return
		}
		w.addInputFolder(uri.Path())
	}, w.window)
}

func (w *MainWindow) pickOutputFolder() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, w.window)
			return
		}
		if uri == nil {
			return
		}
		w.outputEntry.SetText(uri.Path())
	}, w.window)
}

func (w *MainWindow) pickFile(extensions []string, target *widget.Entry) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w.window)
			return
		}
		if rc == nil {
			return
		}
		path := rc.URI().Path()
		_ = rc.Close()
		target.SetText(path)
	}, w.window)
	d.SetFilter(storage.NewExtensionFileFilter(extensions))
	d.Show()
}

func (w *MainWindow) addInputFolder(path string) {
	if path == "" || slices.Contains(w.inputFolders, path) {
		return
	}
	w.inputFolders = append(w.inputFolders, path)
	w.folderList.Refresh()
}

func (w *MainWindow) removeSelectedFolder() {
	if w.selectedFolder < 0 || w.selectedFolder >= len(w.inputFolders) {
		return
	}
	w.inputFolders = slices.Delete(w.inputFolders, w.selectedFolder, w.selectedFolder+1)
	w.folderList.UnselectAll()
	w.folderList.Refresh()
}

func (w *MainWindow) clearInputFolders() {
	w.inputFolders = nil
	w.folderList.UnselectAll()
	w.folderList.Refresh()
}

func (w *MainWindow) handleDrop(_ fyne.Position, uris []fyne.URI) {
	for _, uri := range uris {
		path := uri.Path()
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if info.IsDir() {
			w.addInputFolder(path)
			continue
		}
		w.applyPath(path, false)
	}
}

func (w *MainWindow) openRecent(path string) {
	info, err := os.Stat(path)
	if err != nil {
		dialog.ShowInformation("Recent Files", "This path no longer exists:\n"+path, w.window)
		return
	}
	w.applyPath(path, info.IsDir())
}

func (w *MainWindow) applyPath(path string, isDir bool) {
	switch routePath(path, isDir, len(w.inputFolders) > 0) {
	case targetModel:
		w.modelEntry.SetText(path)
	case targetLabels:
		w.labelsEntry.SetText(path)
	case targetInput:
		w.addInputFolder(path)
	case targetOutput:
		w.outputEntry.SetText(path)
	}
}

// Run

func (w *MainWindow) currentRequest() classification.Request {
	return classification.Request{
		ModelPath:    w.modelEntry.Text,
		LabelsPath:   w.labelsEntry.Text,
		InputFolders: slices.Clone(w.inputFolders),
		OutputFolder: w.outputEntry.Text,
		BatchSize:    w.settings.BatchSize,
	}
}

func (w *MainWindow) handleClassify() {
	if w.bridge == nil || w.running {
		return
	}

	req := w.currentRequest()
	if err := req.Validate(); err != nil {
		dialog.ShowInformation("Missing Input", capitalize(err.Error())+".", w.window)
		return
	}

	w.rememberRequest(req)
	w.clearResults()

	if err := w.bridge.StartClassification(req); err != nil {
		if errors.Is(err, application.ErrJobRunning) {
			dialog.ShowInformation("Classification Running", "A classification is already running.", w.window)
			return
		}
		w.logger.Error("Failed to start classification", "error", err)
		dialog.ShowError(err, w.window)
	}
}

func (w *MainWindow) handleCancel() {
	if w.bridge == nil || w.jobID == "" {
		return
	}
	if err := w.bridge.CancelClassification(w.jobID); err != nil {
		w.logger.Warn("Failed to cancel job", "job_id", w.jobID, "error", err)
	}
}

func (w *MainWindow) setRunning(running bool) {
	w.running = running

	toggle := func(wid fyne.Disableable, enabled bool) {
		if enabled {
			wid.Enable()
		} else {
			wid.Disable()
		}
	}

	toggle(w.classifyBtn, !running)
	toggle(w.cancelBtn, running)
	toggle(w.addFolderBtn, !running)
	toggle(w.clearInputsBtn, !running)
	toggle(w.removeBtn, !running && w.selectedFolder >= 0)
	toggle(w.clearBtn, !running)
	toggle(w.exportBtn, !running)
	for _, b := range w.browseBtns {
		toggle(b, !running)
	}
	for _, e := range []*widget.Entry{w.modelEntry, w.labelsEntry, w.outputEntry} {
		toggle(e, !running)
	}
}

// Results

func (w *MainWindow) addResult(item *resultItem) {
	w.results = append(w.results, item)
	index := len(w.results) - 1
	if item.err == nil {
		w.stats.Add(item.result.Class)
		w.statsLabel.SetText(w.stats.String())
		w.loadThumbnail(item, index)
	}
	w.resultList.Refresh()
	w.resultList.ScrollToBottom()
}

// loadThumbnail decodes a thumbnail in the background and refreshes its row.
func (w *MainWindow) loadThumbnail(item *resultItem, index int) {
	path := item.result.OutputPath
	if path == "" {
		path = item.result.ImagePath
	}

	go func() {
		w.thumbSem <- struct{}{}
		thumb, err := imageio.LoadThumbnail(path, thumbnailSize)
		<-w.thumbSem
		if err != nil {
			w.logger.Debug("Failed to load thumbnail", "path", path, "error", err)
			return
		}

		fyne.Do(func() {
			// The list may have been cleared meanwhile.
			if index < len(w.results) && w.results[index] == item {
				item.thumb = thumb
				w.resultList.RefreshItem(index)
			}
		})
	}()
}

func (w *MainWindow) selectResult(index int) {
	if index < 0 || index >= len(w.results) {
		return
	}
	w.resultList.Select(index)
	w.resultList.ScrollTo(index)
}

func (w *MainWindow) clearResults() {
	w.preview.Hide()
	w.resultList.UnselectAll()
	w.previewIndex = 0
	w.results = nil
	w.stats.Reset()
	w.statsLabel.SetText(w.stats.String())
	w.resultList.Refresh()
	w.progress.SetValue(0)
	if !w.running {
		w.status.SetText("Ready")
	}
}

func (w *MainWindow) handleExport() {
	if w.running {
		return
	}
	if w.jobID == "" || w.stats.Total() == 0 {
		dialog.ShowInformation("No Results", "There are no results to export.", w.window)
		return
	}

	jobID := w.jobID
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w.window)
			return
		}
		if wc == nil {
			return
		}
		path := wc.URI().Path()
		_ = wc.Close()

		go func() {
			// Failures come back as OperationFailed events.
			if err := w.bridge.ExportResults(jobID, path); err != nil {
				w.logger.Warn("Export failed", "path", path, "error", err)
			}
		}()
	}, w.window)
	d.SetFileName(defaultExport)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
	d.Show()
}

// Settings and dialogs

func (w *MainWindow) loadSettings() {
	s := w.settings
	w.modelEntry.SetText(s.ModelPath)
	w.labelsEntry.SetText(s.LabelsPath)
	w.outputEntry.SetText(s.OutputFolder)
	w.inputFolders = slices.Clone(s.InputFolders)
	w.folderList.Refresh()
	w.refreshMenu()
}

// rememberRequest stores the request paths as defaults and recent entries.
func (w *MainWindow) rememberRequest(req classification.Request) {
	s := w.settings
	s.ModelPath = req.ModelPath
	s.LabelsPath = req.LabelsPath
	s.OutputFolder = req.OutputFolder
	s.InputFolders = slices.Clone(req.InputFolders)

	for _, p := range req.InputFolders {
		s.AddRecent(p)
	}
	s.AddRecent(req.OutputFolder)
	s.AddRecent(req.LabelsPath)
	s.AddRecent(req.ModelPath)

	w.refreshMenu()
	w.saveSettingsAsync()
}

func (w *MainWindow) applyTheme() {
	w.app.Settings().SetTheme(ThemeFor(w.settings))
}

func (w *MainWindow) toggleTheme() {
	w.settings.ThemeMode = w.settings.ThemeMode.Next()
	w.logger.Info("Theme changed", "mode", w.settings.ThemeMode)
	w.applyTheme()
	w.status.SetText(fmt.Sprintf("Theme: %s", w.settings.ThemeMode))
	w.saveSettingsAsync()
}

func (w *MainWindow) showSettings() {
	ShowSettingsDialog(&SettingsDialogConfig{
		Parent:   w.window,
		Settings: w.settings,
		OnPreview: func(s *settings.Settings) {
			w.app.Settings().SetTheme(ThemeFor(s))
		},
		OnSave: func(s *settings.Settings) {
			w.settings.ThemeMode = s.ThemeMode
			w.settings.Brightness = s.Brightness
			w.settings.BatchSize = s.BatchSize
			w.applyTheme()
			w.saveSettingsAsync()
		},
		OnCancel: w.applyTheme,
	})
}

func (w *MainWindow) showHistory() {
	if w.history == nil {
		dialog.ShowInformation("History", "Run history is not available.", w.window)
		return
	}
	ShowHistoryDialog(&HistoryDialogConfig{
		Parent:  w.window,
		History: w.history,
		Logger:  w.logger,
	})
}

// snapshotSettings copies the current form into the settings and returns a clone.
func (w *MainWindow) snapshotSettings() *settings.Settings {
	w.settings.ModelPath = w.modelEntry.Text
	w.settings.LabelsPath = w.labelsEntry.Text
	w.settings.OutputFolder = w.outputEntry.Text
	w.settings.InputFolders = slices.Clone(w.inputFolders)
	return w.settings.Clone()
}

func (w *MainWindow) saveSettingsAsync() {
	snapshot := w.snapshotSettings()
	go w.saveSettings(snapshot)
}

func (w *MainWindow) saveSettings(s *settings.Settings) {
	if w.settingsRepo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := w.settingsRepo.Save(ctx, s); err != nil {
		w.logger.Error("Failed to save settings", "error", err)
	}
}

// Show displays the main window.
func (w *MainWindow) Show() {
	w.window.Show()
}

// ShowAndRun displays the window and runs the application loop.
func (w *MainWindow) ShowAndRun() {
	w.window.ShowAndRun()
}

// Cleanup cancels any running job and saves settings.
func (w *MainWindow) Cleanup() {
	w.cleanupOnce.Do(func() {
		w.logger.Info("Cleaning up resources")

		if w.bridge != nil {
			if err := w.bridge.CancelAll(); err != nil {
				w.logger.Warn("Failed to cancel jobs", "error", err)
			}
			w.bridge.Close()
		}

		w.preview.Close()
		w.saveSettings(w.snapshotSettings())
		w.logger.Info("Cleanup completed")
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
