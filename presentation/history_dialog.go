package presentation

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"dotmini-mcx/domain/history"
)

// HistoryDialogConfig holds configuration for the history dialog.
type HistoryDialogConfig struct {
	Parent  fyne.Window
	History *history.Service
	Logger  *slog.Logger
}

// HistoryDialog lists recent classification runs.
type HistoryDialog struct {
	config    *HistoryDialogConfig
	window    fyne.Window
	list      *widget.List
	detail    *widget.Label
	deleteBtn *widget.Button

	runs     []*history.Run
	selected int
}

// ShowHistoryDialog opens the run history window.
func ShowHistoryDialog(cfg *HistoryDialogConfig) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	hd := &HistoryDialog{config: cfg, selected: -1}
	hd.window = fyne.CurrentApp().NewWindow(AppName + " History")
	hd.buildUI()
	hd.load()

	hd.window.Resize(fyne.NewSize(760, 480))
	hd.window.CenterOnScreen()
	hd.window.Show()
}

func (hd *HistoryDialog) buildUI() {
	hd.list = widget.NewList(
		func() int { return len(hd.runs) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(hd.runs) {
				obj.(*widget.Label).SetText(runSummary(hd.runs[id]))
			}
		},
	)
	hd.list.OnSelected = func(id widget.ListItemID) {
		hd.selected = id
		hd.detail.SetText(runDetail(hd.runs[id]))
		hd.deleteBtn.Enable()
	}

	hd.detail = widget.NewLabel("Select a run to see details")
	hd.detail.Wrapping = fyne.TextWrapWord

	refreshBtn := widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), hd.load)
	hd.deleteBtn = widget.NewButtonWithIcon("Delete", theme.DeleteIcon(), hd.deleteSelected)
	hd.deleteBtn.Disable()

	split := container.NewHSplit(hd.list, container.NewVScroll(hd.detail))
	split.SetOffset(0.55)

	hd.window.SetContent(container.NewBorder(
		nil,
		container.NewHBox(refreshBtn, hd.deleteBtn),
		nil, nil,
		split,
	))
}

func (hd *HistoryDialog) load() {
	if hd.config.History == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		runs, err := hd.config.History.ListRecent(ctx, history.DefaultListLimit)
		fyne.Do(func() {
			if err != nil {
				hd.config.Logger.Error("Failed to load history", "error", err)
				dialog.ShowError(err, hd.window)
				return
			}
			hd.runs = runs
			hd.selected = -1
			hd.list.UnselectAll()
			hd.deleteBtn.Disable()
			hd.detail.SetText("Select a run to see details")
			hd.list.Refresh()
		})
	}()
}

func (hd *HistoryDialog) deleteSelected() {
	if hd.selected < 0 || hd.selected >= len(hd.runs) {
		return
	}
	run := hd.runs[hd.selected]

	dialog.ShowConfirm("Delete Run", "Delete this run from history?", func(ok bool) {
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := hd.config.History.Delete(ctx, run.ID); err != nil {
			dialog.ShowError(fmt.Errorf("failed to delete run: %w", err), hd.window)
			return
		}
		hd.load()
	}, hd.window)
}

// runSummary renders one list row.
func runSummary(r *history.Run) string {
	line := fmt.Sprintf("%s  %-9s  %d/%d images",
		r.StartedAt.Local().Format("2006-01-02 15:04"), r.Status, r.Processed, r.Total)
	if top := r.TopClasses(); len(top) > 0 {
		if len(top) > 3 {
			top = append(top[:3:3], "…")
		}
		line += "  (" + strings.Join(top, ", ") + ")"
	}
	return line
}

// runDetail renders the detail pane for a run.
func runDetail(r *history.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s\n", r.Status)
	fmt.Fprintf(&b, "Started: %s\n", r.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(&b, "Duration: %s\n", r.Duration().Round(time.Millisecond))
	fmt.Fprintf(&b, "Images: %d processed, %d failed, %d total\n", r.Processed, r.Failed, r.Total)
	fmt.Fprintf(&b, "Batch size: %d\n", r.BatchSize)
	fmt.Fprintf(&b, "Model: %s\n", filepath.Base(r.ModelPath))
	fmt.Fprintf(&b, "Labels: %s\n", filepath.Base(r.LabelsPath))
	fmt.Fprintf(&b, "Output: %s\n", r.OutputFolder)
	for _, in := range r.InputFolders {
		fmt.Fprintf(&b, "Input: %s\n", in)
	}
	if r.Error != "" {
		fmt.Fprintf(&b, "Error: %s\n", r.Error)
	}
	if classes := r.TopClasses(); len(classes) > 0 {
		b.WriteString("\nClasses:\n")
		for _, c := range classes {
			fmt.Fprintf(&b, "  %s: %d\n", c, r.ClassCounts[c])
		}
	}
	return b.String()
}
