package presentation

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"dotmini-mcx/domain/settings"
)

// SettingsDialogConfig holds configuration for the settings dialog.
type SettingsDialogConfig struct {
	Parent   fyne.Window
	Settings *settings.Settings
	// OnPreview runs while the user edits, so theme changes show immediately.
	OnPreview func(s *settings.Settings)
	// OnSave receives the edited copy when the user saves.
	OnSave func(s *settings.Settings)
	// OnCancel runs when the dialog is dismissed without saving.
	OnCancel func()
}

// SettingsDialog edits theme, brightness and batch size on a copy of the settings.
type SettingsDialog struct {
	config  *SettingsDialogConfig
	draft   *settings.Settings
	slider  *widget.Slider
	percent *widget.Label
}

var themeModeLabels = map[settings.ThemeMode]string{
	settings.ThemeAuto:  "Auto (use system theme)",
	settings.ThemeLight: "Light",
	settings.ThemeDark:  "Dark",
}

// ShowSettingsDialog displays the settings dialog.
func ShowSettingsDialog(cfg *SettingsDialogConfig) {
	sd := &SettingsDialog{
		config: cfg,
		draft:  cfg.Settings.Clone(),
	}

	d := dialog.NewCustomConfirm(AppName+" Settings", "Save", "Cancel", sd.buildUI(), func(save bool) {
		if save {
			if cfg.OnSave != nil {
				cfg.OnSave(sd.draft)
			}
			return
		}
		if cfg.OnCancel != nil {
			cfg.OnCancel()
		}
	}, cfg.Parent)
	d.Resize(fyne.NewSize(450, 380))
	d.Show()
}

func (sd *SettingsDialog) buildUI() fyne.CanvasObject {
	// Theme
	modes := []settings.ThemeMode{settings.ThemeAuto, settings.ThemeLight, settings.ThemeDark}
	options := make([]string, len(modes))
	for i, m := range modes {
		options[i] = themeModeLabels[m]
	}
	themeRadio := widget.NewRadioGroup(options, func(selected string) {
		for _, m := range modes {
			if themeModeLabels[m] == selected {
				sd.draft.ThemeMode = m
			}
		}
		sd.preview()
	})
	themeRadio.Required = true
	themeRadio.SetSelected(themeModeLabels[sd.draft.ThemeMode])

	// Brightness
	sd.percent = widget.NewLabel("")
	sd.slider = widget.NewSlider(settings.MinBrightness, settings.MaxBrightness)
	sd.slider.Step = settings.BrightnessStep
	sd.slider.SetValue(float64(sd.draft.Brightness))
	sd.slider.OnChanged = func(v float64) {
		sd.draft.SetBrightness(int(v))
		sd.syncBrightness()
	}
	dimBtn := widget.NewButton("Dim", func() {
		sd.draft.Dim()
		sd.syncBrightness()
	})
	resetBtn := widget.NewButton("Reset", func() {
		sd.draft.ResetBrightness()
		sd.syncBrightness()
	})
	brightBtn := widget.NewButton("Bright", func() {
		sd.draft.Brighten()
		sd.syncBrightness()
	})
	sd.syncBrightness()

	// Classification
	sizes := make([]string, len(settings.AllowedBatchSizes))
	for i, n := range settings.AllowedBatchSizes {
		sizes[i] = strconv.Itoa(n)
	}
	batchSelect := widget.NewSelect(sizes, func(selected string) {
		n, err := strconv.Atoi(selected)
		if err == nil {
			_ = sd.draft.SetBatchSize(n)
		}
	})
	batchSelect.SetSelected(strconv.Itoa(sd.draft.BatchSize))

	return container.NewVBox(
		widget.NewLabelWithStyle("Theme", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		themeRadio,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Appearance", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, widget.NewLabel("Brightness"), sd.percent, sd.slider),
		container.NewGridWithColumns(3, dimBtn, resetBtn, brightBtn),
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Classification Settings", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewBorder(nil, nil, widget.NewLabel("Batch Size:"), nil, batchSelect),
	)
}

// syncBrightness mirrors the draft brightness into the slider and label.
func (sd *SettingsDialog) syncBrightness() {
	v := float64(sd.draft.Brightness)
	if sd.slider.Value != v {
		// SetValue re-enters OnChanged with the same value; the guard stops the loop.
		sd.slider.SetValue(v)
	}
	sd.percent.SetText(fmt.Sprintf("%d%%", sd.draft.Brightness))
	sd.preview()
}

func (sd *SettingsDialog) preview() {
	if sd.config.OnPreview != nil {
		sd.config.OnPreview(sd.draft)
	}
}
