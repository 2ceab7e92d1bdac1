package presentation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"dotmini-mcx/domain/license"
)

const invalidKeyMessage = "Invalid license key. Please try again."

// LicenseDialogConfig holds configuration for the license window.
type LicenseDialogConfig struct {
	App     fyne.App
	Manager *license.Manager
	Logger  *slog.Logger
	// OnActivated runs on the UI thread after a valid key is entered.
	OnActivated func()
	// OnQuit runs when the user gives up; defaults to quitting the app.
	OnQuit func()
}

// LicenseDialog asks for the product key before the main window opens.
type LicenseDialog struct {
	config    *LicenseDialogConfig
	window    fyne.Window
	message   *widget.Label
	keyEntry  *widget.Entry
	remember  *widget.Check
	activated bool
}

// ShowLicenseDialog opens the license window.
func ShowLicenseDialog(cfg *LicenseDialogConfig) *LicenseDialog {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.OnQuit == nil {
		cfg.OnQuit = cfg.App.Quit
	}

	d := &LicenseDialog{config: cfg}
	d.window = cfg.App.NewWindow(AppName + " License Verification")
	d.buildUI()

	d.window.SetOnClosed(func() {
		if !d.activated {
			cfg.OnQuit()
		}
	})
	d.window.Resize(fyne.NewSize(420, 240))
	d.window.SetFixedSize(true)
	d.window.CenterOnScreen()
	d.window.Show()
	return d
}

func (d *LicenseDialog) buildUI() {
	title := widget.NewLabelWithStyle(AppName+" v"+AppVersion, fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	d.message = widget.NewLabel("Please enter your license key to continue:")
	d.message.Wrapping = fyne.TextWrapWord

	d.keyEntry = widget.NewPasswordEntry()
	d.keyEntry.SetPlaceHolder("Enter your license key...")
	d.keyEntry.OnSubmitted = func(string) { d.verify() }

	d.remember = widget.NewCheck("Remember license key", nil)
	d.remember.SetChecked(true)

	verifyBtn := widget.NewButtonWithIcon("Verify License", theme.ConfirmIcon(), d.verify)
	verifyBtn.Importance = widget.HighImportance
	quitBtn := widget.NewButton("Quit", func() {
		d.window.Close()
	})

	d.window.SetContent(container.NewPadded(container.NewVBox(
		title,
		d.message,
		d.keyEntry,
		d.remember,
		layout.NewSpacer(),
		container.NewHBox(layout.NewSpacer(), quitBtn, verifyBtn),
	)))
	d.window.Canvas().Focus(d.keyEntry)
}

func (d *LicenseDialog) verify() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := d.config.Manager.Activate(ctx, d.keyEntry.Text, d.remember.Checked)
	switch {
	case errors.Is(err, license.ErrInvalidKey):
		d.config.Logger.Warn("License verification failed")
		d.message.SetText(invalidKeyMessage)
		d.message.Importance = widget.DangerImportance
		d.message.Refresh()
		d.keyEntry.SetText("")
		return
	case err != nil:
		// The key is valid; only remembering it failed.
		d.config.Logger.Error("Failed to store license", "error", err)
	}

	d.config.Logger.Info("License activated", "remembered", d.remember.Checked)
	d.activated = true
	// Open the next window before closing this one so the app keeps a window alive.
	if d.config.OnActivated != nil {
		d.config.OnActivated()
	}
	d.window.Close()
}
