// Package resources embeds static assets bundled with the application.
package resources

import (
	_ "embed"

	"fyne.io/fyne/v2"
)

//go:embed icons/app_256.png
var iconData []byte

// AppIcon returns the application icon.
func AppIcon() fyne.Resource {
	return &fyne.StaticResource{
		StaticName:    "app_256.png",
		StaticContent: iconData,
	}
}
