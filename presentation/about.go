package presentation

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// Application identity shown in titles and dialogs.
const (
	AppName    = "Dotmini MCX"
	AppVersion = "1.2.0"
)

const aboutText = AppName + " v" + AppVersion + `

A machine learning image classification tool.

© 2023 DotminiTech`

const docsMarkdown = `## Quick Guide

### Getting Started

1. Add input folders containing images to classify
2. Select your model file (*.onnx)
3. Select your labels file (*.txt), one class name per line
4. Choose an output folder for classified images
5. Click **Classify**

Images are copied into one sub-folder per class under the output folder.

### Features

- Drag and drop support for files and folders
- Light and dark theme with adjustable brightness
- Export classification results to CSV
- Run history

### Keyboard Shortcuts

- **Ctrl+T**: Toggle theme
- **Ctrl+E**: Export results
- **Ctrl+,**: Open settings
- **Ctrl+Q**: Exit application

Keras models (.h5) must be converted first, for example with tf2onnx.
`

func showAbout(parent fyne.Window) {
	dialog.ShowInformation("About "+AppName, aboutText, parent)
}

func showDocumentation(parent fyne.Window) {
	doc := widget.NewRichTextFromMarkdown(docsMarkdown)
	doc.Wrapping = fyne.TextWrapWord

	scroll := container.NewVScroll(doc)
	scroll.SetMinSize(fyne.NewSize(460, 420))

	dialog.ShowCustom(AppName+" Documentation", "OK", scroll, parent)
}
