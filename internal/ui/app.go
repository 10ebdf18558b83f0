package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"InkBoard/internal/board"
)

// RunApp shows the board in a window with its toolbar and blocks until
// the window is closed. shareLink, when set, is shown in the status bar
// for viewers to open.
func RunApp(a fyne.App, b *board.Board, tools *ToolState, shareLink string) {
	myWindow := a.NewWindow("InkBoard")
	myWindow.Resize(fyne.NewSize(1024, 768))

	status := widget.NewLabel("Local page")
	if shareLink != "" {
		status.SetText("Viewers can watch at: " + shareLink)
	}

	bw := NewBoardWidget(b)
	toolbar := NewToolbar(bw, tools, myWindow, status)

	content := container.NewBorder(toolbar, status, nil, nil, bw)
	myWindow.SetContent(content)
	myWindow.SetOnClosed(b.Close)
	myWindow.ShowAndRun()
}
