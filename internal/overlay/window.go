package overlay

import (
	"gocv.io/x/gocv"
)

// Window shows rendered frames and reads keystrokes. gocv windows must be
// driven from the thread that created them.
type Window struct {
	window *gocv.Window
}

// NewWindow opens a display window.
func NewWindow(title string) *Window {
	return &Window{window: gocv.NewWindow(title)}
}

// Show displays img.
func (w *Window) Show(img gocv.Mat) {
	w.window.IMShow(img)
}

// PollKey waits one millisecond for a key and maps it to a command.
func (w *Window) PollKey() Command {
	return CommandForKey(w.window.WaitKey(1))
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.window.Close()
}
