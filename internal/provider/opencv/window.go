package opencv

import (
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/saturnino-fabrica-de-software/presenca/internal/capture"
)

// Window shows annotated frames in a desktop window.
type Window struct {
	mu     sync.Mutex
	window *gocv.Window
}

func NewWindow(title string) *Window {
	return &Window{window: gocv.NewWindow(title)}
}

// Show renders the frame; status only updates are ignored since the
// status is already drawn on the overlay.
func (w *Window) Show(frame image.Image, _ string) {
	if frame == nil {
		return
	}

	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return
	}
	defer mat.Close()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.window == nil {
		return
	}
	w.window.IMShow(mat)
	w.window.WaitKey(1)
}

func (w *Window) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.window == nil {
		return nil
	}
	err := w.window.Close()
	w.window = nil
	return err
}

var _ capture.Display = (*Window)(nil)
