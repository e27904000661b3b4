package capture

import (
	"image"
	"log/slog"
	"sync"
)

// NopDisplay discards everything.
type NopDisplay struct{}

func (NopDisplay) Show(image.Image, string) {}

// LogDisplay logs status transitions.
type LogDisplay struct {
	logger *slog.Logger

	mu   sync.Mutex
	last string
}

func NewLogDisplay(logger *slog.Logger) *LogDisplay {
	return &LogDisplay{logger: logger}
}

func (d *LogDisplay) Show(_ image.Image, status string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status == d.last {
		return
	}
	d.last = status
	d.logger.Info("capture status", "status", status)
}

// MultiDisplay fans out to every display in order.
type MultiDisplay []Display

func (m MultiDisplay) Show(frame image.Image, status string) {
	for _, d := range m {
		d.Show(frame, status)
	}
}
