package ws

import (
	"encoding/base64"
	"image"
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/presenca/internal/capture"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

// DefaultMaxFPS caps the frames streamed to operators.
const DefaultMaxFPS = 5

// Display streams capture frames to connected operators as capture.frame
// events. Frames arriving faster than the rate limit are dropped unless the
// status changed.
type Display struct {
	hub      *Hub
	interval time.Duration
	now      func() time.Time

	mu         sync.Mutex
	lastSent   time.Time
	lastStatus string
}

var _ capture.Display = (*Display)(nil)

func NewDisplay(hub *Hub, maxFPS int) *Display {
	if maxFPS <= 0 {
		maxFPS = DefaultMaxFPS
	}
	return &Display{
		hub:      hub,
		interval: time.Second / time.Duration(maxFPS),
		now:      time.Now,
	}
}

func (d *Display) Show(frame image.Image, status string) {
	if d.hub.ConnectedClients() == 0 {
		return
	}

	d.mu.Lock()
	now := d.now()
	changed := status != d.lastStatus
	if !changed && (frame == nil || now.Sub(d.lastSent) < d.interval) {
		d.mu.Unlock()
		return
	}
	d.lastStatus = status
	d.lastSent = now
	d.mu.Unlock()

	data := FrameData{Status: status}
	if frame != nil {
		buf, err := provider.EncodeJPEG(frame)
		if err == nil {
			data.Image = base64.StdEncoding.EncodeToString(buf)
		}
	}

	d.hub.Broadcast(EventCaptureFrame, data)
}
