package opencv

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/saturnino-fabrica-de-software/presenca/internal/capture"
)

// Camera opens a device index ("0") or a stream URL through OpenCV.
type Camera struct {
	Device string
	Width  int
	Height int
}

func NewCamera(device string, width, height int) *Camera {
	return &Camera{Device: device, Width: width, Height: height}
}

func (c *Camera) Open(ctx context.Context) (capture.FrameSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vc, err := gocv.OpenVideoCapture(c.Device)
	if err != nil {
		return nil, fmt.Errorf("open video capture %s: %w", c.Device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("video capture %s is not opened", c.Device)
	}

	if c.Width > 0 && c.Height > 0 {
		vc.Set(gocv.VideoCaptureFrameWidth, float64(c.Width))
		vc.Set(gocv.VideoCaptureFrameHeight, float64(c.Height))
	}

	return &source{vc: vc, mat: gocv.NewMat()}, nil
}

type source struct {
	mu     sync.Mutex
	vc     *gocv.VideoCapture
	mat    gocv.Mat
	closed bool
}

func (s *source) Read() (image.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, false
	}
	if !s.vc.Read(&s.mat) || s.mat.Empty() {
		return nil, false
	}
	img, err := s.mat.ToImage()
	if err != nil {
		return nil, false
	}
	return img, true
}

func (s *source) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.mat.Close(); err != nil {
		return err
	}
	return s.vc.Close()
}

var _ capture.Camera = (*Camera)(nil)
