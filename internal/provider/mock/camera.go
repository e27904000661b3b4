package mock

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/saturnino-fabrica-de-software/presenca/internal/capture"
)

// SyntheticCamera renders a bright square orbiting the frame centre, one
// revolution every StepsPerTurn frames.
type SyntheticCamera struct {
	Width        int
	Height       int
	FaceSize     int
	Radius       int
	StepsPerTurn int
	// BlankFrames are emitted before the square appears.
	BlankFrames int
	// MaxFrames ends the stream after that many frames. Zero means endless.
	MaxFrames int
}

func NewSyntheticCamera() *SyntheticCamera {
	return &SyntheticCamera{
		Width:        640,
		Height:       480,
		FaceSize:     80,
		Radius:       60,
		StepsPerTurn: 30,
	}
}

func (c *SyntheticCamera) Open(ctx context.Context) (capture.FrameSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &SyntheticSource{cam: *c}, nil
}

// SyntheticSource yields the frames of a SyntheticCamera.
type SyntheticSource struct {
	mu       sync.Mutex
	cam      SyntheticCamera
	frame    int
	released bool
}

func (s *SyntheticSource) Read() (image.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released || (s.cam.MaxFrames > 0 && s.frame >= s.cam.MaxFrames) {
		return nil, false
	}

	n := s.frame
	s.frame++

	img := image.NewRGBA(image.Rect(0, 0, s.cam.Width, s.cam.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{20, 20, 20, 255}), image.Point{}, draw.Src)
	if n < s.cam.BlankFrames {
		return img, true
	}

	steps := s.cam.StepsPerTurn
	if steps <= 0 {
		steps = 30
	}
	angle := 2 * math.Pi * float64((n-s.cam.BlankFrames)%steps) / float64(steps)
	cx := s.cam.Width/2 + int(math.Round(float64(s.cam.Radius)*math.Cos(angle)))
	cy := s.cam.Height/2 + int(math.Round(float64(s.cam.Radius)*math.Sin(angle)))
	half := s.cam.FaceSize / 2
	face := image.Rect(cx-half, cy-half, cx+half, cy+half)
	draw.Draw(img, face, image.NewUniform(color.RGBA{240, 240, 240, 255}), image.Point{}, draw.Src)

	return img, true
}

func (s *SyntheticSource) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = true
	return nil
}

var _ capture.Camera = (*SyntheticCamera)(nil)
