// Package capture runs one liveness session against a camera and extracts
// the face encoding of the frame that completed it.
package capture

import (
	"context"
	"image"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// FrameSource is an acquired camera. Read returns false once no frame can
// be captured.
type FrameSource interface {
	Read() (image.Image, bool)
	Release() error
}

// Camera acquires a FrameSource.
type Camera interface {
	Open(ctx context.Context) (FrameSource, error)
}

// CameraFunc adapts a function to Camera.
type CameraFunc func(ctx context.Context) (FrameSource, error)

func (f CameraFunc) Open(ctx context.Context) (FrameSource, error) {
	return f(ctx)
}

// Display receives the annotated frame and the current status. Frame is
// nil when only the status changed.
type Display interface {
	Show(frame image.Image, status string)
}

// Extractor computes the encoding of the first face in a frame.
type Extractor interface {
	Extract(ctx context.Context, frame image.Image) (domain.FaceEncoding, error)
}
