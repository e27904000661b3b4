// Package mock provides deterministic face pipeline components for tests,
// demos and development machines without a camera or native models.
package mock

import (
	"image"
	"image/color"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

const (
	brightThreshold = 200
	minFaceSize     = 30
)

// Detector treats the bounding box of bright pixels as the only face.
type Detector struct{}

func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns nothing when the bright area is smaller than 30x30.
func (d *Detector) Detect(frame image.Image) []domain.FaceRegion {
	if frame == nil {
		return nil
	}

	b := frame.Bounds()
	box := image.Rectangle{}
	found := false
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			lum := color.GrayModel.Convert(frame.At(x, y)).(color.Gray).Y
			if lum < brightThreshold {
				continue
			}
			px := image.Rect(x, y, x+1, y+1)
			if !found {
				box = px
				found = true
			} else {
				box = box.Union(px)
			}
		}
	}

	if !found || box.Dx() < minFaceSize || box.Dy() < minFaceSize {
		return nil
	}
	return []domain.FaceRegion{domain.RegionFromRect(box)}
}

var _ provider.FaceDetector = (*Detector)(nil)
