// Package opencv adapts gocv to the face pipeline: Haar cascade detection,
// camera capture and a desktop preview window.
package opencv

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

const (
	ScaleFactor  = 1.1
	MinNeighbors = 5
	MinFaceSize  = 30
)

// CascadeDetector runs a Haar cascade on the grayscale frame.
type CascadeDetector struct {
	mu         sync.Mutex
	classifier gocv.CascadeClassifier
}

// NewCascadeDetector loads the cascade file once. A missing or invalid
// file is reported as domain.ErrDetectorUnavailable.
func NewCascadeDetector(path string) (*CascadeDetector, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, domain.ErrDetectorUnavailable.WithError(err)
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, domain.ErrDetectorUnavailable.WithError(fmt.Errorf("load cascade %s", path))
	}

	return &CascadeDetector{classifier: classifier}, nil
}

func (d *CascadeDetector) Detect(frame image.Image) []domain.FaceRegion {
	if frame == nil {
		return nil
	}

	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return nil
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	d.mu.Lock()
	rects := d.classifier.DetectMultiScaleWithParams(
		gray,
		ScaleFactor,
		MinNeighbors,
		0,
		image.Pt(MinFaceSize, MinFaceSize),
		image.Pt(0, 0),
	)
	d.mu.Unlock()

	regions := make([]domain.FaceRegion, 0, len(rects))
	for _, r := range rects {
		regions = append(regions, domain.RegionFromRect(r))
	}
	return regions
}

func (d *CascadeDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.classifier.Close()
}

var _ provider.FaceDetector = (*CascadeDetector)(nil)
