package liveness

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

func TestGuideCircle(t *testing.T) {
	center, radius := GuideCircle(image.Rect(0, 0, 640, 480))

	assert.Equal(t, image.Pt(320, 240), center)
	assert.Equal(t, 120, radius)
}

func TestRenderOverlay(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 640, 480))
	path := []image.Point{{100, 400}, {140, 400}}
	faces := []domain.FaceRegion{{X: 500, Y: 50, Width: 60, Height: 60}}

	out := RenderOverlay(frame, path, faces, "")

	assert.Equal(t, guideColor, out.RGBAAt(320+120, 240), "guide circle edge")
	assert.Equal(t, guideColor, out.RGBAAt(320, 240-120))
	assert.Equal(t, color.RGBA{}, out.RGBAAt(320, 240), "circle is not filled")
	assert.Equal(t, pathColor, out.RGBAAt(120, 400), "path segment")
	assert.Equal(t, faceColor, out.RGBAAt(500, 80), "face box left edge")
	assert.Equal(t, color.RGBA{}, frame.RGBAAt(320+120, 240), "source frame untouched")
}

func TestRenderOverlay_StatusLabel(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 320, 240))

	out := RenderOverlay(frame, nil, nil, MsgKeepMoving)

	var lit int
	for y := 10; y < 22; y++ {
		for x := 10; x < 10+len(MsgKeepMoving)*7; x++ {
			if out.RGBAAt(x, y) == labelColor {
				lit++
			}
		}
	}
	assert.Positive(t, lit)
}

func TestRenderOverlay_ClipsOutOfBounds(t *testing.T) {
	frame := image.NewRGBA(image.Rect(0, 0, 40, 40))
	faces := []domain.FaceRegion{{X: -10, Y: -10, Width: 100, Height: 100}}

	assert.NotPanics(t, func() {
		RenderOverlay(frame, []image.Point{{-5, -5}, {60, 60}}, faces, "status")
	})
}
