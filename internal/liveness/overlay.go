package liveness

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

var (
	guideColor = color.RGBA{0, 255, 0, 255}
	pathColor  = color.RGBA{255, 0, 0, 255}
	faceColor  = color.RGBA{0, 255, 0, 255}
	labelColor = color.RGBA{255, 255, 255, 255}
)

const lineThickness = 2

// GuideCircle returns the centre and radius of the guide drawn on a frame.
func GuideCircle(bounds image.Rectangle) (image.Point, int) {
	w, h := bounds.Dx(), bounds.Dy()
	center := image.Pt(bounds.Min.X+w/2, bounds.Min.Y+h/2)
	return center, min(w, h) / 4
}

// RenderOverlay copies the frame and draws the guide circle, the motion
// path, the face boxes and the status label on the copy.
func RenderOverlay(frame image.Image, path []image.Point, faces []domain.FaceRegion, status string) *image.RGBA {
	bounds := frame.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, frame, bounds.Min, draw.Src)

	center, radius := GuideCircle(bounds)
	drawCircle(out, center, radius, guideColor)

	for i := 1; i < len(path); i++ {
		drawLine(out, path[i-1], path[i], pathColor)
	}

	for _, f := range faces {
		drawBox(out, f.Rect(), faceColor)
	}

	if status != "" {
		drawLabel(out, bounds.Min.X+10, bounds.Min.Y+10, status, labelColor)
	}

	return out
}

func drawCircle(img *image.RGBA, c image.Point, r int, col color.RGBA) {
	if r <= 0 {
		return
	}
	outer := float64(r) + lineThickness/2.0
	inner := float64(r) - lineThickness/2.0
	span := r + lineThickness
	for y := c.Y - span; y <= c.Y+span; y++ {
		for x := c.X - span; x <= c.X+span; x++ {
			d := math.Hypot(float64(x-c.X), float64(y-c.Y))
			if d >= inner && d <= outer {
				setPixel(img, x, y, col)
			}
		}
	}
}

// drawLine is Bresenham with a square pen.
func drawLine(img *image.RGBA, a, b image.Point, col color.RGBA) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		for px := 0; px < lineThickness; px++ {
			for py := 0; py < lineThickness; py++ {
				setPixel(img, x+px, y+py, col)
			}
		}
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func drawBox(img *image.RGBA, r image.Rectangle, col color.RGBA) {
	for t := 0; t < lineThickness; t++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			setPixel(img, x, r.Min.Y+t, col)
			setPixel(img, x, r.Max.Y-1-t, col)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			setPixel(img, r.Min.X+t, y, col)
			setPixel(img, r.Max.X-1-t, y, col)
		}
	}
}

func drawLabel(img *image.RGBA, x, y int, label string, col color.RGBA) {
	bg := color.RGBA{0, 0, 0, 180}
	textWidth := len(label) * 7
	for dy := -2; dy < 12; dy++ {
		for dx := -2; dx < textWidth+2; dx++ {
			setPixel(img, x+dx, y+dy, bg)
		}
	}

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y + 10)},
	}
	d.DrawString(label)
}

func setPixel(img *image.RGBA, x, y int, col color.RGBA) {
	if image.Pt(x, y).In(img.Rect) {
		img.SetRGBA(x, y, col)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
