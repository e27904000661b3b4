// Package liveness decides whether a live person moved their head along a
// circular path in front of the camera.
package liveness

import (
	"image"
	"math"
	"sort"
)

const (
	// HistorySize is the number of most recent face centres kept.
	HistorySize = 30
	// MinPoints is the history length required before a circle is evaluated.
	MinPoints = 20
	// MaxRadiusVariation bounds the coefficient of variation of the
	// distances to the centroid.
	MaxRadiusVariation = 0.2
	// MinAngularSweep is the accumulated angle, in radians, a path must cover.
	MinAngularSweep = 5.0
)

type Status int

const (
	AwaitingMovement Status = iota
	CircleCompleted
)

func (s Status) String() string {
	if s == CircleCompleted {
		return "circle_completed"
	}
	return "awaiting_movement"
}

// MotionTracker keeps a bounded history of face centres. Once a circle is
// detected the tracker stays completed until Reset.
type MotionTracker struct {
	ring  [HistorySize]image.Point
	head  int
	count int

	start     image.Point
	hasStart  bool
	completed bool
}

func NewMotionTracker() *MotionTracker {
	return &MotionTracker{}
}

// Reset clears the history, the start position and the completion flag.
func (t *MotionTracker) Reset() {
	*t = MotionTracker{}
}

// Observe appends a face centre and re-evaluates the circle condition.
func (t *MotionTracker) Observe(center image.Point) Status {
	if !t.hasStart {
		t.start = center
		t.hasStart = true
	}

	t.ring[t.head] = center
	t.head = (t.head + 1) % HistorySize
	if t.count < HistorySize {
		t.count++
	}

	if !t.completed && IsCircular(t.History()) {
		t.completed = true
	}
	if t.completed {
		return CircleCompleted
	}
	return AwaitingMovement
}

// History returns the stored centres, oldest first.
func (t *MotionTracker) History() []image.Point {
	out := make([]image.Point, t.count)
	first := (t.head - t.count + HistorySize) % HistorySize
	for i := 0; i < t.count; i++ {
		out[i] = t.ring[(first+i)%HistorySize]
	}
	return out
}

func (t *MotionTracker) Len() int {
	return t.count
}

func (t *MotionTracker) Completed() bool {
	return t.completed
}

// StartPosition returns the first centre observed since the last reset.
func (t *MotionTracker) StartPosition() (image.Point, bool) {
	return t.start, t.hasStart
}

// IsCircular reports whether the points lie at a roughly constant distance
// from their centroid and sweep enough angle around it.
//
// The sweep is the sum of consecutive differences of the sorted angles,
// which equals the spread between the smallest and largest angle. Paths
// crossing the -pi/+pi boundary are measured by that spread only.
func IsCircular(points []image.Point) bool {
	n := len(points)
	if n < MinPoints {
		return false
	}

	var cx, cy float64
	for _, p := range points {
		cx += float64(p.X)
		cy += float64(p.Y)
	}
	cx /= float64(n)
	cy /= float64(n)

	distances := make([]float64, n)
	var mean float64
	for i, p := range points {
		distances[i] = math.Hypot(float64(p.X)-cx, float64(p.Y)-cy)
		mean += distances[i]
	}
	mean /= float64(n)
	if mean == 0 {
		return false
	}

	var variance float64
	for _, d := range distances {
		variance += (d - mean) * (d - mean)
	}
	std := math.Sqrt(variance / float64(n))
	if std/mean >= MaxRadiusVariation {
		return false
	}

	angles := make([]float64, n)
	for i, p := range points {
		angles[i] = math.Atan2(float64(p.Y)-cy, float64(p.X)-cx)
	}
	sort.Float64s(angles)

	var sweep float64
	for i := 1; i < n; i++ {
		sweep += angles[i] - angles[i-1]
	}
	return math.Abs(sweep) > MinAngularSweep
}
