package domain

import (
	"fmt"
	"image"
	"math"
)

// EncodingSize is the length of a face encoding vector.
const EncodingSize = 128

// FaceRegion representa a caixa delimitadora de uma face em pixels do frame.
type FaceRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RegionFromRect converts an image rectangle into a FaceRegion.
func RegionFromRect(r image.Rectangle) FaceRegion {
	return FaceRegion{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Center returns the integer centre of the region.
func (r FaceRegion) Center() image.Point {
	return image.Pt(r.X+r.Width/2, r.Y+r.Height/2)
}

func (r FaceRegion) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// FaceEncoding is the 128 dimensional identity vector of a face.
type FaceEncoding [EncodingSize]float32

// EncodingFromFloats copies a float64 slice into an encoding.
func EncodingFromFloats(values []float64) (FaceEncoding, error) {
	var enc FaceEncoding
	if len(values) != EncodingSize {
		return enc, fmt.Errorf("encoding has %d dimensions, want %d", len(values), EncodingSize)
	}
	for i, v := range values {
		enc[i] = float32(v)
	}
	return enc, nil
}

// EncodingFromFloat32 copies a float32 slice into an encoding.
func EncodingFromFloat32(values []float32) (FaceEncoding, error) {
	var enc FaceEncoding
	if len(values) != EncodingSize {
		return enc, fmt.Errorf("encoding has %d dimensions, want %d", len(values), EncodingSize)
	}
	copy(enc[:], values)
	return enc, nil
}

func (e FaceEncoding) Slice() []float32 {
	out := make([]float32, EncodingSize)
	copy(out, e[:])
	return out
}

func (e FaceEncoding) Floats() []float64 {
	out := make([]float64, EncodingSize)
	for i, v := range e {
		out[i] = float64(v)
	}
	return out
}

// Distance returns the Euclidean distance between two encodings.
func Distance(a, b FaceEncoding) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
