package provider

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

const jpegQuality = 95

// Extractor turns a frame into the encoding of its first located face.
type Extractor struct {
	library FaceLibrary
}

func NewExtractor(library FaceLibrary) *Extractor {
	return &Extractor{library: library}
}

// Extract returns domain.ErrNoFaceDetected when the library locates nothing.
func (e *Extractor) Extract(ctx context.Context, frame image.Image) (domain.FaceEncoding, error) {
	var enc domain.FaceEncoding

	data, err := EncodeJPEG(frame)
	if err != nil {
		return enc, fmt.Errorf("encode frame: %w", err)
	}

	faces, err := e.library.Recognize(ctx, data)
	if err != nil {
		return enc, fmt.Errorf("recognize frame: %w", err)
	}
	if len(faces) == 0 {
		return enc, domain.ErrNoFaceDetected
	}

	return faces[0].Encoding, nil
}

// EncodeJPEG converts any image layout to 8 bit RGB and encodes it.
func EncodeJPEG(frame image.Image) ([]byte, error) {
	rgba, ok := frame.(*image.RGBA)
	if !ok {
		b := frame.Bounds()
		rgba = image.NewRGBA(b)
		draw.Draw(rgba, b, frame, b.Min, draw.Src)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgba, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
