package mock

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"image/jpeg"
	"math"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

// Library implementa provider.FaceLibrary retornando sempre o encoding da
// mesma identidade para cada face encontrada pelo Detector.
type Library struct {
	detector *Detector
	encoding domain.FaceEncoding
}

// NewLibrary cria uma biblioteca cuja identidade e derivada do seed
func NewLibrary(identity string) *Library {
	return &Library{
		detector: NewDetector(),
		encoding: EncodingFor(identity),
	}
}

func (l *Library) Recognize(ctx context.Context, jpegImage []byte) ([]provider.LocatedFace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, err := jpeg.Decode(bytes.NewReader(jpegImage))
	if err != nil {
		return nil, fmt.Errorf("decode jpeg: %w", err)
	}

	regions := l.detector.Detect(img)
	faces := make([]provider.LocatedFace, 0, len(regions))
	for _, r := range regions {
		faces = append(faces, provider.LocatedFace{Region: r, Encoding: l.encoding})
	}
	return faces, nil
}

func (l *Library) Close() error {
	return nil
}

// EncodingFor gera encoding deterministico e normalizado a partir do hash da identidade
func EncodingFor(identity string) domain.FaceEncoding {
	hash := sha256.Sum256([]byte(identity))
	var enc domain.FaceEncoding
	hashLen := len(hash)

	for i := 0; i < domain.EncodingSize; i++ {
		//nolint:gosec // index is always < hashLen due to modulo operation
		enc[i] = float32(hash[(i*7)%hashLen])/255.0*2 - 1
	}

	var norm float64
	for _, v := range enc {
		norm += float64(v) * float64(v)
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return enc
	}

	for i := range enc {
		enc[i] = float32(float64(enc[i]) / norm)
	}
	return enc
}

var _ provider.FaceLibrary = (*Library)(nil)
