package provider

import (
	"context"
	"image"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// FaceDetector localiza faces em um frame.
//
// Implementacoes nao guardam estado entre chamadas e nunca falham: um frame
// ilegivel resulta em uma lista vazia. A ordem do resultado e a ordem de
// deteccao; quem consome usa apenas a primeira regiao.
type FaceDetector interface {
	Detect(frame image.Image) []domain.FaceRegion
}

// FaceLibrary localiza faces em uma imagem JPEG RGB e calcula o encoding
// de cada uma na mesma chamada.
type FaceLibrary interface {
	// Recognize retorna as faces na ordem devolvida pela biblioteca.
	// Uma imagem sem faces retorna lista vazia e erro nil.
	Recognize(ctx context.Context, jpegImage []byte) ([]LocatedFace, error)

	// Close libera modelos carregados
	Close() error
}

// LocatedFace is a face found by a FaceLibrary.
type LocatedFace struct {
	Region   domain.FaceRegion
	Encoding domain.FaceEncoding
}
