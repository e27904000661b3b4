package repository

import (
	"fmt"

	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

func toVector(enc domain.FaceEncoding) pgvector.Vector {
	return pgvector.NewVector(enc.Slice())
}

func fromVector(vec *pgvector.Vector) (domain.FaceEncoding, error) {
	if vec == nil {
		return domain.FaceEncoding{}, fmt.Errorf("encoding is null")
	}
	return domain.EncodingFromFloat32(vec.Slice())
}
