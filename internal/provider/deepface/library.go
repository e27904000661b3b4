package deepface

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

// Library implements provider.FaceLibrary on top of a DeepFace server.
type Library struct {
	client *Client
}

func NewLibrary(config Config) *Library {
	return &Library{client: NewClient(config)}
}

func (l *Library) Recognize(ctx context.Context, jpegImage []byte) ([]provider.LocatedFace, error) {
	img := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(jpegImage)

	resp, err := l.client.Represent(ctx, img)
	if err != nil {
		if isNoFace(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("represent: %w", err)
	}

	faces := make([]provider.LocatedFace, 0, len(resp.Results))
	for _, r := range resp.Results {
		enc, err := domain.EncodingFromFloats(r.Embedding)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmbeddingSize, err)
		}
		faces = append(faces, provider.LocatedFace{
			Region: domain.FaceRegion{
				X:      r.FacialArea.X,
				Y:      r.FacialArea.Y,
				Width:  r.FacialArea.W,
				Height: r.FacialArea.H,
			},
			Encoding: enc,
		})
	}
	return faces, nil
}

func (l *Library) Close() error {
	l.client.httpClient.CloseIdleConnections()
	return nil
}

// isNoFace matches the 400 DeepFace sends when enforce_detection finds
// no face.
func isNoFace(err error) bool {
	var se *statusError
	if !errors.As(err, &se) || se.Status != 400 {
		return false
	}
	return strings.Contains(strings.ToLower(se.Body), "face could not be detected")
}

var _ provider.FaceLibrary = (*Library)(nil)
