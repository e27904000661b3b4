// Package dlib computes 128 dimensional face encodings with the dlib ResNet
// model through go-face.
package dlib

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	face "github.com/Kagami/go-face"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

// Model files expected in the models directory.
var RequiredModels = []string{
	"shape_predictor_5_face_landmarks.dat",
	"dlib_face_recognition_resnet_model_v1.dat",
	"mmod_human_face_detector.dat",
}

type Library struct {
	mu  sync.Mutex
	rec *face.Recognizer
}

// New loads the models once; a missing directory or model file is
// reported as domain.ErrModelUnavailable.
func New(modelsDir string) (*Library, error) {
	for _, name := range RequiredModels {
		if _, err := os.Stat(filepath.Join(modelsDir, name)); err != nil {
			return nil, domain.ErrModelUnavailable.WithError(err)
		}
	}

	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, domain.ErrModelUnavailable.WithError(fmt.Errorf("load models from %s: %w", modelsDir, err))
	}

	return &Library{rec: rec}, nil
}

func (l *Library) Recognize(ctx context.Context, jpegImage []byte) ([]provider.LocatedFace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rec == nil {
		return nil, domain.ErrModelUnavailable
	}

	faces, err := l.rec.Recognize(jpegImage)
	if err != nil {
		return nil, fmt.Errorf("dlib recognize: %w", err)
	}

	out := make([]provider.LocatedFace, 0, len(faces))
	for _, f := range faces {
		out = append(out, provider.LocatedFace{
			Region:   domain.RegionFromRect(f.Rectangle),
			Encoding: domain.FaceEncoding(f.Descriptor),
		})
	}
	return out, nil
}

func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rec != nil {
		l.rec.Close()
		l.rec = nil
	}
	return nil
}

var _ provider.FaceLibrary = (*Library)(nil)
