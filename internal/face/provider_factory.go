// Package face builds the detector, face library and camera selected by
// configuration.
package face

import (
	"errors"
	"fmt"
	"io"

	"github.com/saturnino-fabrica-de-software/presenca/internal/capture"
	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider/dlib"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider/ffmpeg"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider/opencv"
)

// MockIdentity is the person every mock library capture resolves to.
const MockIdentity = "operator"

// Pipeline holds the providers of one kiosk.
type Pipeline struct {
	Detector provider.FaceDetector
	Library  provider.FaceLibrary
	Camera   capture.Camera

	closers []io.Closer
}

// Close releases the loaded models in reverse order of creation.
func (p *Pipeline) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.closers = nil
	return errors.Join(errs...)
}

// NewPipeline loads every provider named by cfg. A detector or model that
// cannot be loaded is returned as an error once, before any capture runs.
func NewPipeline(cfg *config.Config) (*Pipeline, error) {
	p := &Pipeline{}

	detector, err := NewDetector(cfg)
	if err != nil {
		return nil, err
	}
	p.Detector = detector
	if c, ok := detector.(io.Closer); ok {
		p.closers = append(p.closers, c)
	}

	library, err := NewLibrary(cfg)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	p.Library = library
	p.closers = append(p.closers, library)

	camera, err := NewCamera(cfg)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	p.Camera = camera

	return p, nil
}

func NewDetector(cfg *config.Config) (provider.FaceDetector, error) {
	switch cfg.DetectorType {
	case config.DetectorOpenCV:
		d, err := opencv.NewCascadeDetector(cfg.CascadePath)
		if err != nil {
			return nil, fmt.Errorf("create detector: %w", err)
		}
		return d, nil
	case config.DetectorMock:
		return mock.NewDetector(), nil
	default:
		return nil, fmt.Errorf("unknown detector type: %s (supported: %s, %s)",
			cfg.DetectorType, config.DetectorOpenCV, config.DetectorMock)
	}
}

func NewLibrary(cfg *config.Config) (provider.FaceLibrary, error) {
	switch cfg.FaceLibrary {
	case config.LibraryDlib:
		lib, err := dlib.New(cfg.ModelsDir)
		if err != nil {
			return nil, fmt.Errorf("create face library: %w", err)
		}
		return lib, nil
	case config.LibraryDeepFace:
		dfConfig := deepface.DefaultConfig()
		if cfg.DeepFaceURL != "" {
			dfConfig.BaseURL = cfg.DeepFaceURL
		}
		return deepface.NewLibrary(dfConfig), nil
	case config.LibraryMock:
		return mock.NewLibrary(MockIdentity), nil
	default:
		return nil, fmt.Errorf("unknown face library: %s (supported: %s, %s, %s)",
			cfg.FaceLibrary, config.LibraryDlib, config.LibraryDeepFace, config.LibraryMock)
	}
}

func NewCamera(cfg *config.Config) (capture.Camera, error) {
	switch cfg.CameraType {
	case config.CameraOpenCV:
		return opencv.NewCamera(cfg.CameraDevice, cfg.CameraWidth, cfg.CameraHeight), nil
	case config.CameraFFmpeg:
		return ffmpeg.NewCamera(cfg.CameraDevice, cfg.CameraWidth, cfg.CameraHeight, cfg.CameraFPS), nil
	case config.CameraSynthetic:
		cam := mock.NewSyntheticCamera()
		if cfg.CameraWidth > 0 && cfg.CameraHeight > 0 {
			cam.Width, cam.Height = cfg.CameraWidth, cfg.CameraHeight
		}
		return cam, nil
	default:
		return nil, fmt.Errorf("unknown camera type: %s (supported: %s, %s, %s)",
			cfg.CameraType, config.CameraOpenCV, config.CameraFFmpeg, config.CameraSynthetic)
	}
}

// CaptureOptions maps the capture settings of cfg.
func CaptureOptions(cfg *config.Config) capture.Options {
	return capture.Options{
		FrameDelay: cfg.FrameDelay,
		WarmUp:     cfg.CameraWarmUp,
		Timeout:    cfg.CaptureTimeout,
	}
}
