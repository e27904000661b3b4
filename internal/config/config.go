package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreSQLite   = "sqlite"

	CameraOpenCV    = "opencv"
	CameraFFmpeg    = "ffmpeg"
	CameraSynthetic = "synthetic"

	DetectorOpenCV = "opencv"
	DetectorMock   = "mock"

	LibraryDlib     = "dlib"
	LibraryDeepFace = "deepface"
	LibraryMock     = "mock"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`
	// CaptureRateLimit is the number of capture requests per minute and client IP.
	CaptureRateLimit int `envconfig:"CAPTURE_RATE_LIMIT" default:"30"`
	// FeedFPS caps frames streamed to operators over the websocket.
	FeedFPS int `envconfig:"FEED_FPS" default:"5"`

	// Storage
	StoreType     string `envconfig:"STORE_TYPE" default:"sqlite"`
	DatabaseURL   string `envconfig:"DATABASE_URL"`
	RedisAddress  string `envconfig:"REDIS_ADDRESS" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"presenca.db"`

	// Camera
	CameraType   string `envconfig:"CAMERA_TYPE" default:"opencv"`
	CameraDevice string `envconfig:"CAMERA_DEVICE" default:"0"`
	CameraWidth  int    `envconfig:"CAMERA_WIDTH" default:"640"`
	CameraHeight int    `envconfig:"CAMERA_HEIGHT" default:"480"`
	CameraFPS    int    `envconfig:"CAMERA_FPS" default:"15"`

	// Face pipeline
	DetectorType string `envconfig:"DETECTOR_TYPE" default:"opencv"`
	CascadePath  string `envconfig:"CASCADE_PATH" default:"haarcascade_frontalface_default.xml"`
	FaceLibrary  string `envconfig:"FACE_LIBRARY" default:"dlib"`
	ModelsDir    string `envconfig:"MODELS_DIR" default:"models"`
	DeepFaceURL  string `envconfig:"DEEPFACE_URL" default:"http://localhost:5000"`

	// Capture
	MatchTolerance float64       `envconfig:"MATCH_TOLERANCE" default:"0.6"`
	FrameDelay     time.Duration `envconfig:"FRAME_DELAY" default:"100ms"`
	CameraWarmUp   time.Duration `envconfig:"CAMERA_WARMUP" default:"1s"`
	CaptureTimeout time.Duration `envconfig:"CAPTURE_TIMEOUT" default:"60s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// Validate checks enum values and the settings each backend requires.
func (c *Config) Validate() error {
	switch c.StoreType {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for store %q", c.StoreType)
		}
	case StoreRedis:
		if c.RedisAddress == "" {
			return fmt.Errorf("REDIS_ADDRESS is required for store %q", c.StoreType)
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for store %q", c.StoreType)
		}
	default:
		return fmt.Errorf("unknown store type %q", c.StoreType)
	}

	switch c.CameraType {
	case CameraOpenCV, CameraFFmpeg, CameraSynthetic:
	default:
		return fmt.Errorf("unknown camera type %q", c.CameraType)
	}

	switch c.DetectorType {
	case DetectorOpenCV, DetectorMock:
	default:
		return fmt.Errorf("unknown detector type %q", c.DetectorType)
	}

	switch c.FaceLibrary {
	case LibraryDlib, LibraryDeepFace, LibraryMock:
	default:
		return fmt.Errorf("unknown face library %q", c.FaceLibrary)
	}

	if c.MatchTolerance <= 0 {
		return fmt.Errorf("MATCH_TOLERANCE must be positive, got %v", c.MatchTolerance)
	}
	if c.CaptureTimeout < 0 || c.FrameDelay < 0 || c.CameraWarmUp < 0 {
		return fmt.Errorf("capture durations must not be negative")
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
