package capture

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/liveness"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

const (
	MsgCaptured         = "Face detected and captured!"
	MsgExtractionFailed = "Could not extract face encoding - please try again"
)

type Options struct {
	// FrameDelay is the pause between two frames.
	FrameDelay time.Duration
	// WarmUp is the pause after the camera is acquired.
	WarmUp time.Duration
	// Timeout bounds a session. Zero waits until the person completes the
	// circle or the camera fails.
	Timeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		FrameDelay: 100 * time.Millisecond,
		WarmUp:     time.Second,
	}
}

// Result is the outcome of one capture. Encoding is nil unless the session
// completed and extraction succeeded.
type Result struct {
	Encoding *domain.FaceEncoding
	State    liveness.State
	Status   string
	Frames   int
	Duration time.Duration
}

// OK reports whether an encoding was produced.
func (r *Result) OK() bool {
	return r != nil && r.Encoding != nil
}

// Orchestrator owns the camera for the duration of a capture. Only one
// capture runs at a time.
type Orchestrator struct {
	camera    Camera
	detector  provider.FaceDetector
	extractor Extractor
	display   Display
	logger    *slog.Logger
	opts      Options
	now       func() time.Time

	mu sync.Mutex
}

func NewOrchestrator(camera Camera, detector provider.FaceDetector, extractor Extractor, display Display, logger *slog.Logger, opts Options) *Orchestrator {
	if display == nil {
		display = NopDisplay{}
	}
	return &Orchestrator{
		camera:    camera,
		detector:  detector,
		extractor: extractor,
		display:   display,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// WithClock replaces the clock used for timeouts and durations.
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// CaptureFace acquires the camera, runs a liveness session until it reaches
// a terminal state and returns the encoding of the completing frame.
//
// The returned error is non-nil only when the camera cannot be acquired or
// another capture holds it. Every other failure is reported through the
// Result with a nil Encoding. The camera is released exactly once.
func (o *Orchestrator) CaptureFace(ctx context.Context) (*Result, error) {
	if !o.mu.TryLock() {
		return nil, domain.ErrCaptureInProgress
	}
	defer o.mu.Unlock()

	src, err := o.camera.Open(ctx)
	if err != nil {
		o.showStatus(domain.ErrCameraUnavailable.Message)
		return nil, domain.ErrCameraUnavailable.WithError(err)
	}

	started := o.now()
	res := &Result{}
	session := liveness.NewSession(o.detector,
		liveness.WithTimeout(o.opts.Timeout),
		liveness.WithClock(o.now),
	)

	panicked := false
	func() {
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error("capture loop panicked", "panic", fmt.Sprint(r), "frames", res.Frames)
				panicked = true
			}
			if err := src.Release(); err != nil {
				o.logger.Warn("failed to release camera", "error", err)
			}
		}()

		o.run(ctx, src, session, res)
	}()

	res.State = session.State()
	if res.Status == "" {
		res.Status = session.Status()
	}
	if panicked {
		res.State = liveness.StateCameraError
		res.Status = liveness.MsgCameraError
		res.Encoding = nil
	}
	res.Duration = o.now().Sub(started)
	o.showStatus(res.Status)

	o.logger.Info("capture finished",
		"state", res.State.String(),
		"frames", res.Frames,
		"captured", res.OK(),
		"duration_ms", res.Duration.Milliseconds(),
	)

	return res, nil
}

// showStatus runs outside the capture loop, so a panicking display is
// recovered here and only logged.
func (o *Orchestrator) showStatus(status string) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("display panicked", "panic", fmt.Sprint(r), "status", status)
		}
	}()
	o.display.Show(nil, status)
}

func (o *Orchestrator) run(ctx context.Context, src FrameSource, session *liveness.Session, res *Result) {
	o.display.Show(nil, session.Status())

	if err := sleepContext(ctx, o.opts.WarmUp); err != nil {
		session.Expire()
		return
	}

	for {
		if ctx.Err() != nil {
			session.Expire()
			return
		}

		frame, ok := src.Read()
		if !ok || frame == nil {
			session.Fail()
			return
		}
		res.Frames++

		fr := session.Process(frame)
		if fr.Overlay != nil {
			o.display.Show(fr.Overlay, fr.Status)
		}

		if fr.State == liveness.StateCompleted {
			o.extract(ctx, frame, res)
			return
		}
		if fr.State.Terminal() {
			return
		}

		if err := sleepContext(ctx, o.opts.FrameDelay); err != nil {
			session.Expire()
			return
		}
	}
}

// extract never fails the capture: any error leaves the encoding empty.
func (o *Orchestrator) extract(ctx context.Context, frame image.Image, res *Result) {
	enc, err := o.extractor.Extract(ctx, frame)
	if err != nil {
		o.logger.Warn("face encoding extraction failed", "error", err)
		res.Status = MsgExtractionFailed
		return
	}
	res.Encoding = &enc
	res.Status = MsgCaptured
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
