package liveness

import (
	"image"
	"time"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

type State int

const (
	StateIdle State = iota
	StateSearching
	StateTracking
	StateCompleted
	StateTimedOut
	StateCameraError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSearching:
		return "searching"
	case StateTracking:
		return "tracking"
	case StateCompleted:
		return "completed"
	case StateTimedOut:
		return "timed_out"
	case StateCameraError:
		return "camera_error"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further frames are processed in this state.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateTimedOut || s == StateCameraError
}

// Status messages shown to the person in front of the camera.
const (
	MsgLookingForFace = "Looking for face... Please look at the camera"
	MsgNoFace         = "No face detected - Please position your face in frame"
	MsgKeepMoving     = "Keep moving your head in a circle"
	MsgCompleted      = "Circle completed!"
	MsgCameraError    = "Failed to capture frame from camera"
	MsgTimedOut       = "Capture timed out - please try again"
)

// FrameResult is the outcome of processing one frame.
type FrameResult struct {
	State   State
	Status  string
	Overlay *image.RGBA
	Faces   []domain.FaceRegion
	// Center is the centre of the first face, valid when Faces is not empty.
	Center image.Point
}

type SessionOption func(*Session)

// WithTimeout ends the session as timed out once d has elapsed since the
// first frame. Zero disables the limit.
func WithTimeout(d time.Duration) SessionOption {
	return func(s *Session) {
		s.timeout = d
	}
}

func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = now
	}
}

// Session drives one liveness attempt frame by frame. It is not safe for
// concurrent use.
type Session struct {
	detector provider.FaceDetector
	tracker  *MotionTracker

	state     State
	status    string
	timeout   time.Duration
	now       func() time.Time
	startedAt time.Time
}

func NewSession(detector provider.FaceDetector, opts ...SessionOption) *Session {
	s := &Session{
		detector: detector,
		tracker:  NewMotionTracker(),
		state:    StateIdle,
		status:   MsgLookingForFace,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Status() string {
	return s.status
}

func (s *Session) Tracker() *MotionTracker {
	return s.tracker
}

// Process runs detection and tracking on a frame and renders its overlay.
// Once the session is terminal the frame is ignored.
func (s *Session) Process(frame image.Image) FrameResult {
	if s.state.Terminal() {
		return FrameResult{State: s.state, Status: s.status}
	}

	if s.state == StateIdle {
		s.startedAt = s.now()
		s.state = StateSearching
	}

	if s.timeout > 0 && s.now().Sub(s.startedAt) > s.timeout {
		s.finish(StateTimedOut, MsgTimedOut)
		return FrameResult{State: s.state, Status: s.status}
	}

	res := FrameResult{
		Faces: s.detector.Detect(frame),
	}

	if len(res.Faces) == 0 {
		// Tracker history survives a lost face.
		s.state = StateSearching
		s.status = MsgNoFace
	} else {
		res.Center = res.Faces[0].Center()
		if s.tracker.Observe(res.Center) == CircleCompleted {
			s.state = StateCompleted
			s.status = MsgCompleted
		} else {
			s.state = StateTracking
			s.status = MsgKeepMoving
		}
	}

	res.State = s.state
	res.Status = s.status
	res.Overlay = RenderOverlay(frame, s.tracker.History(), res.Faces, s.status)
	return res
}

// Fail ends the session because the frame source stopped delivering.
func (s *Session) Fail() {
	s.finish(StateCameraError, MsgCameraError)
}

// Expire ends the session as timed out, for callers that stop waiting.
func (s *Session) Expire() {
	s.finish(StateTimedOut, MsgTimedOut)
}

func (s *Session) finish(state State, status string) {
	if s.state.Terminal() {
		return
	}
	s.state = state
	s.status = status
}
