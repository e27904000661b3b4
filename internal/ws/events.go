package ws

import (
	"strings"
	"time"
)

type EventType string

const (
	EventCaptureFrame     EventType = "capture.frame"
	EventUserRegistered   EventType = "user.registered"
	EventAttendanceMarked EventType = "attendance.marked"
)

type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// FrameData is the payload of a capture.frame event. Image is empty for
// status-only updates.
type FrameData struct {
	Image  string `json:"image,omitempty"`
	Status string `json:"status"`
}

// ParseEventTypes reads a comma separated subscription list. Unknown names
// are ignored; an empty result subscribes to everything.
func ParseEventTypes(list string) map[EventType]bool {
	topics := make(map[EventType]bool)
	for _, name := range strings.Split(list, ",") {
		switch t := EventType(strings.TrimSpace(name)); t {
		case EventCaptureFrame, EventUserRegistered, EventAttendanceMarked:
			topics[t] = true
		}
	}
	return topics
}
