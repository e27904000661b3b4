package domain

import (
	"time"

	"github.com/google/uuid"
)

type CapturePurpose string

const (
	PurposeRegister   CapturePurpose = "register"
	PurposeAttendance CapturePurpose = "attendance"
)

// CaptureAttempt registra uma sessao de captura (audit).
type CaptureAttempt struct {
	ID        uuid.UUID      `json:"id"`
	Purpose   CapturePurpose `json:"purpose"`
	Outcome   string         `json:"outcome"`
	Frames    int            `json:"frames"`
	LatencyMs int64          `json:"latency_ms"`
	UserKey   *string        `json:"user_key,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// DailyCount is the number of attendance records on one date.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// PersonCount is the number of days a person was marked present.
type PersonCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// AttendanceSummary aggregates the attendance history.
type AttendanceSummary struct {
	TotalRecords    int                `json:"total_records"`
	UniqueAttendees int                `json:"unique_attendees"`
	ByDate          []DailyCount       `json:"by_date"`
	ByPerson        []PersonCount      `json:"by_person"`
	ByHour          [24]int            `json:"by_hour"`
	Recent          []AttendanceRecord `json:"recent"`
}
