package domain

import (
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimeLayout      = "15:04:05"
	TimestampLayout = "2006-01-02 15:04:05"
)

// User is a registered person and the face encoding captured at registration.
type User struct {
	Key          string       `json:"key"`
	Name         string       `json:"name"`
	Encoding     FaceEncoding `json:"-"`
	RegisteredAt time.Time    `json:"registered_at"`
}

// NormalizeName derives the storage key of a user from the display name.
func NormalizeName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// NewUser builds a user keyed by the normalized name.
func NewUser(name string, enc FaceEncoding, now time.Time) *User {
	name = strings.TrimSpace(name)
	return &User{
		Key:          NormalizeName(name),
		Name:         name,
		Encoding:     enc,
		RegisteredAt: now,
	}
}

// AttendanceRecord is keyed by (Date, UserKey); marking again on the same
// day replaces the stored time.
type AttendanceRecord struct {
	UserKey  string    `json:"user_key"`
	Name     string    `json:"name"`
	MarkedAt time.Time `json:"marked_at"`
}

func (r AttendanceRecord) Date() string {
	return r.MarkedAt.Format(DateLayout)
}

func (r AttendanceRecord) Time() string {
	return r.MarkedAt.Format(TimeLayout)
}

// ParseDate validates a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDate.WithError(err)
	}
	return t, nil
}
