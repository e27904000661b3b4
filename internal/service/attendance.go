package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/saturnino-fabrica-de-software/presenca/internal/capture"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// DefaultTolerance is the largest Euclidean distance at which two encodings
// belong to the same person.
const DefaultTolerance = 0.6

// RecentLimit is the number of records in AttendanceSummary.Recent.
const RecentLimit = 10

const outcomeNotRecognized = "not_recognized"

type UserStore interface {
	Save(ctx context.Context, user *domain.User) error
	GetByKey(ctx context.Context, key string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type AttendanceStore interface {
	Mark(ctx context.Context, record *domain.AttendanceRecord) error
	ListByDate(ctx context.Context, date string) ([]domain.AttendanceRecord, error)
	List(ctx context.Context) ([]domain.AttendanceRecord, error)
}

type AttemptStore interface {
	Create(ctx context.Context, attempt *domain.CaptureAttempt) error
}

// FaceCapturer runs one liveness capture on the kiosk camera.
type FaceCapturer interface {
	CaptureFace(ctx context.Context) (*capture.Result, error)
}

// EventPublisher is told about completed registrations and marks.
type EventPublisher interface {
	UserRegistered(user *domain.User)
	AttendanceMarked(record *domain.AttendanceRecord)
}

type nopPublisher struct{}

func (nopPublisher) UserRegistered(*domain.User)               {}
func (nopPublisher) AttendanceMarked(*domain.AttendanceRecord) {}

type AttendanceService struct {
	users      UserStore
	attendance AttendanceStore
	attempts   AttemptStore
	capturer   FaceCapturer
	publisher  EventPublisher
	logger     *slog.Logger
	tolerance  float64
	now        func() time.Time
}

func NewAttendanceService(
	users UserStore,
	attendance AttendanceStore,
	capturer FaceCapturer,
	logger *slog.Logger,
) *AttendanceService {
	return &AttendanceService{
		users:      users,
		attendance: attendance,
		capturer:   capturer,
		publisher:  nopPublisher{},
		logger:     logger,
		tolerance:  DefaultTolerance,
		now:        time.Now,
	}
}

func (s *AttendanceService) WithTolerance(tolerance float64) *AttendanceService {
	s.tolerance = tolerance
	return s
}

// WithAttempts enables the capture audit log.
func (s *AttendanceService) WithAttempts(attempts AttemptStore) *AttendanceService {
	s.attempts = attempts
	return s
}

func (s *AttendanceService) WithPublisher(publisher EventPublisher) *AttendanceService {
	s.publisher = publisher
	return s
}

func (s *AttendanceService) WithClock(now func() time.Time) *AttendanceService {
	s.now = now
	return s
}

// Register captures a face and stores it under the normalized name. A
// capture without an encoding returns ErrCaptureFailed carrying the
// session status so the caller can prompt again.
func (s *AttendanceService) Register(ctx context.Context, name string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrValidationFailed.WithMessage("name is required")
	}

	res, err := s.capture(ctx, domain.PurposeRegister)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		s.audit(ctx, domain.PurposeRegister, res, res.State.String(), nil)
		return nil, domain.ErrCaptureFailed.WithMessage(res.Status)
	}

	user := domain.NewUser(name, *res.Encoding, s.now())
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	s.audit(ctx, domain.PurposeRegister, res, res.State.String(), &user.Key)
	s.publisher.UserRegistered(user)
	s.logger.Info("user registered", "key", user.Key, "frames", res.Frames)

	return user, nil
}

// MarkAttendance identifies the person in front of the camera and records
// their attendance for today. Registered users are loaded before the
// camera is touched.
func (s *AttendanceService) MarkAttendance(ctx context.Context) (*domain.AttendanceRecord, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, domain.ErrNoUsersRegistered
	}

	res, err := s.capture(ctx, domain.PurposeAttendance)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		s.audit(ctx, domain.PurposeAttendance, res, res.State.String(), nil)
		return nil, domain.ErrCaptureFailed.WithMessage(res.Status)
	}

	match, ok := FirstMatch(users, *res.Encoding, s.tolerance)
	if !ok {
		s.audit(ctx, domain.PurposeAttendance, res, outcomeNotRecognized, nil)
		return nil, domain.ErrFaceNotRecognized
	}

	record := &domain.AttendanceRecord{
		UserKey:  match.Key,
		Name:     match.Name,
		MarkedAt: s.now(),
	}
	if err := s.attendance.Mark(ctx, record); err != nil {
		return nil, err
	}

	s.audit(ctx, domain.PurposeAttendance, res, res.State.String(), &match.Key)
	s.publisher.AttendanceMarked(record)
	s.logger.Info("attendance marked", "key", match.Key, "date", record.Date())

	return record, nil
}

func (s *AttendanceService) User(ctx context.Context, key string) (*domain.User, error) {
	return s.users.GetByKey(ctx, key)
}

func (s *AttendanceService) Users(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Records returns the records of one date, or every record when date is empty.
func (s *AttendanceService) Records(ctx context.Context, date string) ([]domain.AttendanceRecord, error) {
	if date == "" {
		return s.attendance.List(ctx)
	}
	if _, err := domain.ParseDate(date); err != nil {
		return nil, err
	}
	return s.attendance.ListByDate(ctx, date)
}

func (s *AttendanceService) Analytics(ctx context.Context) (*domain.AttendanceSummary, error) {
	records, err := s.attendance.List(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(records), nil
}

func (s *AttendanceService) capture(ctx context.Context, purpose domain.CapturePurpose) (*capture.Result, error) {
	res, err := s.capturer.CaptureFace(ctx)
	if err != nil {
		s.logger.Warn("capture unavailable", "purpose", purpose, "error", err)
		return nil, err
	}
	return res, nil
}

// audit records the attempt. Failures are logged and never returned.
func (s *AttendanceService) audit(ctx context.Context, purpose domain.CapturePurpose, res *capture.Result, outcome string, userKey *string) {
	if s.attempts == nil {
		return
	}

	attempt := &domain.CaptureAttempt{
		Purpose:   purpose,
		Outcome:   outcome,
		Frames:    res.Frames,
		LatencyMs: res.Duration.Milliseconds(),
		UserKey:   userKey,
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		s.logger.Error("failed to write capture attempt", "purpose", purpose, "error", err)
	}
}

// CompareFaces reports, for each known encoding, whether it is within
// tolerance of the candidate.
func CompareFaces(known []domain.FaceEncoding, candidate domain.FaceEncoding, tolerance float64) []bool {
	matches := make([]bool, len(known))
	for i, enc := range known {
		matches[i] = domain.Distance(enc, candidate) <= tolerance
	}
	return matches
}

// FirstMatch returns the first user, in the given order, whose encoding
// matches the candidate.
func FirstMatch(users []domain.User, candidate domain.FaceEncoding, tolerance float64) (*domain.User, bool) {
	known := make([]domain.FaceEncoding, len(users))
	for i := range users {
		known[i] = users[i].Encoding
	}

	for i, ok := range CompareFaces(known, candidate, tolerance) {
		if ok {
			return &users[i], true
		}
	}
	return nil, false
}

// Summarize aggregates records into daily, per-person and per-hour counts.
func Summarize(records []domain.AttendanceRecord) *domain.AttendanceSummary {
	summary := &domain.AttendanceSummary{
		TotalRecords: len(records),
		ByDate:       []domain.DailyCount{},
		ByPerson:     []domain.PersonCount{},
		Recent:       []domain.AttendanceRecord{},
	}

	byDate := make(map[string]int)
	byPerson := make(map[string]int)
	for _, rec := range records {
		byDate[rec.Date()]++
		byPerson[rec.Name]++
		summary.ByHour[rec.MarkedAt.Hour()]++
	}
	summary.UniqueAttendees = len(byPerson)

	for date, n := range byDate {
		summary.ByDate = append(summary.ByDate, domain.DailyCount{Date: date, Count: n})
	}
	sort.Slice(summary.ByDate, func(i, j int) bool {
		return summary.ByDate[i].Date < summary.ByDate[j].Date
	})

	for name, n := range byPerson {
		summary.ByPerson = append(summary.ByPerson, domain.PersonCount{Name: name, Count: n})
	}
	sort.Slice(summary.ByPerson, func(i, j int) bool {
		a, b := summary.ByPerson[i], summary.ByPerson[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Name < b.Name
	})

	recent := make([]domain.AttendanceRecord, len(records))
	copy(recent, records)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].MarkedAt.After(recent[j].MarkedAt)
	})
	if len(recent) > RecentLimit {
		recent = recent[:RecentLimit]
	}
	summary.Recent = recent

	return summary
}
