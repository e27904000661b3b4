package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/presenca/internal/capture"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/liveness"
)

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) GetByKey(ctx context.Context, key string) (*domain.User, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

type MockAttendanceStore struct {
	mock.Mock
}

func (m *MockAttendanceStore) Mark(ctx context.Context, record *domain.AttendanceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAttendanceStore) ListByDate(ctx context.Context, date string) ([]domain.AttendanceRecord, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceRecord), args.Error(1)
}

func (m *MockAttendanceStore) List(ctx context.Context) ([]domain.AttendanceRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceRecord), args.Error(1)
}

type MockAttemptStore struct {
	mock.Mock
}

func (m *MockAttemptStore) Create(ctx context.Context, attempt *domain.CaptureAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

type MockCapturer struct {
	mock.Mock
}

func (m *MockCapturer) CaptureFace(ctx context.Context) (*capture.Result, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*capture.Result), args.Error(1)
}

type recordingPublisher struct {
	users   []*domain.User
	records []*domain.AttendanceRecord
}

func (p *recordingPublisher) UserRegistered(user *domain.User) {
	p.users = append(p.users, user)
}

func (p *recordingPublisher) AttendanceMarked(record *domain.AttendanceRecord) {
	p.records = append(p.records, record)
}

var fixedNow = time.Date(2024, 3, 9, 8, 30, 0, 0, time.UTC)

func axis(i int, scale float32) domain.FaceEncoding {
	var enc domain.FaceEncoding
	enc[i] = scale
	return enc
}

func completed(enc domain.FaceEncoding) *capture.Result {
	return &capture.Result{
		Encoding: &enc,
		State:    liveness.StateCompleted,
		Status:   capture.MsgCaptured,
		Frames:   32,
		Duration: 3 * time.Second,
	}
}

func newTestService(users *MockUserStore, attendance *MockAttendanceStore, capturer *MockCapturer) *AttendanceService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAttendanceService(users, attendance, capturer, logger).
		WithClock(func() time.Time { return fixedNow })
}

func TestAttendanceService_Register(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		setupMocks func(*MockUserStore, *MockCapturer, *MockAttemptStore)
		wantErr    error
		wantKey    string
	}{
		{
			name:  "successful registration",
			input: "  Ada Lovelace ",
			setupMocks: func(us *MockUserStore, c *MockCapturer, as *MockAttemptStore) {
				c.On("CaptureFace", mock.Anything).Return(completed(axis(0, 1)), nil)
				us.On("Save", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
					return u.Key == "ada_lovelace" && u.Name == "Ada Lovelace" && u.Encoding == axis(0, 1)
				})).Return(nil)
				as.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.CaptureAttempt) bool {
					return a.Purpose == domain.PurposeRegister && a.Outcome == "completed" &&
						a.UserKey != nil && *a.UserKey == "ada_lovelace" && a.LatencyMs == 3000
				})).Return(nil)
			},
			wantKey: "ada_lovelace",
		},
		{
			name:       "blank name",
			input:      "   ",
			setupMocks: func(*MockUserStore, *MockCapturer, *MockAttemptStore) {},
			wantErr:    domain.ErrValidationFailed,
		},
		{
			name:  "camera unavailable",
			input: "Ada",
			setupMocks: func(us *MockUserStore, c *MockCapturer, as *MockAttemptStore) {
				c.On("CaptureFace", mock.Anything).Return(nil, domain.ErrCameraUnavailable)
			},
			wantErr: domain.ErrCameraUnavailable,
		},
		{
			name:  "session timed out",
			input: "Ada",
			setupMocks: func(us *MockUserStore, c *MockCapturer, as *MockAttemptStore) {
				c.On("CaptureFace", mock.Anything).Return(&capture.Result{
					State:  liveness.StateTimedOut,
					Status: liveness.MsgTimedOut,
				}, nil)
				as.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.CaptureAttempt) bool {
					return a.Outcome == "timed_out" && a.UserKey == nil
				})).Return(nil)
			},
			wantErr: domain.ErrCaptureFailed,
		},
		{
			name:  "audit failure is not returned",
			input: "Ada",
			setupMocks: func(us *MockUserStore, c *MockCapturer, as *MockAttemptStore) {
				c.On("CaptureFace", mock.Anything).Return(completed(axis(1, 1)), nil)
				us.On("Save", mock.Anything, mock.Anything).Return(nil)
				as.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full"))
			},
			wantKey: "ada",
		},
		{
			name:  "store failure",
			input: "Ada",
			setupMocks: func(us *MockUserStore, c *MockCapturer, as *MockAttemptStore) {
				c.On("CaptureFace", mock.Anything).Return(completed(axis(1, 1)), nil)
				us.On("Save", mock.Anything, mock.Anything).Return(domain.ErrInternal)
			},
			wantErr: domain.ErrInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &MockUserStore{}
			capturer := &MockCapturer{}
			attempts := &MockAttemptStore{}
			publisher := &recordingPublisher{}

			tt.setupMocks(users, capturer, attempts)

			svc := newTestService(users, &MockAttendanceStore{}, capturer).
				WithAttempts(attempts).
				WithPublisher(publisher)

			user, err := svc.Register(context.Background(), tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				assert.Empty(t, publisher.users)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantKey, user.Key)
				assert.Equal(t, fixedNow, user.RegisteredAt)
				require.Len(t, publisher.users, 1)
			}

			users.AssertExpectations(t)
			capturer.AssertExpectations(t)
			attempts.AssertExpectations(t)
		})
	}
}

func TestAttendanceService_Register_CarriesSessionStatus(t *testing.T) {
	capturer := &MockCapturer{}
	capturer.On("CaptureFace", mock.Anything).Return(&capture.Result{
		State:  liveness.StateCompleted,
		Status: capture.MsgExtractionFailed,
	}, nil)

	svc := newTestService(&MockUserStore{}, &MockAttendanceStore{}, capturer)
	_, err := svc.Register(context.Background(), "Ada")

	var appErr *domain.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, capture.MsgExtractionFailed, appErr.Message)
}

func TestAttendanceService_MarkAttendance(t *testing.T) {
	registered := []domain.User{
		{Key: "ada", Name: "Ada", Encoding: axis(0, 1)},
		{Key: "grace", Name: "Grace", Encoding: axis(1, 1)},
		{Key: "grace_twin", Name: "Grace Twin", Encoding: axis(1, 1)},
	}

	tests := []struct {
		name       string
		setupMocks func(*MockUserStore, *MockAttendanceStore, *MockCapturer)
		wantErr    error
		wantKey    string
	}{
		{
			name: "first match in stored order wins",
			setupMocks: func(us *MockUserStore, as *MockAttendanceStore, c *MockCapturer) {
				us.On("List", mock.Anything).Return(registered, nil)
				probe := axis(1, 1)
				probe[0] = 0.3
				c.On("CaptureFace", mock.Anything).Return(completed(probe), nil)
				as.On("Mark", mock.Anything, mock.MatchedBy(func(r *domain.AttendanceRecord) bool {
					return r.UserKey == "grace" && r.Name == "Grace" && r.MarkedAt.Equal(fixedNow)
				})).Return(nil)
			},
			wantKey: "grace",
		},
		{
			name: "no users registered skips the camera",
			setupMocks: func(us *MockUserStore, as *MockAttendanceStore, c *MockCapturer) {
				us.On("List", mock.Anything).Return([]domain.User{}, nil)
			},
			wantErr: domain.ErrNoUsersRegistered,
		},
		{
			name: "face not recognized",
			setupMocks: func(us *MockUserStore, as *MockAttendanceStore, c *MockCapturer) {
				us.On("List", mock.Anything).Return(registered, nil)
				c.On("CaptureFace", mock.Anything).Return(completed(axis(5, 1)), nil)
			},
			wantErr: domain.ErrFaceNotRecognized,
		},
		{
			name: "capture without encoding",
			setupMocks: func(us *MockUserStore, as *MockAttendanceStore, c *MockCapturer) {
				us.On("List", mock.Anything).Return(registered, nil)
				c.On("CaptureFace", mock.Anything).Return(&capture.Result{
					State:  liveness.StateCameraError,
					Status: liveness.MsgCameraError,
				}, nil)
			},
			wantErr: domain.ErrCaptureFailed,
		},
		{
			name: "capture already running",
			setupMocks: func(us *MockUserStore, as *MockAttendanceStore, c *MockCapturer) {
				us.On("List", mock.Anything).Return(registered, nil)
				c.On("CaptureFace", mock.Anything).Return(nil, domain.ErrCaptureInProgress)
			},
			wantErr: domain.ErrCaptureInProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &MockUserStore{}
			attendance := &MockAttendanceStore{}
			capturer := &MockCapturer{}
			publisher := &recordingPublisher{}

			tt.setupMocks(users, attendance, capturer)

			svc := newTestService(users, attendance, capturer).WithPublisher(publisher)
			record, err := svc.MarkAttendance(context.Background())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, record)
				assert.Empty(t, publisher.records)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantKey, record.UserKey)
				assert.Equal(t, "2024-03-09", record.Date())
				require.Len(t, publisher.records, 1)
			}

			users.AssertExpectations(t)
			attendance.AssertExpectations(t)
			capturer.AssertExpectations(t)
		})
	}
}

func TestAttendanceService_MarkAttendance_AuditsUnrecognized(t *testing.T) {
	users := &MockUserStore{}
	users.On("List", mock.Anything).Return([]domain.User{{Key: "ada", Encoding: axis(0, 1)}}, nil)
	capturer := &MockCapturer{}
	capturer.On("CaptureFace", mock.Anything).Return(completed(axis(3, 1)), nil)
	attempts := &MockAttemptStore{}
	attempts.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.CaptureAttempt) bool {
		return a.Purpose == domain.PurposeAttendance && a.Outcome == "not_recognized"
	})).Return(nil)

	svc := newTestService(users, &MockAttendanceStore{}, capturer).WithAttempts(attempts)
	_, err := svc.MarkAttendance(context.Background())

	assert.ErrorIs(t, err, domain.ErrFaceNotRecognized)
	attempts.AssertExpectations(t)
}

func TestAttendanceService_Records(t *testing.T) {
	records := []domain.AttendanceRecord{{UserKey: "ada", Name: "Ada", MarkedAt: fixedNow}}

	t.Run("by date", func(t *testing.T) {
		attendance := &MockAttendanceStore{}
		attendance.On("ListByDate", mock.Anything, "2024-03-09").Return(records, nil)

		svc := newTestService(&MockUserStore{}, attendance, &MockCapturer{})
		got, err := svc.Records(context.Background(), "2024-03-09")

		require.NoError(t, err)
		assert.Equal(t, records, got)
		attendance.AssertExpectations(t)
	})

	t.Run("all dates", func(t *testing.T) {
		attendance := &MockAttendanceStore{}
		attendance.On("List", mock.Anything).Return(records, nil)

		svc := newTestService(&MockUserStore{}, attendance, &MockCapturer{})
		got, err := svc.Records(context.Background(), "")

		require.NoError(t, err)
		assert.Len(t, got, 1)
		attendance.AssertExpectations(t)
	})

	t.Run("invalid date", func(t *testing.T) {
		svc := newTestService(&MockUserStore{}, &MockAttendanceStore{}, &MockCapturer{})
		_, err := svc.Records(context.Background(), "09/03/2024")
		assert.ErrorIs(t, err, domain.ErrInvalidDate)
	})
}

func TestCompareFaces(t *testing.T) {
	known := []domain.FaceEncoding{axis(0, 1), axis(0, 0.5), axis(1, 1)}

	matches := CompareFaces(known, axis(0, 1), DefaultTolerance)

	assert.Equal(t, []bool{true, true, false}, matches)
	assert.Empty(t, CompareFaces(nil, axis(0, 1), DefaultTolerance))
}

func TestCompareFaces_ToleranceIsInclusive(t *testing.T) {
	matches := CompareFaces([]domain.FaceEncoding{axis(0, 0.5)}, axis(0, 1), 0.5)
	assert.Equal(t, []bool{true}, matches)
}

func TestSummarize(t *testing.T) {
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	var records []domain.AttendanceRecord
	for i := 0; i < 12; i++ {
		name := "Ada"
		if i%3 == 0 {
			name = "Grace"
		}
		records = append(records, domain.AttendanceRecord{
			UserKey:  domain.NormalizeName(name),
			Name:     name,
			MarkedAt: day.Add(time.Duration(i) * 24 * time.Hour).Add(time.Duration(8+i%2) * time.Hour),
		})
	}

	summary := Summarize(records)

	assert.Equal(t, 12, summary.TotalRecords)
	assert.Equal(t, 2, summary.UniqueAttendees)
	require.Len(t, summary.ByDate, 12)
	assert.Equal(t, "2024-03-09", summary.ByDate[0].Date)
	assert.Equal(t, []domain.PersonCount{{Name: "Ada", Count: 8}, {Name: "Grace", Count: 4}}, summary.ByPerson)
	assert.Equal(t, 6, summary.ByHour[8])
	assert.Equal(t, 6, summary.ByHour[9])
	require.Len(t, summary.Recent, RecentLimit)
	assert.Equal(t, records[11].MarkedAt, summary.Recent[0].MarkedAt)
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)

	assert.Zero(t, summary.TotalRecords)
	assert.NotNil(t, summary.ByDate)
	assert.NotNil(t, summary.Recent)
}
