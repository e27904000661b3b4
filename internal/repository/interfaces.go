package repository

import (
	"context"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// UserRepositoryInterface defines operations for registered users. Every
// storage backend implements it.
type UserRepositoryInterface interface {
	Save(ctx context.Context, user *domain.User) error
	GetByKey(ctx context.Context, key string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Delete(ctx context.Context, key string) error
}

// AttendanceRepositoryInterface defines operations for attendance records
type AttendanceRepositoryInterface interface {
	Mark(ctx context.Context, record *domain.AttendanceRecord) error
	ListByDate(ctx context.Context, date string) ([]domain.AttendanceRecord, error)
	List(ctx context.Context) ([]domain.AttendanceRecord, error)
}

// CaptureAttemptRepositoryInterface defines capture audit logging
type CaptureAttemptRepositoryInterface interface {
	Create(ctx context.Context, attempt *domain.CaptureAttempt) error
}

var (
	_ UserRepositoryInterface           = (*UserRepository)(nil)
	_ AttendanceRepositoryInterface     = (*AttendanceRepository)(nil)
	_ CaptureAttemptRepositoryInterface = (*CaptureAttemptRepository)(nil)
)
