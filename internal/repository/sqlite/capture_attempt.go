package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/repository"
)

type CaptureAttemptStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewCaptureAttemptStore(db *DB) *CaptureAttemptStore {
	return &CaptureAttemptStore{db: db.db, now: time.Now}
}

func (s *CaptureAttemptStore) Create(ctx context.Context, a *domain.CaptureAttempt) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = s.now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO capture_attempts (id, purpose, outcome, frames, latency_ms, user_key, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID.String(), string(a.Purpose), a.Outcome, a.Frames, a.LatencyMs, a.UserKey, formatTime(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("create capture attempt: %w", err)
	}

	return nil
}

var _ repository.CaptureAttemptRepositoryInterface = (*CaptureAttemptStore)(nil)
