package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

type CaptureAttemptRepository struct {
	pool PgxPool
}

func NewCaptureAttemptRepository(pool PgxPool) *CaptureAttemptRepository {
	return &CaptureAttemptRepository{pool: pool}
}

func (r *CaptureAttemptRepository) Create(ctx context.Context, a *domain.CaptureAttempt) error {
	query := `
		INSERT INTO capture_attempts (id, purpose, outcome, frames, latency_ms, user_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		a.ID,
		string(a.Purpose),
		a.Outcome,
		a.Frames,
		a.LatencyMs,
		a.UserKey,
	).Scan(&a.CreatedAt)
	if err != nil {
		return fmt.Errorf("create capture attempt: %w", err)
	}

	return nil
}
