package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/repository"
)

type CaptureAttemptStore struct {
	client Client
	now    func() time.Time
}

func NewCaptureAttemptStore(client Client) *CaptureAttemptStore {
	return &CaptureAttemptStore{client: client, now: time.Now}
}

// Create appends the attempt to the audit list.
func (s *CaptureAttemptStore) Create(ctx context.Context, a *domain.CaptureAttempt) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = s.now()

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode capture attempt: %w", err)
	}
	if err := s.client.RPush(ctx, captureAttemptsKey, data).Err(); err != nil {
		return fmt.Errorf("create capture attempt: %w", err)
	}

	return nil
}

var _ repository.CaptureAttemptRepositoryInterface = (*CaptureAttemptStore)(nil)
