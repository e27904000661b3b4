package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	goredis "github.com/redis/go-redis/v9"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/repository"
)

type AttendanceStore struct {
	client Client
}

func NewAttendanceStore(client Client) *AttendanceStore {
	return &AttendanceStore{client: client}
}

// Mark overwrites the record of the user on the record's date.
func (s *AttendanceStore) Mark(ctx context.Context, record *domain.AttendanceRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode attendance: %w", err)
	}

	date := record.Date()
	if err := s.client.Set(ctx, attendanceKey(date, record.UserKey), data, 0).Err(); err != nil {
		return fmt.Errorf("mark attendance: %w", err)
	}
	if err := s.client.SAdd(ctx, attendanceIndexKey(date), record.UserKey).Err(); err != nil {
		return fmt.Errorf("index attendance: %w", err)
	}
	if err := s.client.SAdd(ctx, attendanceDatesKey, date).Err(); err != nil {
		return fmt.Errorf("index attendance date: %w", err)
	}

	return nil
}

// ListByDate returns the records of one date ordered by time.
func (s *AttendanceStore) ListByDate(ctx context.Context, date string) ([]domain.AttendanceRecord, error) {
	keys, err := s.client.SMembers(ctx, attendanceIndexKey(date)).Result()
	if err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}

	records := make([]domain.AttendanceRecord, 0, len(keys))
	for _, key := range keys {
		data, err := s.client.Get(ctx, attendanceKey(date, key)).Bytes()
		if errors.Is(err, goredis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get attendance %s/%s: %w", date, key, err)
		}

		var rec domain.AttendanceRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("decode attendance %s/%s: %w", date, key, err)
		}
		records = append(records, rec)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].MarkedAt.Before(records[j].MarkedAt)
	})

	return records, nil
}

// List returns all records ordered by date then time.
func (s *AttendanceStore) List(ctx context.Context) ([]domain.AttendanceRecord, error) {
	dates, err := s.client.SMembers(ctx, attendanceDatesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list attendance dates: %w", err)
	}
	sort.Strings(dates)

	var records []domain.AttendanceRecord
	for _, date := range dates {
		day, err := s.ListByDate(ctx, date)
		if err != nil {
			return nil, err
		}
		records = append(records, day...)
	}

	return records, nil
}

var _ repository.AttendanceRepositoryInterface = (*AttendanceStore)(nil)
