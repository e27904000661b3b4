package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/repository"
)

type AttendanceStore struct {
	db *sql.DB
}

func NewAttendanceStore(db *DB) *AttendanceStore {
	return &AttendanceStore{db: db.db}
}

func (s *AttendanceStore) Mark(ctx context.Context, record *domain.AttendanceRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (attendance_date, user_key, name, marked_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (attendance_date, user_key) DO UPDATE
		SET name = excluded.name, marked_at = excluded.marked_at
	`, record.Date(), record.UserKey, record.Name, formatTime(record.MarkedAt))
	if err != nil {
		return fmt.Errorf("mark attendance: %w", err)
	}

	return nil
}

func (s *AttendanceStore) ListByDate(ctx context.Context, date string) ([]domain.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_key, name, marked_at FROM attendance
		WHERE attendance_date = ?
		ORDER BY marked_at
	`, date)
	if err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}

	return collectRecords(rows)
}

func (s *AttendanceStore) List(ctx context.Context) ([]domain.AttendanceRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_key, name, marked_at FROM attendance
		ORDER BY attendance_date, marked_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}

	return collectRecords(rows)
}

func collectRecords(rows *sql.Rows) ([]domain.AttendanceRecord, error) {
	defer rows.Close()

	var records []domain.AttendanceRecord
	for rows.Next() {
		var rec domain.AttendanceRecord
		var rawMarked string
		if err := rows.Scan(&rec.UserKey, &rec.Name, &rawMarked); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		markedAt, err := parseTime(rawMarked)
		if err != nil {
			return nil, err
		}
		rec.MarkedAt = markedAt
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}

	return records, nil
}

var _ repository.AttendanceRepositoryInterface = (*AttendanceStore)(nil)
