package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

type AttendanceRepository struct {
	pool PgxPool
}

func NewAttendanceRepository(pool PgxPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// Mark stores the record for its date, replacing an earlier mark of the
// same user on that date.
func (r *AttendanceRepository) Mark(ctx context.Context, record *domain.AttendanceRecord) error {
	query := `
		INSERT INTO attendance (attendance_date, user_key, name, marked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (attendance_date, user_key) DO UPDATE
		SET name = EXCLUDED.name, marked_at = EXCLUDED.marked_at
	`

	_, err := r.pool.Exec(ctx, query,
		record.Date(),
		record.UserKey,
		record.Name,
		record.MarkedAt,
	)
	if err != nil {
		return fmt.Errorf("mark attendance: %w", err)
	}

	return nil
}

func (r *AttendanceRepository) ListByDate(ctx context.Context, date string) ([]domain.AttendanceRecord, error) {
	query := `
		SELECT user_key, name, marked_at
		FROM attendance
		WHERE attendance_date = $1
		ORDER BY marked_at
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("list attendance by date: %w", err)
	}

	return collectRecords(rows)
}

func (r *AttendanceRepository) List(ctx context.Context) ([]domain.AttendanceRecord, error) {
	query := `
		SELECT user_key, name, marked_at
		FROM attendance
		ORDER BY attendance_date, marked_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}

	return collectRecords(rows)
}

func collectRecords(rows pgx.Rows) ([]domain.AttendanceRecord, error) {
	defer rows.Close()

	var records []domain.AttendanceRecord
	for rows.Next() {
		var rec domain.AttendanceRecord
		var markedAt time.Time
		if err := rows.Scan(&rec.UserKey, &rec.Name, &markedAt); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		rec.MarkedAt = markedAt
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}

	return records, nil
}
