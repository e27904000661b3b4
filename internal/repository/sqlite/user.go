package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/repository"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db.db}
}

func (s *UserStore) Save(ctx context.Context, user *domain.User) error {
	enc, err := json.Marshal(user.Encoding.Slice())
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (key, name, encoding, registered_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE
		SET name = excluded.name, encoding = excluded.encoding, registered_at = excluded.registered_at
	`, user.Key, user.Name, string(enc), formatTime(user.RegisteredAt))
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	return nil
}

func (s *UserStore) GetByKey(ctx context.Context, key string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT key, name, encoding, registered_at FROM users WHERE key = ?`, key)

	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by key: %w", err)
	}

	return user, nil
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, name, encoding, registered_at FROM users ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func (s *UserStore) Delete(ctx context.Context, key string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		user          domain.User
		rawEncoding   string
		rawRegistered string
	)
	if err := row.Scan(&user.Key, &user.Name, &rawEncoding, &rawRegistered); err != nil {
		return nil, err
	}

	var values []float32
	if err := json.Unmarshal([]byte(rawEncoding), &values); err != nil {
		return nil, fmt.Errorf("decode encoding of %s: %w", user.Key, err)
	}
	enc, err := domain.EncodingFromFloat32(values)
	if err != nil {
		return nil, fmt.Errorf("decode encoding of %s: %w", user.Key, err)
	}
	user.Encoding = enc

	if user.RegisteredAt, err = parseTime(rawRegistered); err != nil {
		return nil, err
	}

	return &user, nil
}

var _ repository.UserRepositoryInterface = (*UserStore)(nil)
