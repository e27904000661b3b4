package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

type UserRepository struct {
	pool PgxPool
}

func NewUserRepository(pool PgxPool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Save inserts the user or replaces the encoding of an existing key.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (key, name, encoding, registered_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (key) DO UPDATE
		SET name = EXCLUDED.name, encoding = EXCLUDED.encoding, registered_at = EXCLUDED.registered_at
	`

	_, err := r.pool.Exec(ctx, query,
		user.Key,
		user.Name,
		toVector(user.Encoding),
		user.RegisteredAt,
	)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	return nil
}

func (r *UserRepository) GetByKey(ctx context.Context, key string) (*domain.User, error) {
	query := `
		SELECT key, name, encoding, registered_at
		FROM users
		WHERE key = $1
	`

	var user domain.User
	var embedding *pgvector.Vector

	err := r.pool.QueryRow(ctx, query, key).Scan(
		&user.Key,
		&user.Name,
		&embedding,
		&user.RegisteredAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by key: %w", err)
	}

	user.Encoding, err = fromVector(embedding)
	if err != nil {
		return nil, fmt.Errorf("get user by key: %w", err)
	}

	return &user, nil
}

// List returns every user ordered by key.
func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	query := `
		SELECT key, name, encoding, registered_at
		FROM users
		ORDER BY key
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		var embedding *pgvector.Vector
		if err := rows.Scan(&user.Key, &user.Name, &embedding, &user.RegisteredAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if user.Encoding, err = fromVector(embedding); err != nil {
			return nil, fmt.Errorf("scan user %s: %w", user.Key, err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, key string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// FindNearest returns the user closest to enc by L2 distance, using the
// HNSW index. Callers still decide whether the distance is a match.
func (r *UserRepository) FindNearest(ctx context.Context, enc domain.FaceEncoding) (*domain.User, float64, error) {
	query := `
		SELECT key, name, encoding, registered_at, encoding <-> $1 AS distance
		FROM users
		ORDER BY encoding <-> $1
		LIMIT 1
	`

	var user domain.User
	var embedding *pgvector.Vector
	var distance float64

	err := r.pool.QueryRow(ctx, query, toVector(enc)).Scan(
		&user.Key,
		&user.Name,
		&embedding,
		&user.RegisteredAt,
		&distance,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, domain.ErrNoUsersRegistered
	}
	if err != nil {
		return nil, 0, fmt.Errorf("find nearest user: %w", err)
	}

	if user.Encoding, err = fromVector(embedding); err != nil {
		return nil, 0, fmt.Errorf("find nearest user: %w", err)
	}

	return &user, distance, nil
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
