package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/repository"
)

type UserStore struct {
	client Client
}

func NewUserStore(client Client) *UserStore {
	return &UserStore{client: client}
}

type storedUser struct {
	Key          string    `json:"key"`
	Name         string    `json:"name"`
	Encoding     []float32 `json:"encoding"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Save writes the user and adds it to the index. An existing key is overwritten.
func (s *UserStore) Save(ctx context.Context, user *domain.User) error {
	data, err := json.Marshal(storedUser{
		Key:          user.Key,
		Name:         user.Name,
		Encoding:     user.Encoding.Slice(),
		RegisteredAt: user.RegisteredAt,
	})
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	if err := s.client.Set(ctx, userKey(user.Key), data, 0).Err(); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	if err := s.client.SAdd(ctx, usersIndexKey, user.Key).Err(); err != nil {
		return fmt.Errorf("index user: %w", err)
	}

	return nil
}

func (s *UserStore) GetByKey(ctx context.Context, key string) (*domain.User, error) {
	data, err := s.client.Get(ctx, userKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by key: %w", err)
	}

	return decodeUser(data)
}

// List returns every indexed user ordered by key. Index entries without a
// stored user are skipped.
func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	keys, err := s.client.SMembers(ctx, usersIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	sort.Strings(keys)

	users := make([]domain.User, 0, len(keys))
	for _, key := range keys {
		user, err := s.GetByKey(ctx, key)
		if errors.Is(err, domain.ErrUserNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}

	return users, nil
}

func (s *UserStore) Delete(ctx context.Context, key string) error {
	n, err := s.client.Del(ctx, userKey(key)).Result()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if err := s.client.SRem(ctx, usersIndexKey, key).Err(); err != nil {
		return fmt.Errorf("unindex user: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func decodeUser(data []byte) (*domain.User, error) {
	var su storedUser
	if err := json.Unmarshal(data, &su); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}

	enc, err := domain.EncodingFromFloat32(su.Encoding)
	if err != nil {
		return nil, fmt.Errorf("decode user %s: %w", su.Key, err)
	}

	return &domain.User{
		Key:          su.Key,
		Name:         su.Name,
		Encoding:     enc,
		RegisteredAt: su.RegisteredAt,
	}, nil
}

var _ repository.UserRepositoryInterface = (*UserStore)(nil)
