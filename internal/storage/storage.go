// Package storage opens the attendance store selected by configuration.
package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/database"
	"github.com/saturnino-fabrica-de-software/presenca/internal/repository"
	"github.com/saturnino-fabrica-de-software/presenca/internal/repository/redis"
	"github.com/saturnino-fabrica-de-software/presenca/internal/repository/sqlite"
)

const migrationsDB = "presenca"

// Stores groups the repositories of one backend.
type Stores struct {
	Users      repository.UserRepositoryInterface
	Attendance repository.AttendanceRepositoryInterface
	Attempts   repository.CaptureAttemptRepositoryInterface

	ping  func(ctx context.Context) error
	close func() error
}

func (s *Stores) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// Open connects to cfg.StoreType. Postgres is migrated to the latest
// version before use.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	switch cfg.StoreType {
	case config.StorePostgres:
		return openPostgres(ctx, cfg, logger)
	case config.StoreRedis:
		client, err := redis.Connect(ctx, redis.Options{
			Address:  cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		logger.Info("connected to redis", slog.String("address", cfg.RedisAddress))
		return &Stores{
			Users:      redis.NewUserStore(client),
			Attendance: redis.NewAttendanceStore(client),
			Attempts:   redis.NewCaptureAttemptStore(client),
			ping: func(ctx context.Context) error {
				return redis.Ping(ctx, client)
			},
			close: client.Close,
		}, nil
	case config.StoreSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		logger.Info("opened sqlite store", slog.String("path", cfg.SQLitePath))
		return &Stores{
			Users:      sqlite.NewUserStore(db),
			Attendance: sqlite.NewAttendanceStore(db),
			Attempts:   sqlite.NewCaptureAttemptStore(db),
			ping:       db.Ping,
			close:      db.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.StoreType)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Stores, error) {
	sqlDB, err := database.OpenSQL(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	migrator, err := database.NewMigrator(sqlDB, migrationsDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	defer func() { _ = migrator.Close() }()

	if err := migrator.Up(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if version, _, err := migrator.Version(); err == nil {
		logger.Info("database migrated", slog.Uint64("version", uint64(version)))
	}

	pool, err := database.NewPgxPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return nil, err
	}

	return &Stores{
		Users:      repository.NewUserRepository(pool),
		Attendance: repository.NewAttendanceRepository(pool),
		Attempts:   repository.NewCaptureAttemptRepository(pool),
		ping:       pool.Ping,
		close: func() error {
			pool.Close()
			return nil
		},
	}, nil
}
