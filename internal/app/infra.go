package app

import (
	"context"
	"errors"

	"hirehub/internal/config"
	"hirehub/internal/db"
	"hirehub/internal/logger"
	"hirehub/internal/redis"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Infra struct {
	DB    *pgxpool.Pool
	Redis *redis.Client // nil unless sessions live in Redis
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	if cfg.AutoMigrate {
		if err := migrateUp(cfg.DatabaseDSN); err != nil {
			return nil, err
		}
	}

	pool, err := db.Connect(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	logger.Info("database ready", nil)

	infra := &Infra{DB: pool}

	if cfg.SessionBackend == config.SessionBackendRedis {
		client, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			pool.Close()
			return nil, err
		}
		infra.Redis = client

		logger.Info("redis ready", nil)
	}

	return infra, nil
}

func migrateUp(dsn string) (err error) {
	migrator, err := db.NewMigrator(dsn)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, migrator.Close())
	}()

	if err := migrator.Up(); err != nil {
		return err
	}

	version, _, err := migrator.Version()
	if err != nil {
		return err
	}
	logger.Info("migrations applied", map[string]any{
		"version": version,
	})
	return nil
}

// Ping reports whether every backing service answers.
func (i *Infra) Ping(ctx context.Context) error {
	if err := i.DB.Ping(ctx); err != nil {
		return err
	}
	if i.Redis != nil {
		return i.Redis.Ping(ctx).Err()
	}
	return nil
}

func (i *Infra) Close() error {
	var err error
	if i.Redis != nil {
		err = i.Redis.Close()
	}
	i.DB.Close()
	return err
}
