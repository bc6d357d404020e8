package app

import (
	"context"
	"fmt"

	"signin-service/internal/config"
	"signin-service/internal/db"
	"signin-service/internal/logger"
	"signin-service/internal/redis"
)

type Infra struct {
	DB    *db.DB
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	if err := migrate(ctx, cfg.MigrationURL()); err != nil {
		return nil, err
	}

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	logger.Info("database ready", nil)

	redisClient, err := redis.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	logger.Info("redis ready", map[string]any{
		"addr": cfg.RedisAddr,
	})

	return &Infra{
		DB:    database,
		Redis: redisClient,
	}, nil
}

// migrate runs the schema on its own connection so a pooled DATABASE_URL
// is never used for DDL when DIRECT_URL is configured.
func migrate(ctx context.Context, dsn string) error {
	conn, err := db.Open(ctx, dsn)
	if err != nil {
		return fmt.Errorf("migration connection: %w", err)
	}
	defer conn.Close()

	return db.Migrate(ctx, conn.DB)
}

func (i *Infra) Close() error {
	redisErr := i.Redis.Close()
	if err := i.DB.Close(); err != nil {
		return err
	}
	return redisErr
}
