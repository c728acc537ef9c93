package tokenstore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"event-admin-console/internal/config"
	"event-admin-console/internal/db"
	"event-admin-console/internal/security"
)

// Open builds the Store selected by cfg.TokenStoreDriver. The returned close func releases
// any connection the backend holds and is never nil.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.TokenStoreDriver {
	case config.DriverMemory:
		return New(NewMemoryBackend(), logger), noop, nil

	case config.DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("token store redis: %w", err)
		}
		return New(NewRedisBackend(client, cfg.TokenNamespace), logger), client.Close, nil

	case config.DriverPostgres:
		pool, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("token store postgres: %w", err)
		}
		return New(NewPostgresBackend(pool, cfg.TokenNamespace), logger), pool.Close, nil

	case config.DriverFile, "":
		var cipher *security.Cipher
		if cfg.TokenStoreKey != "" {
			c, err := security.NewCipher(cfg.TokenStoreKey)
			if err != nil {
				return nil, noop, fmt.Errorf("token store key: %w", err)
			}
			cipher = c
		}
		fb, err := NewFileBackend(cfg.TokenStorePath, cipher, logger)
		if err != nil {
			return nil, noop, err
		}
		return New(fb, logger), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown token store driver %q", cfg.TokenStoreDriver)
	}
}
