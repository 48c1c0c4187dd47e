package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/harryc904/Studio/internal/clients/redis"
	"github.com/harryc904/Studio/internal/platform/logger"
)

type Clients struct {
	Redis     *goredis.Client
	CodeStore *redis.CodeStore
}

// wireClients leaves every field nil when redis is not configured.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	rdb, err := redis.NewClient(ctx, log, cfg.Redis)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	if rdb == nil {
		return Clients{}, nil
	}
	return Clients{
		Redis:     rdb,
		CodeStore: redis.NewCodeStore(log, rdb, cfg.Redis.KeyPrefix),
	}, nil
}

func (c Clients) Close() error {
	if c.Redis == nil {
		return nil
	}
	return c.Redis.Close()
}
