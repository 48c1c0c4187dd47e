package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/harryc904/Studio/internal/platform/logger"
)

type Config struct {
	Addr        string        `koanf:"addr"`
	Password    string        `koanf:"password"`
	DB          int           `koanf:"db"`
	DialTimeout time.Duration `koanf:"dial_timeout"`
	KeyPrefix   string        `koanf:"key_prefix"`
}

func (c Config) Configured() bool { return strings.TrimSpace(c.Addr) != "" }

// NewClient dials and pings redis. It returns nil, nil when no address is configured.
func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (*goredis.Client, error) {
	if !cfg.Configured() {
		if log != nil {
			log.Warn("redis not configured; verification codes disabled")
		}
		return nil, nil
	}
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = 5 * time.Second
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        strings.TrimSpace(cfg.Addr),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dial,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dial)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if log != nil {
		log.Info("redis connected", "addr", cfg.Addr, "db", cfg.DB)
	}
	return rdb, nil
}
