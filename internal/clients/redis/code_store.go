package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/harryc904/Studio/internal/platform/logger"
)

// CodeStore keeps one pending verification code per (purpose, phone).
type CodeStore struct {
	log    *logger.Logger
	rdb    goredis.UniversalClient
	prefix string
}

func NewCodeStore(log *logger.Logger, rdb goredis.UniversalClient, prefix string) *CodeStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "studio"
	}
	return &CodeStore{log: log.With("client", "RedisCodeStore"), rdb: rdb, prefix: prefix}
}

func (s *CodeStore) key(purpose, phone string) string {
	return fmt.Sprintf("%s:verify:%s:%s", s.prefix, purpose, phone)
}

func (s *CodeStore) Put(ctx context.Context, purpose, phone, code string, ttl time.Duration) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis code store not initialized")
	}
	return s.rdb.Set(ctx, s.key(purpose, phone), code, ttl).Err()
}

// Take returns the stored code and deletes it, so a code verifies at most once.
// ok is false when nothing is stored or it already expired.
func (s *CodeStore) Take(ctx context.Context, purpose, phone string) (code string, ok bool, err error) {
	if s == nil || s.rdb == nil {
		return "", false, fmt.Errorf("redis code store not initialized")
	}
	code, err = s.rdb.GetDel(ctx, s.key(purpose, phone)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return code, true, nil
}

func (s *CodeStore) Ping(ctx context.Context) error {
	if s == nil || s.rdb == nil {
		return fmt.Errorf("redis code store not initialized")
	}
	return s.rdb.Ping(ctx).Err()
}
