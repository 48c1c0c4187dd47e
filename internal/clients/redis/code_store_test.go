package redis

import (
	"context"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/harryc904/Studio/internal/platform/logger"
)

func TestCodeStoreKeyLayout(t *testing.T) {
	s := NewCodeStore(logger.Nop(), nil, "")
	require.Equal(t, "studio:verify:login:13800000000", s.key("login", "13800000000"))

	_, _, err := s.Take(context.Background(), "login", "1")
	require.Error(t, err)
}

func TestNewClientWithoutAddrIsDisabled(t *testing.T) {
	rdb, err := NewClient(context.Background(), logger.Nop(), Config{})
	require.NoError(t, err)
	require.Nil(t, rdb)
}

func TestCodeStoreAgainstRedis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis integration tests")
	}
	ctx := context.Background()
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	s := NewCodeStore(logger.Nop(), rdb, "studio-test")

	phone := "139" + time.Now().Format("150405000")
	require.NoError(t, s.Put(ctx, "register", phone, "123456", time.Minute))

	code, ok, err := s.Take(ctx, "register", phone)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "123456", code)

	_, ok, err = s.Take(ctx, "register", phone)
	require.NoError(t, err)
	require.False(t, ok, "a code is consumed by the first take")
}
