package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	require.Equal(t, 24*time.Hour, cfg.Auth.AccessTTL)
	require.Equal(t, "localhost", cfg.DB.Primary.Host)
	require.Equal(t, 5, cfg.DB.WriteAttempts)
	require.Equal(t, 5*time.Minute, cfg.Verification.TTL)
	require.True(t, cfg.Metrics.Enabled)
	require.False(t, cfg.Otel.Enabled)

	require.ErrorContains(t, cfg.Validate(), "auth.jwt_secret")
}

func TestLoadConfigFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
addr = ":9090"

[auth]
jwt_secret = "from-file"
access_ttl = "2h"

[db.primary]
host = "db.internal"
name = "studio_prod"

[db.business]
host = "biz.internal"

[cors]
allow_origins = ["https://studio.example.com"]
`), 0o600))

	t.Setenv("STUDIO_AUTH__JWT_SECRET", "from-env")
	t.Setenv("STUDIO_DB__PRIMARY__PORT", "6543")
	t.Setenv("STUDIO_REDIS__ADDR", "cache:6379")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, "from-env", cfg.Auth.JWTSecret)
	require.Equal(t, 2*time.Hour, cfg.Auth.AccessTTL)
	require.Equal(t, "db.internal", cfg.DB.Primary.Host)
	require.Equal(t, "6543", cfg.DB.Primary.Port)
	require.Equal(t, "biz.internal", cfg.DB.Business.Host)
	require.Equal(t, "cache:6379", cfg.Redis.Addr)
	require.Equal(t, []string{"https://studio.example.com"}, cfg.CORS.AllowOrigins)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	require.Equal(t, "db.primary.max_open_conns", envKey("STUDIO_DB__PRIMARY__MAX_OPEN_CONNS"))
	require.Equal(t, "server.addr", envKey("STUDIO_SERVER__ADDR"))
}
