package app

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/harryc904/Studio/internal/clients/redis"
	"github.com/harryc904/Studio/internal/data/db"
	"github.com/harryc904/Studio/internal/observability"
	"github.com/harryc904/Studio/internal/platform/logger"
	"github.com/harryc904/Studio/internal/services"
)

// EnvPrefix namespaces environment overrides. Nested keys use a double underscore,
// so STUDIO_DB__PRIMARY__HOST sets db.primary.host.
const EnvPrefix = "STUDIO_"

type Config struct {
	Server       ServerConfig                `koanf:"server"`
	Log          logger.Config               `koanf:"log"`
	Auth         services.AuthConfig         `koanf:"auth"`
	DB           DBConfig                    `koanf:"db"`
	Redis        redis.Config                `koanf:"redis"`
	Verification services.VerificationConfig `koanf:"verification"`
	Otel         observability.OtelConfig    `koanf:"otel"`
	Metrics      observability.MetricsConfig `koanf:"metrics"`
	CORS         CORSConfig                  `koanf:"cors"`
}

type ServerConfig struct {
	Addr           string        `koanf:"addr"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
	ShutdownGrace  time.Duration `koanf:"shutdown_grace"`
}

type DBConfig struct {
	Primary  db.Config `koanf:"primary"`
	Business db.Config `koanf:"business"`
	// TxTimeout bounds each aggregate transaction.
	TxTimeout     time.Duration `koanf:"tx_timeout"`
	WriteAttempts int           `koanf:"write_attempts"`
	AutoMigrate   bool          `koanf:"auto_migrate"`
}

type CORSConfig struct {
	AllowOrigins []string `koanf:"allow_origins"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"server.addr":                  ":8080",
		"server.request_timeout":       "30s",
		"server.shutdown_grace":        "15s",
		"log.mode":                     "development",
		"log.level":                    "info",
		"log.redact":                   true,
		"auth.access_ttl":              "24h",
		"db.primary.driver":            db.DriverPostgres,
		"db.primary.host":              "localhost",
		"db.primary.port":              "5432",
		"db.primary.user":              "postgres",
		"db.primary.name":              "studio",
		"db.primary.sslmode":           "disable",
		"db.tx_timeout":                "10s",
		"db.write_attempts":            5,
		"db.auto_migrate":              true,
		"verification.ttl":             "5m",
		"verification.resend_interval": "1m",
		"otel.service_name":            "studio",
		"otel.sample_ratio":            1.0,
		"metrics.enabled":              true,
		"metrics.scrape_interval":      "15s",
	}
}

// LoadConfig layers defaults, the optional TOML file at path and STUDIO_ environment
// variables, in that order.
func LoadConfig(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if path = strings.TrimSpace(path); path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("config file: %w", err)
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate checks the settings needed to serve traffic.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if !c.DB.Primary.Configured() {
		errs = append(errs, errors.New("db.primary needs a dsn or host"))
	}
	if c.DB.WriteAttempts < 1 {
		errs = append(errs, errors.New("db.write_attempts must be at least 1"))
	}
	return errors.Join(errs...)
}
