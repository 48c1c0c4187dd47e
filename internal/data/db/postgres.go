package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/harryc904/Studio/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config describes one connection pool.
type Config struct {
	Driver          string        `koanf:"driver"`
	DSN             string        `koanf:"dsn"`
	Host            string        `koanf:"host"`
	Port            string        `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"sslmode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	SlowThreshold   time.Duration `koanf:"slow_threshold"`
}

// Configured reports whether the pool has enough settings to be opened on its own.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.DSN) != "" || strings.TrimSpace(c.Host) != ""
}

func (c Config) driver() string {
	d := strings.ToLower(strings.TrimSpace(c.Driver))
	if d == "" {
		return DriverPostgres
	}
	return d
}

// DataSource renders the DSN handed to the gorm dialector.
func (c Config) DataSource() string {
	if dsn := strings.TrimSpace(c.DSN); dsn != "" {
		return dsn
	}
	if c.driver() == DriverSQLite {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			name = "studio.db"
		}
		return name + "?_busy_timeout=5000&_journal_mode=WAL"
	}
	sslmode := strings.TrimSpace(c.SSLMode)
	if sslmode == "" {
		sslmode = "disable"
	}
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "5432"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     strings.TrimSpace(c.Host) + ":" + port,
		Path:     "/" + strings.TrimSpace(c.Name),
		RawQuery: "sslmode=" + url.QueryEscape(sslmode),
	}
	return u.String()
}

func (c Config) dialector() (gorm.Dialector, error) {
	switch c.driver() {
	case DriverPostgres:
		return postgres.Open(c.DataSource()), nil
	case DriverSQLite:
		return sqlite.Open(c.DataSource()), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", c.Driver)
	}
}

// Open connects a single pool and applies its pool limits.
func Open(c Config, logg *logger.Logger) (*gorm.DB, error) {
	dialector, err := c.dialector()
	if err != nil {
		return nil, err
	}
	slow := c.SlowThreshold
	if slow <= 0 {
		slow = time.Second
	}
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	gdb, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.driver(), err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(c.ConnMaxLifetime)
	}
	if logg != nil {
		logg.Info("Database pool opened",
			"driver", c.driver(),
			"max_open_conns", c.MaxOpenConns,
			"max_idle_conns", c.MaxIdleConns,
		)
	}
	return gdb, nil
}

// Pools holds the two database handles the service talks to.
// Business shares Primary when it is not configured separately.
type Pools struct {
	Primary  *gorm.DB
	Business *gorm.DB
	shared   bool
}

func OpenPools(primary, business Config, logg *logger.Logger) (*Pools, error) {
	var serviceLog *logger.Logger
	if logg != nil {
		serviceLog = logg.With("service", "DBPools")
	}
	p, err := Open(primary, serviceLog)
	if err != nil {
		return nil, fmt.Errorf("open primary pool: %w", err)
	}
	if !business.Configured() {
		return &Pools{Primary: p, Business: p, shared: true}, nil
	}
	b, err := Open(business, serviceLog)
	if err != nil {
		closeDB(p)
		return nil, fmt.Errorf("open business pool: %w", err)
	}
	return &Pools{Primary: p, Business: b}, nil
}

// Shared reports whether both handles point at the same pool.
func (p *Pools) Shared() bool { return p != nil && p.shared }

func (p *Pools) Ping(ctx context.Context) error {
	if p == nil || p.Primary == nil {
		return errors.New("database pools not initialized")
	}
	if err := ping(ctx, p.Primary); err != nil {
		return fmt.Errorf("primary: %w", err)
	}
	if p.shared || p.Business == nil {
		return nil
	}
	if err := ping(ctx, p.Business); err != nil {
		return fmt.Errorf("business: %w", err)
	}
	return nil
}

func (p *Pools) Close() error {
	if p == nil {
		return nil
	}
	var errs []error
	if err := closeDB(p.Primary); err != nil {
		errs = append(errs, err)
	}
	if !p.shared {
		if err := closeDB(p.Business); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func ping(ctx context.Context, gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func closeDB(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsPostgres reports whether gdb talks to Postgres.
func IsPostgres(gdb *gorm.DB) bool {
	return gdb != nil && gdb.Dialector != nil && gdb.Dialector.Name() == DriverPostgres
}
