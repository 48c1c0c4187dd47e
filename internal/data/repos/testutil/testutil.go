package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	studiodb "github.com/harryc904/Studio/internal/data/db"
	"github.com/harryc904/Studio/internal/platform/logger"
)

var errMissingDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.NewWithConfig(logger.Config{Mode: "test", Level: "error"})
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// SQLite opens a fresh file-backed database in tb.TempDir with every table migrated.
// The pool holds a single connection, so code running inside a transaction must not
// reach for the base handle.
func SQLite(tb testing.TB) *gorm.DB {
	tb.Helper()
	return openSQLite(tb, "?_busy_timeout=5000", 1)
}

// SQLiteConcurrent opens a WAL database pooling conns connections, so transactions
// really overlap. A writer whose snapshot went stale fails with "database is locked".
func SQLiteConcurrent(tb testing.TB, conns int) *gorm.DB {
	tb.Helper()
	return openSQLite(tb, "?_busy_timeout=10000&_journal_mode=WAL", conns)
}

func openSQLite(tb testing.TB, params string, conns int) *gorm.DB {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "studio.db")
	gdb, err := gorm.Open(sqlite.Open(path+params), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		tb.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)
	sqlDB.SetMaxIdleConns(conns)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate(gdb); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}
	return gdb
}

// Postgres returns a shared migrated database, skipping the test unless TEST_POSTGRES_DSN is set.
func Postgres(tb testing.TB) *gorm.DB {
	tb.Helper()
	pgOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			pgErr = errMissingDSN
			return
		}
		var err error
		pgDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if err != nil {
			pgErr = err
			return
		}
		pgErr = migrate(pgDB)
	})
	if errors.Is(pgErr, errMissingDSN) {
		tb.Skip("set TEST_POSTGRES_DSN to run postgres integration tests")
	}
	if pgErr != nil {
		tb.Fatalf("failed to init test db: %v", pgErr)
	}
	return pgDB
}

// Tx begins a transaction that is rolled back when the test ends.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func migrate(gdb *gorm.DB) error {
	if err := studiodb.AutoMigratePrimary(gdb, nil); err != nil {
		return err
	}
	return studiodb.AutoMigrateBusiness(gdb)
}
