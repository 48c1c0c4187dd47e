package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/platform/logger"
)

// AutoMigratePrimary creates users, sessions, conversations and prd plus their indexes.
func AutoMigratePrimary(gdb *gorm.DB, log *logger.Logger) error {
	if err := gdb.AutoMigrate(types.PrimaryModels()...); err != nil {
		return fmt.Errorf("automigrate primary: %w", err)
	}
	return EnsureRevisionIndexes(gdb, log)
}

// AutoMigrateBusiness creates the reference data tables.
func AutoMigrateBusiness(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(types.BusinessModels()...); err != nil {
		return fmt.Errorf("automigrate business: %w", err)
	}
	return nil
}

func AutoMigrateAll(p *Pools, log *logger.Logger) error {
	if err := AutoMigratePrimary(p.Primary, log); err != nil {
		return err
	}
	return AutoMigrateBusiness(p.Business)
}

// EnsureRevisionIndexes adds the one-latest-per-session index. Legacy data that already
// holds several latest rows for a session makes creation fail; that is logged and skipped.
func EnsureRevisionIndexes(gdb *gorm.DB, log *logger.Logger) error {
	err := gdb.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_prd_session_latest
		ON prd (session_id)
		WHERE latest;
	`).Error
	if err != nil && log != nil {
		log.Warn("skipping idx_prd_session_latest; existing rows violate it", "error", err)
	}
	if err := gdb.Exec(`
		CREATE INDEX IF NOT EXISTS idx_conversations_session_created
		ON conversations (session_id, created_at);
	`).Error; err != nil {
		return fmt.Errorf("create idx_conversations_session_created: %w", err)
	}
	return nil
}
