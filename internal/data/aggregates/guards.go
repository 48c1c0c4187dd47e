package aggregates

import (
	"strings"

	"gorm.io/gorm"

	"github.com/harryc904/Studio/internal/platform/dbctx"
)

// CASGuard provides scoped conditional update helpers for aggregate writes.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) baseDB(dbc dbctx.Context) (*gorm.DB, error) {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx), nil
	}
	if g.db != nil {
		return g.db.WithContext(dbc.Ctx), nil
	}
	return nil, ValidationError("missing db transaction context")
}

// UpdateScoped updates rows of table matching every scope column and reports
// whether any row was touched.
func (g CASGuard) UpdateScoped(dbc dbctx.Context, table string, scope map[string]any, updates map[string]any) (bool, error) {
	db, err := g.baseDB(dbc)
	if err != nil {
		return false, err
	}
	table = strings.TrimSpace(table)
	if table == "" || len(scope) == 0 {
		return false, ValidationError("table and scope are required for UpdateScoped")
	}
	if len(updates) == 0 {
		return false, ValidationError("updates must not be empty")
	}
	res := db.Table(table).Where(scope).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
