package reference

import (
	"gorm.io/gorm"

	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/domain/reference"
	"github.com/harryc904/Studio/internal/platform/dbctx"
	"github.com/harryc904/Studio/internal/platform/logger"
)

// StandardRepo reads and writes standards on the business database.
type StandardRepo interface {
	// ExistsCanonical compares ids with every space removed on both sides.
	ExistsCanonical(dbc dbctx.Context, standardID string) (bool, error)
	CreateWithTerms(dbc dbctx.Context, s *types.Standard) (*types.Standard, error)
	List(dbc dbctx.Context, withTerms bool) ([]*types.Standard, error)
}

type standardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStandardRepo(db *gorm.DB, log *logger.Logger) StandardRepo {
	return &standardRepo{db: db, log: log.With("repo", "StandardRepo")}
}

func (r *standardRepo) ExistsCanonical(dbc dbctx.Context, standardID string) (bool, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var n int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Standard{}).
		Where("REPLACE(standard_id, ' ', '') = ?", reference.CanonicalStandardID(standardID)).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *standardRepo) CreateWithTerms(dbc dbctx.Context, s *types.Standard) (*types.Standard, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *standardRepo) List(dbc dbctx.Context, withTerms bool) ([]*types.Standard, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	q := txx.WithContext(dbc.Ctx).Order("id ASC")
	if withTerms {
		q = q.Preload("Terms", func(db *gorm.DB) *gorm.DB {
			return db.Order("term_id ASC").Order("id ASC")
		})
	}
	var out []*types.Standard
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
