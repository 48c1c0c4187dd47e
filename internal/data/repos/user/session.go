package user

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/platform/dbctx"
	"github.com/harryc904/Studio/internal/platform/logger"
)

type SessionRepo interface {
	Create(dbc dbctx.Context, s *types.Session) (*types.Session, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Session, error)
	LockByID(dbc dbctx.Context, id int64) (*types.Session, error)
	ListByUser(dbc dbctx.Context, userID int64) ([]*types.Session, error)
	// LatestEndedByUser returns the session with the most recent end_time, or nil.
	LatestEndedByUser(dbc dbctx.Context, userID int64) (*types.Session, error)
	UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id int64) (int64, error)
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, log *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: log.With("repo", "SessionRepo")}
}

func (r *sessionRepo) Create(dbc dbctx.Context, s *types.Session) (*types.Session, error) {
	if s == nil {
		return nil, fmt.Errorf("missing session")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *sessionRepo) GetByID(dbc dbctx.Context, id int64) (*types.Session, error) {
	if id <= 0 {
		return nil, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Session
	if err := txx.WithContext(dbc.Ctx).
		Where("session_id = ?", id).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *sessionRepo) LockByID(dbc dbctx.Context, id int64) (*types.Session, error) {
	if id <= 0 {
		return nil, fmt.Errorf("missing session_id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID requires dbc.Tx")
	}
	var out types.Session
	if err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("session_id = ?", id).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sessionRepo) ListByUser(dbc dbctx.Context, userID int64) ([]*types.Session, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Session
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("start_time DESC").
		Order("session_id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sessionRepo) LatestEndedByUser(dbc dbctx.Context, userID int64) (*types.Session, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("missing user_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Session
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id = ? AND end_time IS NOT NULL", userID).
		Order("end_time DESC").
		Order("session_id DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *sessionRepo) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	if id <= 0 {
		return fmt.Errorf("missing session_id")
	}
	if len(updates) == 0 {
		return nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.Session{}).
		Where("session_id = ?", id).
		Updates(updates).Error
}

func (r *sessionRepo) Delete(dbc dbctx.Context, id int64) (int64, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Where("session_id = ?", id).
		Delete(&types.Session{})
	return res.RowsAffected, res.Error
}
