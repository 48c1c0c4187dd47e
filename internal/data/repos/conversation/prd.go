package conversation

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/platform/dbctx"
	"github.com/harryc904/Studio/internal/platform/logger"
)

type PRDRepo interface {
	Create(dbc dbctx.Context, row *types.PRD) (*types.PRD, error)
	// LatestForSession returns the highest version of the session, or nil.
	LatestForSession(dbc dbctx.Context, sessionID int64) (*types.PRD, error)
	// LatestForConversation returns the highest version attached to the conversation, or nil.
	LatestForConversation(dbc dbctx.Context, sessionID int64, conversationID uuid.UUID) (*types.PRD, error)
	// LatestForConversations batches LatestForConversation over every id of a session.
	LatestForConversations(dbc dbctx.Context, sessionID int64, ids []uuid.UUID) (map[uuid.UUID]*types.PRD, error)
	ListBySession(dbc dbctx.Context, sessionID int64) ([]*types.PRD, error)
	MaxVersion(dbc dbctx.Context, sessionID int64) (int, error)
	VersionExists(dbc dbctx.Context, sessionID int64, version int) (bool, error)
	DemoteLatest(dbc dbctx.Context, sessionID int64) (int64, error)
	DeleteBySession(dbc dbctx.Context, sessionID int64) (int64, error)
}

type prdRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPRDRepo(db *gorm.DB, log *logger.Logger) PRDRepo {
	return &prdRepo{db: db, log: log.With("repo", "PRDRepo")}
}

func (r *prdRepo) Create(dbc dbctx.Context, row *types.PRD) (*types.PRD, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *prdRepo) LatestForSession(dbc dbctx.Context, sessionID int64) (*types.PRD, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.PRD
	if err := txx.WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
		Order("prd_version DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *prdRepo) LatestForConversation(dbc dbctx.Context, sessionID int64, conversationID uuid.UUID) (*types.PRD, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.PRD
	if err := txx.WithContext(dbc.Ctx).
		Where("session_id = ? AND conversation_id = ?", sessionID, conversationID).
		Order("prd_version DESC").
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *prdRepo) LatestForConversations(dbc dbctx.Context, sessionID int64, ids []uuid.UUID) (map[uuid.UUID]*types.PRD, error) {
	out := map[uuid.UUID]*types.PRD{}
	if len(ids) == 0 {
		return out, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var rows []*types.PRD
	if err := txx.WithContext(dbc.Ctx).
		Where("session_id = ? AND conversation_id IN ?", sessionID, ids).
		Order("prd_version DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		if _, seen := out[row.ConversationID]; !seen {
			out[row.ConversationID] = row
		}
	}
	return out, nil
}

func (r *prdRepo) ListBySession(dbc dbctx.Context, sessionID int64) ([]*types.PRD, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.PRD
	if err := txx.WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
		Order("prd_version ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *prdRepo) MaxVersion(dbc dbctx.Context, sessionID int64) (int, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var max int
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.PRD{}).
		Where("session_id = ?", sessionID).
		Select("COALESCE(MAX(prd_version), 0)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	return max, nil
}

func (r *prdRepo) VersionExists(dbc dbctx.Context, sessionID int64, version int) (bool, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var n int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.PRD{}).
		Where("session_id = ? AND prd_version = ?", sessionID, version).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *prdRepo) DemoteLatest(dbc dbctx.Context, sessionID int64) (int64, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Model(&types.PRD{}).
		Where("session_id = ? AND latest = ?", sessionID, true).
		Update("latest", false)
	return res.RowsAffected, res.Error
}

func (r *prdRepo) DeleteBySession(dbc dbctx.Context, sessionID int64) (int64, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
		Delete(&types.PRD{})
	return res.RowsAffected, res.Error
}
