package conversation

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/platform/dbctx"
	"github.com/harryc904/Studio/internal/platform/logger"
)

type ConversationRepo interface {
	Create(dbc dbctx.Context, rows []*types.Conversation) ([]*types.Conversation, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error)
	GetInSession(dbc dbctx.Context, sessionID int64, id uuid.UUID) (*types.Conversation, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error)
	ListBySession(dbc dbctx.Context, sessionID int64) ([]*types.Conversation, error)
	Exists(dbc dbctx.Context, id uuid.UUID) (bool, error)
	UpdateChildVersions(dbc dbctx.Context, id uuid.UUID, ix types.ChildVersionIndex) error
	DeleteBySession(dbc dbctx.Context, sessionID int64) (int64, error)
}

type conversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConversationRepo(db *gorm.DB, log *logger.Logger) ConversationRepo {
	return &conversationRepo{db: db, log: log.With("repo", "ConversationRepo")}
}

func (r *conversationRepo) Create(dbc dbctx.Context, rows []*types.Conversation) ([]*types.Conversation, error) {
	if len(rows) == 0 {
		return []*types.Conversation{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *conversationRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc, "conversation_id = ?", id)
}

func (r *conversationRepo) GetInSession(dbc dbctx.Context, sessionID int64, id uuid.UUID) (*types.Conversation, error) {
	if id == uuid.Nil || sessionID <= 0 {
		return nil, nil
	}
	return r.first(dbc, "conversation_id = ? AND session_id = ?", id, sessionID)
}

func (r *conversationRepo) first(dbc dbctx.Context, query string, args ...interface{}) (*types.Conversation, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Conversation
	if err := txx.WithContext(dbc.Ctx).
		Where(query, args...).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *conversationRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Conversation, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing conversation_id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID requires dbc.Tx")
	}
	var out types.Conversation
	if err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("conversation_id = ?", id).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *conversationRepo) ListBySession(dbc dbctx.Context, sessionID int64) ([]*types.Conversation, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.Conversation
	if err := txx.WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Order("conversation_id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conversationRepo) Exists(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var n int64
	if err := txx.WithContext(dbc.Ctx).
		Model(&types.Conversation{}).
		Where("conversation_id = ?", id).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *conversationRepo) UpdateChildVersions(dbc dbctx.Context, id uuid.UUID, ix types.ChildVersionIndex) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing conversation_id")
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.Conversation{}).
		Where("conversation_id = ?", id).
		Update("conversation_child_version", ix).Error
}

func (r *conversationRepo) DeleteBySession(dbc dbctx.Context, sessionID int64) (int64, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	res := txx.WithContext(dbc.Ctx).
		Where("session_id = ?", sessionID).
		Delete(&types.Conversation{})
	return res.RowsAffected, res.Error
}
