package user

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/platform/dbctx"
	"github.com/harryc904/Studio/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.User, error)
	GetByID(dbc dbctx.Context, id int64) (*types.User, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.User, error)
	GetByPhone(dbc dbctx.Context, phone string) (*types.User, error)
	// TakenBy reports which of username/email/phone already belong to a user other than exceptID.
	TakenBy(dbc dbctx.Context, exceptID int64, username, email, phone string) (TakenFields, error)
	UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error
}

// TakenFields flags identity columns already in use.
type TakenFields struct {
	Username bool
	Email    bool
	Phone    bool
}

func (t TakenFields) Any() bool { return t.Username || t.Email || t.Phone }

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	if err := txx.WithContext(dbc.Ctx).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.User, error) {
	if len(ids) == 0 {
		return []*types.User{}, nil
	}
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.User
	if err := txx.WithContext(dbc.Ctx).
		Where("user_id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userRepo) GetByID(dbc dbctx.Context, id int64) (*types.User, error) {
	return r.first(dbc, "user_id = ?", id)
}

func (r *userRepo) GetByEmail(dbc dbctx.Context, email string) (*types.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, nil
	}
	return r.first(dbc, "LOWER(email) = LOWER(?)", email)
}

func (r *userRepo) GetByPhone(dbc dbctx.Context, phone string) (*types.User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, nil
	}
	return r.first(dbc, "phone_number = ?", phone)
}

// first returns nil, nil when nothing matches.
func (r *userRepo) first(dbc dbctx.Context, query string, args ...interface{}) (*types.User, error) {
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	var out []*types.User
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

func (r *userRepo) TakenBy(dbc dbctx.Context, exceptID int64, username, email, phone string) (TakenFields, error) {
	var taken TakenFields
	check := func(column, value string, flag *bool) error {
		value = strings.TrimSpace(value)
		if value == "" {
			return nil
		}
		txx := dbc.Tx
		if txx == nil {
			txx = r.db
		}
		var n int64
		q := txx.WithContext(dbc.Ctx).Model(&types.User{}).Where(column+" = ?", value)
		if exceptID > 0 {
			q = q.Where("user_id <> ?", exceptID)
		}
		if err := q.Count(&n).Error; err != nil {
			return fmt.Errorf("check %s: %w", column, err)
		}
		*flag = n > 0
		return nil
	}
	if err := check("user_name", username, &taken.Username); err != nil {
		return taken, err
	}
	if err := check("email", email, &taken.Email); err != nil {
		return taken, err
	}
	if err := check("phone_number", phone, &taken.Phone); err != nil {
		return taken, err
	}
	return taken, nil
}

func (r *userRepo) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	if id <= 0 {
		return fmt.Errorf("missing user_id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	txx := dbc.Tx
	if txx == nil {
		txx = r.db
	}
	return txx.WithContext(dbc.Ctx).
		Model(&types.User{}).
		Where("user_id = ?", id).
		Updates(updates).Error
}
