package reference

import (
	"gorm.io/gorm"

	types "github.com/harryc904/Studio/internal/domain"
	"github.com/harryc904/Studio/internal/platform/dbctx"
	"github.com/harryc904/Studio/internal/platform/logger"
)

// UseCaseRepo reads use cases, user stories and requirements from the business database.
type UseCaseRepo interface {
	// ListWithStories orders use cases by uc_id and their stories by us_id.
	ListWithStories(dbc dbctx.Context) ([]*types.UseCase, error)
	ListUseCases(dbc dbctx.Context) ([]*types.UseCase, error)
	ListUserStories(dbc dbctx.Context) ([]*types.UserStory, error)
	// ListRequirementLinks returns one row per linked use case and a single unlinked row otherwise.
	ListRequirementLinks(dbc dbctx.Context) ([]*types.RequirementLink, error)
}

type useCaseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUseCaseRepo(db *gorm.DB, log *logger.Logger) UseCaseRepo {
	return &useCaseRepo{db: db, log: log.With("repo", "UseCaseRepo")}
}

func (r *useCaseRepo) tx(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *useCaseRepo) ListWithStories(dbc dbctx.Context) ([]*types.UseCase, error) {
	var out []*types.UseCase
	err := r.tx(dbc).
		Preload("UserStories", func(db *gorm.DB) *gorm.DB { return db.Order("us_id ASC") }).
		Order("uc_id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *useCaseRepo) ListUseCases(dbc dbctx.Context) ([]*types.UseCase, error) {
	var out []*types.UseCase
	if err := r.tx(dbc).Order("uc_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *useCaseRepo) ListUserStories(dbc dbctx.Context) ([]*types.UserStory, error) {
	var out []*types.UserStory
	if err := r.tx(dbc).Order("us_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *useCaseRepo) ListRequirementLinks(dbc dbctx.Context) ([]*types.RequirementLink, error) {
	var out []*types.RequirementLink
	err := r.tx(dbc).
		Table("requirement AS r").
		Select("r.requirement_id, r.uuid, r.name, r.description, uc.uuid AS uuid_uc").
		Joins("LEFT JOIN req_uc_relations ruc ON ruc.requirement_id = r.requirement_id").
		Joins("LEFT JOIN usecase uc ON uc.uc_id = ruc.uc_id").
		Order("r.requirement_id ASC").
		Order("uc.uc_id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
