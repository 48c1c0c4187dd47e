package repos

import (
	"gorm.io/gorm"

	"github.com/harryc904/Studio/internal/data/repos/conversation"
	"github.com/harryc904/Studio/internal/data/repos/reference"
	"github.com/harryc904/Studio/internal/data/repos/user"
	"github.com/harryc904/Studio/internal/platform/logger"
)

type UserRepo = user.UserRepo
type SessionRepo = user.SessionRepo
type TakenFields = user.TakenFields

type ConversationRepo = conversation.ConversationRepo
type PRDRepo = conversation.PRDRepo

type StandardRepo = reference.StandardRepo
type UseCaseRepo = reference.UseCaseRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }
func NewSessionRepo(db *gorm.DB, log *logger.Logger) SessionRepo {
	return user.NewSessionRepo(db, log)
}

func NewConversationRepo(db *gorm.DB, log *logger.Logger) ConversationRepo {
	return conversation.NewConversationRepo(db, log)
}
func NewPRDRepo(db *gorm.DB, log *logger.Logger) PRDRepo { return conversation.NewPRDRepo(db, log) }

func NewStandardRepo(db *gorm.DB, log *logger.Logger) StandardRepo {
	return reference.NewStandardRepo(db, log)
}

func NewUseCaseRepo(db *gorm.DB, log *logger.Logger) UseCaseRepo {
	return reference.NewUseCaseRepo(db, log)
}
