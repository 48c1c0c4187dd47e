package app

import (
	"gorm.io/gorm"

	"github.com/harryc904/Studio/internal/data/repos"
	"github.com/harryc904/Studio/internal/platform/logger"
)

type Repos struct {
	User         repos.UserRepo
	Session      repos.SessionRepo
	Conversation repos.ConversationRepo
	PRD          repos.PRDRepo
	Standard     repos.StandardRepo
	UseCase      repos.UseCaseRepo
}

// wireRepos binds the conversation tables to primary and reference data to business.
func wireRepos(primary, business *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(primary, log),
		Session:      repos.NewSessionRepo(primary, log),
		Conversation: repos.NewConversationRepo(primary, log),
		PRD:          repos.NewPRDRepo(primary, log),
		Standard:     repos.NewStandardRepo(business, log),
		UseCase:      repos.NewUseCaseRepo(business, log),
	}
}
