package app

import (
	"gorm.io/gorm"

	dataagg "github.com/harryc904/Studio/internal/data/aggregates"
	domainagg "github.com/harryc904/Studio/internal/domain/aggregates"
	"github.com/harryc904/Studio/internal/observability"
	"github.com/harryc904/Studio/internal/platform/logger"
	"github.com/harryc904/Studio/internal/services"
)

type Aggregates struct {
	Lineage  domainagg.LineageAggregate
	Revision domainagg.RevisionAggregate
	Session  domainagg.SessionAggregate
}

type Services struct {
	Auth         services.AuthService
	Verification services.VerificationService
	User         services.UserService
	Session      services.SessionService
	Conversation services.ConversationService
	PRD          services.PRDService
	Standard     services.StandardService
	UseCase      services.UseCaseService
	Aggregates   Aggregates
}

func wireAggregates(primary *gorm.DB, log *logger.Logger, cfg Config, metrics *observability.Metrics, r Repos) Aggregates {
	log.Info("Wiring aggregates...")
	retry := dataagg.DefaultRetryPolicy
	retry.MaxAttempts = cfg.DB.WriteAttempts
	base := dataagg.BaseDeps{
		DB:     primary,
		Log:    log,
		Runner: dataagg.NewTimedTxRunner(primary, cfg.DB.TxTimeout),
		Hooks:  dataagg.NewObservabilityHooks(metrics),
		Retry:  retry,
	}
	return Aggregates{
		Lineage: dataagg.NewLineageAggregate(dataagg.LineageAggregateDeps{
			Base: base, Sessions: r.Session, Conversations: r.Conversation, PRDs: r.PRD,
		}),
		Revision: dataagg.NewRevisionAggregate(dataagg.RevisionAggregateDeps{
			Base: base, Sessions: r.Session, Conversations: r.Conversation, PRDs: r.PRD,
		}),
		Session: dataagg.NewSessionAggregate(dataagg.SessionAggregateDeps{
			Base: base, Sessions: r.Session, Conversations: r.Conversation, PRDs: r.PRD,
		}),
	}
}

func wireServices(business *gorm.DB, log *logger.Logger, cfg Config, metrics *observability.Metrics, r Repos, c Clients, aggs Aggregates) Services {
	log.Info("Wiring services...")
	var store services.CodeStore
	if c.CodeStore != nil {
		store = c.CodeStore
	}
	verification := services.NewVerificationService(log, store, nil, r.User, metrics, nil, cfg.Verification)
	return Services{
		Auth:         services.NewAuthService(log, r.User, verification, nil, cfg.Auth),
		Verification: verification,
		User:         services.NewUserService(log, r.User),
		Session:      services.NewSessionService(log, r.Session, aggs.Session, nil),
		Conversation: services.NewConversationService(log, r.Session, r.Conversation, r.PRD, aggs.Lineage),
		PRD:          services.NewPRDService(log, r.Session, r.PRD, aggs.Revision),
		Standard:     services.NewStandardService(business, log, r.Standard),
		UseCase:      services.NewUseCaseService(log, r.UseCase),
		Aggregates:   aggs,
	}
}
