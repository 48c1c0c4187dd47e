package app

import (
	apphttp "github.com/harryc904/Studio/internal/http"
	httpH "github.com/harryc904/Studio/internal/http/handlers"
	httpMW "github.com/harryc904/Studio/internal/http/middleware"
	"github.com/harryc904/Studio/internal/observability"
	"github.com/harryc904/Studio/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Auth         *httpH.AuthHandler
	User         *httpH.UserHandler
	Session      *httpH.SessionHandler
	Conversation *httpH.ConversationHandler
	Standard     *httpH.StandardHandler
	UseCase      *httpH.UseCaseHandler
}

func wireHandlers(log *logger.Logger, services Services, checks []httpH.ReadinessCheck) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(checks...),
		Auth:         httpH.NewAuthHandler(services.Auth, services.Verification),
		User:         httpH.NewUserHandler(services.User),
		Session:      httpH.NewSessionHandler(services.Session, services.PRD),
		Conversation: httpH.NewConversationHandler(services.Conversation),
		Standard:     httpH.NewStandardHandler(services.Standard),
		UseCase:      httpH.NewUseCaseHandler(services.UseCase),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *apphttp.Server {
	traceService := ""
	if cfg.Otel.Enabled {
		traceService = cfg.Otel.ServiceName
	}
	return apphttp.NewServer(cfg.Server.Addr, apphttp.RouterConfig{
		Log:                 log,
		Metrics:             metrics,
		TraceService:        traceService,
		CORSOrigins:         cfg.CORS.AllowOrigins,
		RequestTimeout:      cfg.Server.RequestTimeout,
		AuthMiddleware:      middleware.Auth,
		AuthHandler:         handlers.Auth,
		UserHandler:         handlers.User,
		SessionHandler:      handlers.Session,
		ConversationHandler: handlers.Conversation,
		StandardHandler:     handlers.Standard,
		UseCaseHandler:      handlers.UseCase,
		HealthHandler:       handlers.Health,
	})
}

func (a *App) readinessChecks() []httpH.ReadinessCheck {
	checks := []httpH.ReadinessCheck{{Name: "database", Check: a.Pools.Ping}}
	if a.Clients.CodeStore != nil {
		checks = append(checks, httpH.ReadinessCheck{Name: "redis", Check: a.Clients.CodeStore.Ping})
	}
	return checks
}
