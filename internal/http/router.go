package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/harryc904/Studio/internal/http/handlers"
	httpMW "github.com/harryc904/Studio/internal/http/middleware"
	"github.com/harryc904/Studio/internal/observability"
	"github.com/harryc904/Studio/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	TraceService   string
	CORSOrigins    []string
	RequestTimeout time.Duration

	AuthMiddleware *httpMW.AuthMiddleware

	AuthHandler         *httpH.AuthHandler
	UserHandler         *httpH.UserHandler
	SessionHandler      *httpH.SessionHandler
	ConversationHandler *httpH.ConversationHandler
	StandardHandler     *httpH.StandardHandler
	UseCaseHandler      *httpH.UseCaseHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TraceService != "" {
		r.Use(otelgin.Middleware(cfg.TraceService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.RequestTimeout(cfg.RequestTimeout))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/register", cfg.AuthHandler.Register)
			api.POST("/auth/login", cfg.AuthHandler.Login)
			api.POST("/auth/code", cfg.AuthHandler.RequestCode)
			api.POST("/auth/code/login", cfg.AuthHandler.LoginWithCode)
			api.POST("/auth/logout", cfg.AuthHandler.Logout)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/users/me", cfg.UserHandler.GetMe)
			protected.PUT("/users/me", cfg.UserHandler.UpdateMe)
			protected.PUT("/users/me/password", cfg.UserHandler.UpdatePassword)
		}

		// Sessions and their PRD revisions
		if cfg.SessionHandler != nil {
			protected.POST("/sessions", cfg.SessionHandler.Create)
			protected.GET("/sessions", cfg.SessionHandler.List)
			protected.PUT("/sessions/name", cfg.SessionHandler.Rename)
			protected.DELETE("/sessions/:session_id", cfg.SessionHandler.Delete)
			protected.GET("/sessions/:session_id/prd", cfg.SessionHandler.LatestPRD)
			protected.POST("/sessions/:session_id/prd", cfg.SessionHandler.AppendPRD)
			protected.GET("/prd", cfg.SessionHandler.LatestPRDForUser)
		}

		// Conversation tree
		if cfg.ConversationHandler != nil {
			protected.POST("/conversations", cfg.ConversationHandler.Create)
			protected.GET("/conversations/:session_id", cfg.ConversationHandler.Thread)
			protected.GET("/conversations/:session_id/nodes/:conversation_id", cfg.ConversationHandler.GetNode)
			protected.PUT("/conversations/:conversation_id", cfg.ConversationHandler.Update)
		}

		// Reference data
		if cfg.StandardHandler != nil {
			protected.GET("/standards", cfg.StandardHandler.List)
			protected.POST("/standards", cfg.StandardHandler.Import)
		}
		if cfg.UseCaseHandler != nil {
			protected.GET("/ucus", cfg.UseCaseHandler.List)
			protected.GET("/uur_graph_query", cfg.UseCaseHandler.Graph)
		}
	}

	return r
}
