package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/careerbridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/careerbridge-backend/internal/http/middleware"
	"github.com/yungbote/careerbridge-backend/internal/observability"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler       *httpH.HealthHandler
	AuthHandler         *httpH.AuthHandler
	ProfileHandler      *httpH.ProfileHandler
	ConversationHandler *httpH.ConversationHandler
	PlanHandler         *httpH.PlanHandler
	RealtimeHandler     *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthz", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/register", cfg.AuthHandler.Register)
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/events", cfg.RealtimeHandler.SSEStream)
		}

		// Profile
		if cfg.ProfileHandler != nil {
			protected.GET("/profile", cfg.ProfileHandler.GetProfile)
			protected.PUT("/profile", cfg.ProfileHandler.PutProfile)
			protected.GET("/notification-preferences", cfg.ProfileHandler.GetPreferences)
			protected.PUT("/notification-preferences", cfg.ProfileHandler.PutPreferences)
		}

		// Conversations
		if cfg.ConversationHandler != nil {
			protected.POST("/conversations", cfg.ConversationHandler.Create)
			protected.GET("/conversations", cfg.ConversationHandler.List)
			protected.GET("/conversations/:id/messages", cfg.ConversationHandler.ListMessages)
			protected.POST("/conversations/:id/messages", cfg.ConversationHandler.PostMessage)
		}

		// Plans
		if cfg.PlanHandler != nil {
			protected.POST("/plans/generate", cfg.PlanHandler.Generate)
			protected.GET("/plans/active", cfg.PlanHandler.Active)
			protected.GET("/plans/:id", cfg.PlanHandler.Get)
			protected.GET("/plans/:id/progress", cfg.PlanHandler.Progress)
			protected.GET("/plans/:id/resources/featured", cfg.PlanHandler.FeaturedResources)
			protected.POST("/plans/:id/archive", cfg.PlanHandler.Archive)
			protected.PATCH("/tasks/:id", cfg.PlanHandler.ToggleTask)
			protected.POST("/milestones/:id/complete", cfg.PlanHandler.CompleteMilestone)
			protected.POST("/milestones/:id/skip", cfg.PlanHandler.SkipMilestone)
		}
	}

	return r
}
