package app

import (
	"github.com/yungbote/careerbridge-backend/internal/http"
	httpH "github.com/yungbote/careerbridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/careerbridge-backend/internal/http/middleware"
	"github.com/yungbote/careerbridge-backend/internal/observability"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
	"github.com/yungbote/careerbridge-backend/internal/realtime"
)

func wireRouterConfig(log *logger.Logger, cfg Config, s Services, hub *realtime.SSEHub, db httpH.Pinger) http.RouterConfig {
	log.Info("Wiring handlers...")
	return http.RouterConfig{
		Log:            log,
		Metrics:        observability.Current(),
		ServiceName:    cfg.ServiceName,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, s.Auth),

		HealthHandler:       httpH.NewHealthHandler(db),
		AuthHandler:         httpH.NewAuthHandler(s.Auth),
		ProfileHandler:      httpH.NewProfileHandler(s.Profile, s.Preferences),
		ConversationHandler: httpH.NewConversationHandler(s.Conversation),
		PlanHandler:         httpH.NewPlanHandler(s.Plan),
		RealtimeHandler:     httpH.NewRealtimeHandler(log, hub),
	}
}
