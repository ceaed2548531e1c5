package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/careerbridge-backend/internal/data/aggregates"
	"github.com/yungbote/careerbridge-backend/internal/data/graph"
	"github.com/yungbote/careerbridge-backend/internal/modules/planning"
	"github.com/yungbote/careerbridge-backend/internal/observability"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
	"github.com/yungbote/careerbridge-backend/internal/platform/sendgrid"
	"github.com/yungbote/careerbridge-backend/internal/realtime"
	"github.com/yungbote/careerbridge-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Profile      services.ProfileService
	Preferences  services.PreferenceService
	Notification services.NotificationService
	Conversation services.ConversationService
	Plan         services.PlanService
	Reminders    services.ReminderService
	Realtime     realtime.Publisher
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, clients Clients, hub *realtime.SSEHub) (Services, error) {
	log.Info("Wiring services...")

	var publisher realtime.Publisher = hub
	if clients.SSEBus != nil {
		publisher = clients.SSEBus
	}

	base := aggregates.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: aggregates.NewObservabilityHooks(observability.Current()),
	}
	planAgg := aggregates.NewPlanAggregate(aggregates.PlanAggregateDeps{
		Base:          base,
		Plans:         r.Plan,
		Phases:        r.Phase,
		Milestones:    r.Milestone,
		Tasks:         r.Task,
		Resources:     r.Resource,
		Conversations: r.Conversation,
	})
	convAgg := aggregates.NewConversationAggregate(aggregates.ConversationAggregateDeps{
		Base:          base,
		Conversations: r.Conversation,
		Messages:      r.Message,
	})

	mirror := graph.NewPlanGraph(clients.Neo4j, log)

	var from sendgrid.EmailAddress
	sgCfg := sendgrid.ConfigFromEnv()
	from.Email, from.Name = sgCfg.DefaultFromEmail, sgCfg.DefaultFromName

	notify, err := services.NewNotificationService(services.NotificationServiceDeps{
		Log:       log,
		Users:     r.User,
		Profiles:  r.Profile,
		Prefs:     r.Preferences,
		EmailLogs: r.EmailLog,
		Plans:     r.Plan,
		Email:     clients.SendGrid,
		Realtime:  publisher,
		From:      from,
		AppURL:    cfg.AppBaseURL,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init notification service: %w", err)
	}

	auth, err := services.NewAuthService(log, r.User, notify, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	generator := planning.NewGenerator(planning.GeneratorDeps{
		Log:           log,
		AI:            clients.Planner,
		Profiles:      r.Profile,
		Conversations: r.Conversation,
		Messages:      r.Message,
		Plans:         planAgg,
		Mirror:        mirror,
	})
	completion := planning.NewCompletion(planning.CompletionDeps{
		Log:        log,
		Plans:      r.Plan,
		Phases:     r.Phase,
		Milestones: r.Milestone,
		Tasks:      r.Task,
		Mirror:     mirror,
	})

	return Services{
		Auth:         auth,
		Profile:      services.NewProfileService(log, r.Profile, r.User),
		Preferences:  services.NewPreferenceService(log, r.Preferences),
		Notification: notify,
		Conversation: services.NewConversationService(services.ConversationServiceDeps{
			Log:           log,
			Conversations: r.Conversation,
			Messages:      r.Message,
			Profiles:      r.Profile,
			Aggregate:     convAgg,
			Advisor:       clients.OpenAI,
			Realtime:      publisher,
		}),
		Plan: services.NewPlanService(services.PlanServiceDeps{
			Log:        log,
			Plans:      r.Plan,
			Aggregate:  planAgg,
			Generator:  generator,
			Completion: completion,
			Notify:     notify,
			Realtime:   publisher,
			Mirror:     mirror,
		}),
		Reminders: services.NewReminderService(log, r.Plan, notify, services.ReminderConfigFromEnv()),
		Realtime:  publisher,
	}, nil
}
