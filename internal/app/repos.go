package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/careerbridge-backend/internal/data/repos"
	chatrepo "github.com/yungbote/careerbridge-backend/internal/data/repos/chat"
	notificationrepo "github.com/yungbote/careerbridge-backend/internal/data/repos/notification"
	planrepo "github.com/yungbote/careerbridge-backend/internal/data/repos/plan"
	userrepo "github.com/yungbote/careerbridge-backend/internal/data/repos/user"
	"github.com/yungbote/careerbridge-backend/internal/platform/logger"
)

type Repos struct {
	User        repos.UserRepo
	Profile     repos.UserProfileRepo
	Preferences repos.NotificationPreferenceRepo

	Conversation repos.ConversationRepo
	Message      repos.MessageRepo

	Plan      repos.PlanRepo
	Phase     repos.PhaseRepo
	Milestone repos.MilestoneRepo
	Task      repos.TaskRepo
	Resource  repos.ResourceRepo

	EmailLog repos.EmailLogRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:        userrepo.NewUserRepo(db, log),
		Profile:     userrepo.NewUserProfileRepo(db, log),
		Preferences: userrepo.NewNotificationPreferenceRepo(db, log),

		Conversation: chatrepo.NewConversationRepo(db, log),
		Message:      chatrepo.NewMessageRepo(db, log),

		Plan:      planrepo.NewPlanRepo(db, log),
		Phase:     planrepo.NewPhaseRepo(db, log),
		Milestone: planrepo.NewMilestoneRepo(db, log),
		Task:      planrepo.NewTaskRepo(db, log),
		Resource:  planrepo.NewResourceRepo(db, log),

		EmailLog: notificationrepo.NewEmailLogRepo(db, log),
	}
}
