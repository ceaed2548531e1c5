package repos

import (
	"github.com/yungbote/careerbridge-backend/internal/data/repos/chat"
	"github.com/yungbote/careerbridge-backend/internal/data/repos/notification"
	"github.com/yungbote/careerbridge-backend/internal/data/repos/plan"
	"github.com/yungbote/careerbridge-backend/internal/data/repos/user"
)

type UserRepo = user.UserRepo
type UserProfileRepo = user.UserProfileRepo
type NotificationPreferenceRepo = user.NotificationPreferenceRepo

type ConversationRepo = chat.ConversationRepo
type MessageRepo = chat.MessageRepo

type PlanRepo = plan.PlanRepo
type PhaseRepo = plan.PhaseRepo
type MilestoneRepo = plan.MilestoneRepo
type TaskRepo = plan.TaskRepo
type ResourceRepo = plan.ResourceRepo

type EmailLogRepo = notification.EmailLogRepo
