package domain

import (
	"github.com/yungbote/careerbridge-backend/internal/domain/chat"
	"github.com/yungbote/careerbridge-backend/internal/domain/notification"
	"github.com/yungbote/careerbridge-backend/internal/domain/plan"
	"github.com/yungbote/careerbridge-backend/internal/domain/user"
)

type User = user.User
type UserProfile = user.UserProfile
type NotificationPreference = user.NotificationPreference

type Conversation = chat.Conversation
type Message = chat.Message

type Plan = plan.Plan
type Phase = plan.Phase
type Milestone = plan.Milestone
type Task = plan.Task
type Resource = plan.Resource
type SalaryExpectations = plan.SalaryExpectations

type EmailLog = notification.EmailLog

// AllModels lists every table-backed type, in dependency order, for migrations.
func AllModels() []any {
	return []any{
		&User{},
		&UserProfile{},
		&NotificationPreference{},
		&Conversation{},
		&Message{},
		&Plan{},
		&Phase{},
		&Milestone{},
		&Task{},
		&Resource{},
		&EmailLog{},
	}
}
