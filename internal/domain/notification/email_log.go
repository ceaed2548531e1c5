package notification

import (
	"time"

	"github.com/google/uuid"
)

const (
	EmailWelcome            = "welcome"
	EmailPlanGenerated      = "plan_generated"
	EmailMilestoneCompleted = "milestone_completed"
	EmailPhaseCompleted     = "phase_completed"
	EmailWeeklyReminder     = "weekly_reminder"
)

const (
	EmailQueued = "queued"
	EmailSent   = "sent"
	EmailFailed = "failed"
)

type EmailLog struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Type              string     `gorm:"column:type;not null;index" json:"type"`
	Recipient         string     `gorm:"column:recipient;not null" json:"recipient"`
	Subject           string     `gorm:"column:subject;not null" json:"subject"`
	Status            string     `gorm:"column:status;not null;default:'queued';index" json:"status"` // queued|sent|failed
	ProviderMessageID string     `gorm:"column:provider_message_id" json:"provider_message_id,omitempty"`
	SentAt            *time.Time `gorm:"column:sent_at" json:"sent_at,omitempty"`
	Error             string     `gorm:"column:error;type:text" json:"error,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (EmailLog) TableName() string { return "email_log" }
