package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReminderDaily    = "daily"
	ReminderWeekly   = "weekly"
	ReminderBiweekly = "biweekly"
)

var ReminderFrequencies = []string{ReminderDaily, ReminderWeekly, ReminderBiweekly}

// NotificationPreference is optional per user; a missing row means every
// transactional email is allowed.
type NotificationPreference struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`

	EmailReminders        bool   `gorm:"column:email_reminders;not null" json:"email_reminders"`
	ReminderFrequency     string `gorm:"column:reminder_frequency;not null;default:'weekly'" json:"reminder_frequency"`
	MilestoneEmails       bool   `gorm:"column:milestone_emails;not null" json:"milestone_emails"`
	PhaseCompletionEmails bool   `gorm:"column:phase_completion_emails;not null" json:"phase_completion_emails"`
	MarketingEmails       bool   `gorm:"column:marketing_emails;not null" json:"marketing_emails"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (NotificationPreference) TableName() string { return "notification_preference" }

func DefaultNotificationPreference(userID uuid.UUID) *NotificationPreference {
	return &NotificationPreference{
		UserID:                userID,
		EmailReminders:        true,
		ReminderFrequency:     ReminderWeekly,
		MilestoneEmails:       true,
		PhaseCompletionEmails: true,
		MarketingEmails:       false,
	}
}

// Allows reports whether an email of the given kind may be sent. A nil
// preference allows everything except marketing.
func (p *NotificationPreference) Allows(kind string) bool {
	if p == nil {
		return kind != "marketing"
	}
	switch kind {
	case "weekly_reminder":
		return p.EmailReminders
	case "milestone_completed":
		return p.MilestoneEmails
	case "phase_completed":
		return p.PhaseCompletionEmails
	case "marketing":
		return p.MarketingEmails
	default:
		return true
	}
}
