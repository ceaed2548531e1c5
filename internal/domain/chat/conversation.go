package chat

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ConversationIntake         = "intake"
	ConversationGeneral        = "general"
	ConversationPlanRefinement = "plan_refinement"
)

const (
	ConversationActive    = "active"
	ConversationCompleted = "completed"
	ConversationArchived  = "archived"
)

type Conversation struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Title  string `gorm:"column:title;not null;default:'Career intake'" json:"title"`
	Type   string `gorm:"column:type;not null;default:'intake'" json:"type"`     // intake|general|plan_refinement
	Status string `gorm:"column:status;not null;default:'active';index" json:"status"` // active|completed|archived

	// Per-conversation message sequencing; bumped under row lock on append.
	NextSeq int64 `gorm:"column:next_seq;not null;default:0" json:"next_seq"`

	LastMessageAt time.Time `gorm:"column:last_message_at;not null;default:now()" json:"last_message_at"`

	CreatedAt time.Time      `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Conversation) TableName() string { return "conversation" }
