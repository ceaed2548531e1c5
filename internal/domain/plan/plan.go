package plan

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

// SalaryExpectations is stored as JSON on the plan row.
type SalaryExpectations struct {
	Entry       string `json:"entry"`
	Experienced string `json:"experienced"`
}

type Plan struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	ConversationID *uuid.UUID `gorm:"type:uuid;index" json:"conversation_id,omitempty"`

	TargetCareer       string                                  `gorm:"column:target_career;not null" json:"target_career"`
	CurrentCareer      string                                  `gorm:"column:current_career" json:"current_career,omitempty"`
	EstimatedDuration  string                                  `gorm:"column:estimated_duration;not null" json:"estimated_duration"`
	SalaryExpectations datatypes.JSONType[*SalaryExpectations] `gorm:"column:salary_expectations;not null" json:"salary_expectations"`
	JobMarketOutlook   string                                  `gorm:"column:job_market_outlook" json:"job_market_outlook,omitempty"`

	Status         string    `gorm:"column:status;not null;default:'active';index:idx_plan_status_activity,priority:1" json:"status"`
	GeneratedAt    time.Time `gorm:"column:generated_at;not null;default:now()" json:"generated_at"`
	LastActivityAt time.Time `gorm:"column:last_activity_at;not null;default:now();index:idx_plan_status_activity,priority:2" json:"last_activity_at"`

	Phases []*Phase `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"phases,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Plan) TableName() string { return "plan" }

// Salary returns the decoded salary bands, or nil when none were generated.
func (p *Plan) Salary() *SalaryExpectations {
	if p == nil {
		return nil
	}
	return p.SalaryExpectations.Data()
}

type Phase struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PlanID uuid.UUID `gorm:"type:uuid;not null;index:idx_plan_phase_order,priority:1" json:"plan_id"`

	Title             string `gorm:"column:title;not null" json:"title"`
	Description       string `gorm:"column:description;not null" json:"description"`
	EstimatedDuration string `gorm:"column:estimated_duration;not null" json:"estimated_duration"`
	OrderIndex        int    `gorm:"column:order_index;not null;index:idx_plan_phase_order,priority:2" json:"order_index"`

	Milestones []*Milestone `gorm:"foreignKey:PhaseID;constraint:OnDelete:CASCADE" json:"milestones,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Phase) TableName() string { return "plan_phase" }

type Milestone struct {
	ID      uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PhaseID uuid.UUID `gorm:"type:uuid;not null;index:idx_plan_milestone_order,priority:1" json:"phase_id"`

	Title                string `gorm:"column:title;not null" json:"title"`
	Description          string `gorm:"column:description;not null" json:"description"`
	OrderIndex           int    `gorm:"column:order_index;not null;index:idx_plan_milestone_order,priority:2" json:"order_index"`
	CompletionCriteria   string `gorm:"column:completion_criteria;not null" json:"completion_criteria"`
	VerificationRequired bool   `gorm:"column:verification_required;not null;default:false" json:"verification_required"`

	// IsCompleted caches "every child task completed"; it is rewritten on each task toggle.
	IsCompleted bool       `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	Tasks     []*Task     `gorm:"foreignKey:MilestoneID;constraint:OnDelete:CASCADE" json:"tasks,omitempty"`
	Resources []*Resource `gorm:"foreignKey:MilestoneID;constraint:OnDelete:CASCADE" json:"resources,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Milestone) TableName() string { return "plan_milestone" }

type Task struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MilestoneID uuid.UUID `gorm:"type:uuid;not null;index:idx_plan_task_order,priority:1" json:"milestone_id"`

	Title       string `gorm:"column:title;not null" json:"title"`
	Description string `gorm:"column:description;not null" json:"description"`
	OrderIndex  int    `gorm:"column:order_index;not null;index:idx_plan_task_order,priority:2" json:"order_index"`

	IsCompleted bool       `gorm:"column:is_completed;not null;default:false" json:"is_completed"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Task) TableName() string { return "plan_task" }
