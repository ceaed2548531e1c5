package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EmploymentEmployed   = "employed"
	EmploymentUnemployed = "unemployed"
	EmploymentStudent    = "student"
	EmploymentOther      = "other"
)

var EmploymentStatuses = []string{EmploymentEmployed, EmploymentUnemployed, EmploymentStudent, EmploymentOther}

var EducationLevels = []string{
	"high_school",
	"some_college",
	"associates",
	"bachelors",
	"masters",
	"doctorate",
	"other",
}

const (
	FinancialCanAffordPaid   = "can_afford_paid"
	FinancialNeedsFreeOnly   = "needs_free_only"
	FinancialNeedsAssistance = "needs_assistance"
)

var FinancialSituations = []string{FinancialCanAffordPaid, FinancialNeedsFreeOnly, FinancialNeedsAssistance}

var LearningPreferences = []string{"online", "in_person", "hybrid", "self_paced"}

const (
	MinHoursPerWeek = 1
	MaxHoursPerWeek = 168
)

type UserProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"-"`

	FirstName        string `gorm:"column:first_name;not null" json:"first_name"`
	LastName         string `gorm:"column:last_name;not null" json:"last_name"`
	Location         string `gorm:"column:location" json:"location"`
	PhoneNumber      string `gorm:"column:phone_number" json:"phone_number,omitempty"`
	IsKansasResident bool   `gorm:"column:is_kansas_resident;not null;default:false" json:"is_kansas_resident"`

	CurrentEmploymentStatus string `gorm:"column:current_employment_status;not null" json:"current_employment_status"`
	CurrentJobTitle         string `gorm:"column:current_job_title" json:"current_job_title,omitempty"`
	CurrentIndustry         string `gorm:"column:current_industry" json:"current_industry,omitempty"`
	YearsOfExperience       *int   `gorm:"column:years_of_experience" json:"years_of_experience,omitempty"`
	EducationLevel          string `gorm:"column:education_level;not null" json:"education_level"`

	AvailableHoursPerWeek int    `gorm:"column:available_hours_per_week;not null" json:"available_hours_per_week"`
	WillingToRelocate     bool   `gorm:"column:willing_to_relocate;not null;default:false" json:"willing_to_relocate"`
	HasTransportation     bool   `gorm:"column:has_transportation;not null;default:false" json:"has_transportation"`
	FinancialSituation    string `gorm:"column:financial_situation;not null" json:"financial_situation"`
	LearningPreference    string `gorm:"column:learning_preference;not null" json:"learning_preference"`

	Barriers datatypes.JSONSlice[string] `gorm:"column:barriers" json:"barriers"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (UserProfile) TableName() string { return "user_profile" }

// CurrentCareer is the job title when present, otherwise the employment status.
func (p *UserProfile) CurrentCareer() string {
	if p == nil {
		return ""
	}
	if t := strings.TrimSpace(p.CurrentJobTitle); t != "" {
		return t
	}
	return strings.TrimSpace(p.CurrentEmploymentStatus)
}
