package plan

import (
	"time"

	"github.com/google/uuid"
)

const (
	ResourceCourse        = "course"
	ResourceCertification = "certification"
	ResourceProgram       = "program"
	ResourceJobListing    = "job_listing"
	ResourceArticle       = "article"
	ResourceVideo         = "video"
	ResourceOther         = "other"
)

var ResourceTypes = []string{
	ResourceCourse,
	ResourceCertification,
	ResourceProgram,
	ResourceJobListing,
	ResourceArticle,
	ResourceVideo,
	ResourceOther,
}

const (
	LocationOnline   = "online"
	LocationInPerson = "in_person"
	LocationHybrid   = "hybrid"
)

var ResourceLocations = []string{LocationOnline, LocationInPerson, LocationHybrid}

// Resource is written once at generation time and never mutated.
type Resource struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	MilestoneID uuid.UUID `gorm:"type:uuid;not null;index:idx_plan_resource_position,priority:1" json:"milestone_id"`
	Position    int       `gorm:"column:position;not null;default:0;index:idx_plan_resource_position,priority:2" json:"position"` // generation order

	Title        string  `gorm:"column:title;not null" json:"title"`
	Description  string  `gorm:"column:description;not null" json:"description"`
	URL          string  `gorm:"column:url;not null" json:"url"`
	Type         string  `gorm:"column:type;not null" json:"type"`
	Cost         string  `gorm:"column:cost;not null" json:"cost"`
	Duration     *string `gorm:"column:duration" json:"duration,omitempty"`
	Location     *string `gorm:"column:location" json:"location,omitempty"`
	Provider     *string `gorm:"column:provider" json:"provider,omitempty"`
	IsAccredited *bool   `gorm:"column:is_accredited" json:"is_accredited,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Resource) TableName() string { return "plan_resource" }
