package models

import (
	"time"

	"gorm.io/datatypes"
)

// Track codes for the two curricula offered by the platform.
const (
	TrackCodeDataProfessional   = "DP"
	TrackCodeFullStackDeveloper = "FSD"
)

// Track is a top-level curriculum containing an ordered list of projects.
type Track struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Code          string    `gorm:"size:10;uniqueIndex;not null" json:"code"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	Description   string    `gorm:"type:text" json:"description"`
	Icon          string    `gorm:"size:50;default:code" json:"icon"`
	DurationWeeks int       `gorm:"default:12" json:"duration_weeks"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	Projects      []Project `gorm:"constraint:OnDelete:CASCADE" json:"projects"`
}

// Project types. Capstone projects are deployed to external cloud providers.
const (
	ProjectTypeStandard = "STANDARD"
	ProjectTypeCapstone = "CAPSTONE"
)

// Project is one sequential unit of work within a track. Catalog data is
// immutable after seeding; per-student progress is derived at read time.
type Project struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	TrackID        uint           `gorm:"not null;uniqueIndex:idx_track_number,priority:1" json:"track_id"`
	Number         int            `gorm:"not null;uniqueIndex:idx_track_number,priority:2" json:"number"`
	Title          string         `gorm:"size:200;not null" json:"title"`
	Subtitle       string         `gorm:"size:200" json:"subtitle"`
	Description    string         `gorm:"type:text" json:"description"`
	ProjectType    string         `gorm:"size:20;default:STANDARD" json:"project_type"`
	TechStack      datatypes.JSON `gorm:"type:json" json:"tech_stack"`
	EstimatedHours int            `gorm:"default:40" json:"estimated_hours"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Steps          []ProjectStep  `gorm:"constraint:OnDelete:CASCADE" json:"steps"`
	Deliverables   []Deliverable  `gorm:"constraint:OnDelete:CASCADE" json:"deliverables"`
}

// IsCapstone reports whether the project is the track's capstone.
func (p Project) IsCapstone() bool {
	return p.ProjectType == ProjectTypeCapstone
}

// ProjectStep is a granular checklist item the student marks off themselves.
type ProjectStep struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ProjectID        uint           `gorm:"not null;uniqueIndex:idx_project_step,priority:1" json:"project_id"`
	StepNumber       int            `gorm:"not null;uniqueIndex:idx_project_step,priority:2" json:"step_number"`
	Title            string         `gorm:"size:200;not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	EstimatedMinutes int            `gorm:"default:60" json:"estimated_minutes"`
	Resources        datatypes.JSON `gorm:"type:json" json:"resources"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Deliverable types describing how the artifact is provided.
const (
	DeliverableTypeLink   = "LINK"
	DeliverableTypeGitHub = "GITHUB"
	DeliverableTypeFile   = "FILE"
	DeliverableTypeText   = "TEXT"
)

// Deliverable is an artifact a project requires, submitted by the student
// and approved by a trainer.
type Deliverable struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ProjectID       uint      `gorm:"not null;index" json:"project_id"`
	Title           string    `gorm:"size:200;not null" json:"title"`
	Description     string    `gorm:"type:text" json:"description"`
	DeliverableType string    `gorm:"size:20;not null" json:"deliverable_type"`
	IsRequired      bool      `gorm:"default:true" json:"is_required"`
	Order           int       `gorm:"column:display_order;default:0" json:"order"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RequiresURL reports whether the deliverable type carries a URL payload.
func (d Deliverable) RequiresURL() bool {
	return d.DeliverableType == DeliverableTypeLink || d.DeliverableType == DeliverableTypeGitHub
}
