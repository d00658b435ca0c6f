package dto

import (
	"encoding/json"

	"github.com/apranova/bootcamp-api/internal/models"
)

// TrackResponse is the catalog view of a track with per-student derived
// progress and unlock state on every project.
type TrackResponse struct {
	ID               uint              `json:"id"`
	Code             string            `json:"code"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Icon             string            `json:"icon"`
	DurationWeeks    int               `json:"duration_weeks"`
	Projects         []ProjectResponse `json:"projects"`
	CurrentProjectID uint              `json:"current_project_id"`
}

// ProjectResponse is a project with its derived per-student fields.
type ProjectResponse struct {
	ID                 uint                  `json:"id"`
	Number             int                   `json:"number"`
	Title              string                `json:"title"`
	Subtitle           string                `json:"subtitle"`
	Description        string                `json:"description"`
	ProjectType        string                `json:"project_type"`
	TechStack          []string              `json:"tech_stack"`
	EstimatedHours     int                   `json:"estimated_hours"`
	Steps              []StepResponse        `json:"steps"`
	Deliverables       []DeliverableResponse `json:"deliverables"`
	ProgressPercentage int                   `json:"progress_percentage"`
	IsUnlocked         bool                  `json:"is_unlocked"`
}

// StepResponse is a checklist step with the student's completion state.
type StepResponse struct {
	ID               uint   `json:"id"`
	StepNumber       int    `json:"step_number"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	IsCompleted      bool   `json:"is_completed"`
	CompletedAt      string `json:"completed_at,omitempty"`
}

// DeliverableResponse is a deliverable with the student's latest submission
// status attached.
type DeliverableResponse struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	DeliverableType string `json:"deliverable_type"`
	IsRequired      bool   `json:"is_required"`
	LatestStatus    string `json:"latest_status,omitempty"`
}

// DecodeTechStack converts the stored JSON tech stack list into strings.
func DecodeTechStack(project models.Project) []string {
	if len(project.TechStack) == 0 {
		return []string{}
	}

	var stack []string
	if err := json.Unmarshal(project.TechStack, &stack); err != nil {
		return []string{}
	}

	return stack
}
