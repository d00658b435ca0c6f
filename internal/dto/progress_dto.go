package dto

import (
	"time"

	"github.com/apranova/bootcamp-api/internal/models"
)

// StepToggleRequest marks a checklist step complete or incomplete.
type StepToggleRequest struct {
	ProjectID uint `json:"project_id" validate:"required,gt=0"`
	StepID    uint `json:"step_id" validate:"required,gt=0"`
}

// ProgressResponse serializes a student progress ledger row.
type ProgressResponse struct {
	ID          uint       `json:"id"`
	StudentID   uint       `json:"student_id"`
	ProjectID   uint       `json:"project_id"`
	StepID      *uint      `json:"step_id"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	StartedAt   *time.Time `json:"started_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewProgressResponse converts a StudentProgress model into a DTO.
func NewProgressResponse(model models.StudentProgress) ProgressResponse {
	return ProgressResponse{
		ID:          model.ID,
		StudentID:   model.StudentID,
		ProjectID:   model.ProjectID,
		StepID:      model.StepID,
		IsCompleted: model.IsCompleted,
		CompletedAt: model.CompletedAt,
		StartedAt:   model.StartedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
