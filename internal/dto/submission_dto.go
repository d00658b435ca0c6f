package dto

import (
	"time"

	"github.com/apranova/bootcamp-api/internal/models"
)

// SubmissionCreateRequest describes the payload for creating or resubmitting
// a deliverable submission. FILE deliverables carry the artifact as a
// multipart upload instead of a URL.
type SubmissionCreateRequest struct {
	DeliverableID  uint   `json:"deliverable_id" form:"deliverable_id" validate:"required,gt=0"`
	SubmissionURL  string `json:"submission_url" form:"submission_url" validate:"omitempty,url"`
	SubmissionText string `json:"submission_text" form:"submission_text"`
}

// ReviewRequest carries a trainer's decision on a pending submission.
type ReviewRequest struct {
	Decision string   `json:"decision" validate:"required,oneof=approved rejected"`
	Feedback string   `json:"feedback"`
	Grade    *float64 `json:"grade" validate:"omitempty,gte=0,lte=100"`
}

// Approved reports whether the decision approves the submission.
func (r ReviewRequest) Approved() bool {
	return r.Decision == "approved"
}

// SubmissionFilter describes query string filters for listing submissions.
type SubmissionFilter struct {
	StudentID     *uint   `query:"student_id"`
	DeliverableID *uint   `query:"deliverable_id"`
	Status        *string `query:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED"`
}

// SubmissionResponse is returned to API clients when viewing submissions.
type SubmissionResponse struct {
	ID              uint            `json:"id"`
	StudentID       uint            `json:"student_id"`
	DeliverableID   uint            `json:"deliverable_id"`
	SubmissionURL   string          `json:"submission_url"`
	SubmissionText  string          `json:"submission_text"`
	FileURL         string          `json:"file_url"`
	Status          string          `json:"status"`
	TrainerFeedback string          `json:"trainer_feedback"`
	Grade           *float64        `json:"grade"`
	ReviewedBy      *uint           `json:"reviewed_by"`
	ReviewedAt      *time.Time      `json:"reviewed_at"`
	SubmittedAt     time.Time       `json:"submitted_at"`
	Deliverable     DeliverableLite `json:"deliverable"`
	Student         StudentLite     `json:"student"`
}

// DeliverableLite summarizes a deliverable in submission responses.
type DeliverableLite struct {
	ID              uint   `json:"id"`
	Title           string `json:"title"`
	DeliverableType string `json:"deliverable_type"`
	IsRequired      bool   `json:"is_required"`
}

// StudentLite summarizes a student without exposing full profile data.
type StudentLite struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewSubmissionResponse converts a Submission model into a DTO.
func NewSubmissionResponse(model models.Submission) SubmissionResponse {
	response := SubmissionResponse{
		ID:              model.ID,
		StudentID:       model.StudentID,
		DeliverableID:   model.DeliverableID,
		SubmissionURL:   model.SubmissionURL,
		SubmissionText:  model.SubmissionText,
		FileURL:         model.FileURL,
		Status:          model.Status,
		TrainerFeedback: model.TrainerFeedback,
		Grade:           model.Grade,
		ReviewedBy:      model.ReviewedBy,
		ReviewedAt:      model.ReviewedAt,
		SubmittedAt:     model.SubmittedAt,
	}

	if model.Deliverable.ID != 0 {
		response.Deliverable = DeliverableLite{
			ID:              model.Deliverable.ID,
			Title:           model.Deliverable.Title,
			DeliverableType: model.Deliverable.DeliverableType,
			IsRequired:      model.Deliverable.IsRequired,
		}
	}

	if model.Student.ID != 0 {
		response.Student = StudentLite{
			ID:    model.Student.ID,
			Name:  model.Student.Name,
			Email: model.Student.Email,
		}
	}

	return response
}

// NewSubmissionResponseSlice converts submission models into DTOs.
func NewSubmissionResponseSlice(models []models.Submission) []SubmissionResponse {
	responses := make([]SubmissionResponse, 0, len(models))
	for _, submission := range models {
		responses = append(responses, NewSubmissionResponse(submission))
	}

	return responses
}
