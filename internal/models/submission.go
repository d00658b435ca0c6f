package models

import "time"

// Submission statuses. The machine is PENDING -> APPROVED | REJECTED; a
// rejected deliverable is reopened by creating a fresh PENDING row, never by
// mutating the decided one.
const (
	SubmissionStatusPending  = "PENDING"
	SubmissionStatusApproved = "APPROVED"
	SubmissionStatusRejected = "REJECTED"
)

// Submission is one instance of a student providing a deliverable artifact
// for trainer review. All rows are retained as audit history.
type Submission struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	StudentID       uint        `gorm:"not null;index:idx_student_deliverable" json:"student_id"`
	DeliverableID   uint        `gorm:"not null;index:idx_student_deliverable" json:"deliverable_id"`
	SubmissionURL   string      `gorm:"size:512" json:"submission_url"`
	SubmissionText  string      `gorm:"type:text" json:"submission_text"`
	FileURL         string      `gorm:"size:512" json:"file_url"`
	Status          string      `gorm:"size:20;not null;default:PENDING" json:"status"`
	TrainerFeedback string      `gorm:"type:text" json:"trainer_feedback"`
	Grade           *float64    `json:"grade"`
	ReviewedBy      *uint       `json:"reviewed_by"`
	ReviewedAt      *time.Time  `json:"reviewed_at"`
	SubmittedAt     time.Time   `json:"submitted_at"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	Deliverable     Deliverable `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"deliverable"`
	Student         Student     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"student"`
}

// IsDecided reports whether the submission has reached a terminal state.
func (s Submission) IsDecided() bool {
	return s.Status == SubmissionStatusApproved || s.Status == SubmissionStatusRejected
}
