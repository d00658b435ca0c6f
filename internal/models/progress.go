package models

import "time"

// StudentProgress links a student to a project (StepID null) or to a single
// step within it. Step rows record self-reported checklist completion; the
// project-level row records when the student started working on the project.
type StudentProgress struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	StudentID   uint       `gorm:"not null;uniqueIndex:idx_student_project_step,priority:1" json:"student_id"`
	ProjectID   uint       `gorm:"not null;uniqueIndex:idx_student_project_step,priority:2" json:"project_id"`
	StepID      *uint      `gorm:"uniqueIndex:idx_student_project_step,priority:3" json:"step_id"`
	IsCompleted bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	StartedAt   *time.Time `json:"started_at"`
	Notes       string     `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
