package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/apranova/bootcamp-api/internal/models"
)

// ProgressRepository defines data operations for the student progress ledger.
type ProgressRepository interface {
	SetStepCompletion(ctx context.Context, studentID, projectID, stepID uint, completed bool, at time.Time) (models.StudentProgress, error)
	StartProject(ctx context.Context, studentID, projectID uint, at time.Time) (models.StudentProgress, error)
	ListByStudent(ctx context.Context, studentID uint, projectIDs []uint) ([]models.StudentProgress, error)
}

type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository instantiates the repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

// SetStepCompletion upserts the (student, project, step) row. The toggle is
// idempotent: repeated calls with the same value leave the row unchanged.
func (r *progressRepository) SetStepCompletion(ctx context.Context, studentID, projectID, stepID uint, completed bool, at time.Time) (models.StudentProgress, error) {
	var progress models.StudentProgress

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("student_id = ? AND project_id = ? AND step_id = ?", studentID, projectID, stepID).
			First(&progress).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			progress = models.StudentProgress{
				StudentID: studentID,
				ProjectID: projectID,
				StepID:    &stepID,
			}
		case err != nil:
			return err
		}

		if progress.IsCompleted == completed && progress.ID != 0 {
			return nil
		}

		progress.IsCompleted = completed
		if completed {
			completedAt := at
			progress.CompletedAt = &completedAt
		} else {
			progress.CompletedAt = nil
		}

		return tx.Save(&progress).Error
	})
	if err != nil {
		return models.StudentProgress{}, err
	}

	return progress, nil
}

// StartProject records the project-level progress row (step null) the first
// time a student opens an unlocked project.
func (r *progressRepository) StartProject(ctx context.Context, studentID, projectID uint, at time.Time) (models.StudentProgress, error) {
	var progress models.StudentProgress

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("student_id = ? AND project_id = ? AND step_id IS NULL", studentID, projectID).
			First(&progress).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		startedAt := at
		progress = models.StudentProgress{
			StudentID: studentID,
			ProjectID: projectID,
			StartedAt: &startedAt,
		}

		return tx.Create(&progress).Error
	})
	if err != nil {
		return models.StudentProgress{}, err
	}

	return progress, nil
}

func (r *progressRepository) ListByStudent(ctx context.Context, studentID uint, projectIDs []uint) ([]models.StudentProgress, error) {
	query := r.db.WithContext(ctx).Where("student_id = ?", studentID)
	if len(projectIDs) > 0 {
		query = query.Where("project_id IN ?", projectIDs)
	}

	var rows []models.StudentProgress
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}
