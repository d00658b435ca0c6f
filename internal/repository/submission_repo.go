package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/apranova/bootcamp-api/internal/models"
)

// ErrNoRowsUpdated indicates a conditional update matched no rows.
var ErrNoRowsUpdated = errors.New("no rows updated")

// SubmissionFilter allows narrowing submission queries.
type SubmissionFilter struct {
	StudentID     *uint
	DeliverableID *uint
	Status        *string
}

// SubmissionDecision carries the fields written by a review decision.
type SubmissionDecision struct {
	Status     string
	Feedback   string
	Grade      *float64
	ReviewedBy uint
	ReviewedAt time.Time
}

// SubmissionRepository defines data operations for submissions.
type SubmissionRepository interface {
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
	GetByID(ctx context.Context, id uint) (models.Submission, error)
	GetLatest(ctx context.Context, studentID, deliverableID uint) (models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	DecideIfPending(ctx context.Context, id uint, decision SubmissionDecision) error
	ApprovedDeliverableIDs(ctx context.Context, studentID uint, deliverableIDs []uint) ([]uint, error)
}

type submissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository instantiates the repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

func (r *submissionRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Submission{}).
		Preload("Deliverable").
		Preload("Student")
}

func (r *submissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := r.baseQuery(ctx)

	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}

	if filter.DeliverableID != nil {
		query = query.Where("deliverable_id = ?", *filter.DeliverableID)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var submissions []models.Submission
	if err := query.Order("submitted_at DESC").Find(&submissions).Error; err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *submissionRepository) GetByID(ctx context.Context, id uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).First(&submission, id).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) GetLatest(ctx context.Context, studentID, deliverableID uint) (models.Submission, error) {
	var submission models.Submission
	if err := r.baseQuery(ctx).
		Where("student_id = ?", studentID).
		Where("deliverable_id = ?", deliverableID).
		Order("submitted_at DESC, id DESC").
		First(&submission).Error; err != nil {
		return models.Submission{}, err
	}

	return submission, nil
}

func (r *submissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}

// DecideIfPending applies a review decision only if the row is still PENDING.
// The conditional update is the serialization point: of two racing reviewers
// exactly one write matches, the other observes ErrNoRowsUpdated.
func (r *submissionRepository) DecideIfPending(ctx context.Context, id uint, decision SubmissionDecision) error {
	updates := map[string]interface{}{
		"status":           decision.Status,
		"trainer_feedback": decision.Feedback,
		"reviewed_by":      decision.ReviewedBy,
		"reviewed_at":      decision.ReviewedAt,
	}
	if decision.Grade != nil {
		updates["grade"] = *decision.Grade
	}

	result := r.db.WithContext(ctx).Model(&models.Submission{}).
		Where("id = ?", id).
		Where("status = ?", models.SubmissionStatusPending).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsUpdated
	}

	return nil
}

func (r *submissionRepository) ApprovedDeliverableIDs(ctx context.Context, studentID uint, deliverableIDs []uint) ([]uint, error) {
	if len(deliverableIDs) == 0 {
		return nil, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Submission{}).
		Distinct("deliverable_id").
		Where("student_id = ?", studentID).
		Where("deliverable_id IN ?", deliverableIDs).
		Where("status = ?", models.SubmissionStatusApproved).
		Pluck("deliverable_id", &ids).Error
	if err != nil {
		return nil, err
	}

	return ids, nil
}
