package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/apranova/bootcamp-api/internal/models"
)

// TrackRepository defines data operations for the curriculum catalog.
type TrackRepository interface {
	List(ctx context.Context) ([]models.Track, error)
	GetByCode(ctx context.Context, code string) (models.Track, error)
	GetProject(ctx context.Context, id uint) (models.Project, error)
	GetStep(ctx context.Context, id uint) (models.ProjectStep, error)
	GetDeliverable(ctx context.Context, id uint) (models.Deliverable, error)
	ReplaceCatalog(ctx context.Context, tracks []models.Track) (int64, error)
}

type trackRepository struct {
	db *gorm.DB
}

// NewTrackRepository instantiates the repository.
func NewTrackRepository(db *gorm.DB) TrackRepository {
	return &trackRepository{db: db}
}

func (r *trackRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&models.Track{}).
		Where("is_active = ?", true).
		Preload("Projects", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("number ASC")
		}).
		Preload("Projects.Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_number ASC")
		}).
		Preload("Projects.Deliverables", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		})
}

func (r *trackRepository) List(ctx context.Context) ([]models.Track, error) {
	var tracks []models.Track
	if err := r.baseQuery(ctx).Order("code ASC").Find(&tracks).Error; err != nil {
		return nil, err
	}

	return tracks, nil
}

func (r *trackRepository) GetByCode(ctx context.Context, code string) (models.Track, error) {
	var track models.Track
	if err := r.baseQuery(ctx).Where("code = ?", code).First(&track).Error; err != nil {
		return models.Track{}, err
	}

	return track, nil
}

func (r *trackRepository) GetProject(ctx context.Context, id uint) (models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).
		Preload("Steps").
		Preload("Deliverables").
		First(&project, id).Error; err != nil {
		return models.Project{}, err
	}

	return project, nil
}

func (r *trackRepository) GetStep(ctx context.Context, id uint) (models.ProjectStep, error) {
	var step models.ProjectStep
	if err := r.db.WithContext(ctx).First(&step, id).Error; err != nil {
		return models.ProjectStep{}, err
	}

	return step, nil
}

func (r *trackRepository) GetDeliverable(ctx context.Context, id uint) (models.Deliverable, error) {
	var deliverable models.Deliverable
	if err := r.db.WithContext(ctx).First(&deliverable, id).Error; err != nil {
		return models.Deliverable{}, err
	}

	return deliverable, nil
}

// ReplaceCatalog upserts the seeded curriculum inside a single transaction.
// Track rows are matched on code so reseeding stays idempotent.
func (r *trackRepository) ReplaceCatalog(ctx context.Context, tracks []models.Track) (int64, error) {
	var affected int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range tracks {
			track := &tracks[i]

			var existing models.Track
			err := tx.Where("code = ?", track.Code).First(&existing).Error
			switch {
			case err == nil:
				var projectIDs []uint
				if err := tx.Model(&models.Project{}).
					Where("track_id = ?", existing.ID).
					Pluck("id", &projectIDs).Error; err != nil {
					return err
				}
				if len(projectIDs) > 0 {
					if err := tx.Where("project_id IN ?", projectIDs).Delete(&models.ProjectStep{}).Error; err != nil {
						return err
					}
					if err := tx.Where("project_id IN ?", projectIDs).Delete(&models.Deliverable{}).Error; err != nil {
						return err
					}
					if err := tx.Where("track_id = ?", existing.ID).Delete(&models.Project{}).Error; err != nil {
						return err
					}
				}

				track.ID = existing.ID
				if err := tx.Model(&existing).Updates(map[string]interface{}{
					"name":           track.Name,
					"description":    track.Description,
					"icon":           track.Icon,
					"duration_weeks": track.DurationWeeks,
					"is_active":      track.IsActive,
				}).Error; err != nil {
					return err
				}

				for j := range track.Projects {
					track.Projects[j].TrackID = existing.ID
					if err := tx.Create(&track.Projects[j]).Error; err != nil {
						return err
					}
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				if err := tx.Create(track).Error; err != nil {
					return err
				}
			default:
				return err
			}

			affected++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return affected, nil
}
