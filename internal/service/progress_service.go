package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/apranova/bootcamp-api/internal/dto"
	"github.com/apranova/bootcamp-api/internal/repository"
)

// ProgressService is the write side of the student progress ledger. Step
// toggles are idempotent; derived progress is never stored here, the track
// service recomputes it on read.
type ProgressService interface {
	MarkStepComplete(ctx context.Context, studentID uint, payload dto.StepToggleRequest) (dto.ProgressResponse, error)
	MarkStepIncomplete(ctx context.Context, studentID uint, payload dto.StepToggleRequest) (dto.ProgressResponse, error)
	StartProject(ctx context.Context, studentID, projectID uint) (dto.ProgressResponse, error)
}

// UnlockChecker answers whether a student may access a project.
type UnlockChecker interface {
	ProjectUnlocked(ctx context.Context, studentID, projectID uint) (bool, error)
}

type progressService struct {
	progress  repository.ProgressRepository
	tracks    repository.TrackRepository
	unlocks   UnlockChecker
	cache     *TrackViewCache
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewProgressService constructs the progress ledger service.
func NewProgressService(progress repository.ProgressRepository, tracks repository.TrackRepository, unlocks UnlockChecker, cache *TrackViewCache, validate *validator.Validate, logger zerolog.Logger) ProgressService {
	return &progressService{
		progress:  progress,
		tracks:    tracks,
		unlocks:   unlocks,
		cache:     cache,
		validator: validate,
		logger:    logger.With().Str("component", "progress_service").Logger(),
		now:       time.Now,
	}
}

func (s *progressService) MarkStepComplete(ctx context.Context, studentID uint, payload dto.StepToggleRequest) (dto.ProgressResponse, error) {
	return s.toggleStep(ctx, studentID, payload, true)
}

func (s *progressService) MarkStepIncomplete(ctx context.Context, studentID uint, payload dto.StepToggleRequest) (dto.ProgressResponse, error) {
	return s.toggleStep(ctx, studentID, payload, false)
}

func (s *progressService) toggleStep(ctx context.Context, studentID uint, payload dto.StepToggleRequest, completed bool) (dto.ProgressResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProgressResponse{}, err
	}

	step, err := s.tracks.GetStep(ctx, payload.StepID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProgressResponse{}, ErrStepNotFound
		}
		return dto.ProgressResponse{}, err
	}

	if step.ProjectID != payload.ProjectID {
		return dto.ProgressResponse{}, ErrStepProjectMismatch
	}

	row, err := s.progress.SetStepCompletion(ctx, studentID, payload.ProjectID, payload.StepID, completed, s.now())
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	s.cache.Invalidate(ctx, studentID)

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("step_id", payload.StepID).
		Bool("completed", completed).
		Msg("step completion toggled")

	return dto.NewProgressResponse(row), nil
}

// StartProject records that the student opened a project. The unlock gate is
// re-checked here so a stale client cannot start a locked project.
func (s *progressService) StartProject(ctx context.Context, studentID, projectID uint) (dto.ProgressResponse, error) {
	open, err := s.unlocks.ProjectUnlocked(ctx, studentID, projectID)
	if err != nil {
		return dto.ProgressResponse{}, err
	}
	if !open {
		return dto.ProgressResponse{}, ErrProjectLocked
	}

	row, err := s.progress.StartProject(ctx, studentID, projectID, s.now())
	if err != nil {
		return dto.ProgressResponse{}, err
	}

	s.logger.Info().
		Uint("student_id", studentID).
		Uint("project_id", projectID).
		Msg("project started")

	return dto.NewProgressResponse(row), nil
}
