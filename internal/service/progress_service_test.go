package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/apranova/bootcamp-api/internal/dto"
	"github.com/apranova/bootcamp-api/internal/models"
	"github.com/apranova/bootcamp-api/internal/repository"
)

func stepToggle(projectID, stepID uint) dto.StepToggleRequest {
	return dto.StepToggleRequest{ProjectID: projectID, StepID: stepID}
}

func newProgressService(db *gorm.DB) (ProgressService, TrackService) {
	trackSvc := newTrackService(db, nil)
	svc := NewProgressService(
		repository.NewProgressRepository(db),
		repository.NewTrackRepository(db),
		trackSvc,
		nil,
		validator.New(validator.WithRequiredStructEnabled()),
		zerolog.Nop(),
	)
	return svc, trackSvc
}

func TestMarkStepCompleteIsIdempotent(t *testing.T) {
	db := newTestDB(t, "progressSvcIdempotent")
	track := seedCatalog(t, db)
	studentID := uint(11)

	svc, _ := newProgressService(db)
	ctx := context.Background()

	project := track.Projects[0]
	step := project.Steps[0]

	first, err := svc.MarkStepComplete(ctx, studentID, stepToggle(project.ID, step.ID))
	require.NoError(t, err)
	require.True(t, first.IsCompleted)
	require.NotNil(t, first.CompletedAt)

	second, err := svc.MarkStepComplete(ctx, studentID, stepToggle(project.ID, step.ID))
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.True(t, second.IsCompleted)

	var count int64
	require.NoError(t, db.Model(&models.StudentProgress{}).
		Where("student_id = ? AND step_id = ?", studentID, step.ID).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestMarkStepIncompleteClearsCompletion(t *testing.T) {
	db := newTestDB(t, "progressSvcIncomplete")
	track := seedCatalog(t, db)
	studentID := uint(12)

	svc, _ := newProgressService(db)
	ctx := context.Background()

	project := track.Projects[0]
	step := project.Steps[1]

	_, err := svc.MarkStepComplete(ctx, studentID, stepToggle(project.ID, step.ID))
	require.NoError(t, err)

	cleared, err := svc.MarkStepIncomplete(ctx, studentID, stepToggle(project.ID, step.ID))
	require.NoError(t, err)
	require.False(t, cleared.IsCompleted)
	require.Nil(t, cleared.CompletedAt)

	// Unchecking a step that was never checked is a no-op, not an error.
	again, err := svc.MarkStepIncomplete(ctx, studentID, stepToggle(project.ID, step.ID))
	require.NoError(t, err)
	require.False(t, again.IsCompleted)
}

func TestToggleStepRejectsMismatchedProject(t *testing.T) {
	db := newTestDB(t, "progressSvcMismatch")
	track := seedCatalog(t, db)

	svc, _ := newProgressService(db)

	// Step belongs to project 1 but the payload names project 2.
	step := track.Projects[0].Steps[0]
	_, err := svc.MarkStepComplete(context.Background(), 13, stepToggle(track.Projects[1].ID, step.ID))
	require.ErrorIs(t, err, ErrStepProjectMismatch)
}

func TestToggleStepUnknownStep(t *testing.T) {
	db := newTestDB(t, "progressSvcUnknownStep")
	track := seedCatalog(t, db)

	svc, _ := newProgressService(db)

	_, err := svc.MarkStepComplete(context.Background(), 13, stepToggle(track.Projects[0].ID, 9999))
	require.ErrorIs(t, err, ErrStepNotFound)
}

func TestStartProjectEnforcesUnlockGate(t *testing.T) {
	db := newTestDB(t, "progressSvcStartGate")
	track := seedCatalog(t, db)
	studentID := uint(14)

	svc, _ := newProgressService(db)
	ctx := context.Background()

	// Project 2 is locked for a fresh student.
	_, err := svc.StartProject(ctx, studentID, track.Projects[1].ID)
	require.ErrorIs(t, err, ErrProjectLocked)

	// Project 1 is always startable.
	started, err := svc.StartProject(ctx, studentID, track.Projects[0].ID)
	require.NoError(t, err)
	require.NotNil(t, started.StartedAt)
	require.Nil(t, started.StepID)

	// Complete the gate and the capstone opens up.
	projectOne := track.Projects[0]
	completeAllSteps(t, db, studentID, projectOne)
	for _, deliverable := range projectOne.Deliverables {
		createApprovedSubmission(t, db, studentID, deliverable.ID)
	}

	capstone, err := svc.StartProject(ctx, studentID, track.Projects[1].ID)
	require.NoError(t, err)
	require.NotNil(t, capstone.StartedAt)
}

func TestStartProjectUnknownProject(t *testing.T) {
	db := newTestDB(t, "progressSvcStartUnknown")
	seedCatalog(t, db)

	svc, _ := newProgressService(db)

	_, err := svc.StartProject(context.Background(), 14, 9999)
	require.ErrorIs(t, err, ErrProjectNotFound)
}
