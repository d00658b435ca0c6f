package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/apranova/bootcamp-api/internal/models"
)

func newRepoTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Track{},
		&models.Project{},
		&models.ProjectStep{},
		&models.Deliverable{},
		&models.Student{},
		&models.StudentProgress{},
		&models.Submission{},
	))

	return db
}

func seedPendingSubmission(t *testing.T, db *gorm.DB) models.Submission {
	t.Helper()

	track := models.Track{Code: models.TrackCodeDataProfessional, Name: "Data Professional", IsActive: true}
	require.NoError(t, db.Create(&track).Error)

	project := models.Project{TrackID: track.ID, Number: 1, Title: "Pipeline", IsActive: true}
	require.NoError(t, db.Create(&project).Error)

	deliverable := models.Deliverable{
		ProjectID:       project.ID,
		Title:           "Repo",
		DeliverableType: models.DeliverableTypeGitHub,
		IsRequired:      true,
	}
	require.NoError(t, db.Create(&deliverable).Error)

	submission := models.Submission{
		StudentID:     1,
		DeliverableID: deliverable.ID,
		SubmissionURL: "https://github.com/student/pipeline",
		Status:        models.SubmissionStatusPending,
		SubmittedAt:   time.Now(),
	}
	require.NoError(t, db.Create(&submission).Error)

	return submission
}

func TestDecideIfPendingSingleWinner(t *testing.T) {
	db := newRepoTestDB(t, "submissionRepoCAS")
	pending := seedPendingSubmission(t, db)

	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	approve := SubmissionDecision{
		Status:     models.SubmissionStatusApproved,
		Feedback:   "looks good",
		ReviewedBy: 9,
		ReviewedAt: time.Now(),
	}
	reject := SubmissionDecision{
		Status:     models.SubmissionStatusRejected,
		Feedback:   "needs work",
		ReviewedBy: 10,
		ReviewedAt: time.Now(),
	}

	require.NoError(t, repo.DecideIfPending(ctx, pending.ID, approve))

	// The second decision matches zero rows: first writer wins.
	err := repo.DecideIfPending(ctx, pending.ID, reject)
	require.ErrorIs(t, err, ErrNoRowsUpdated)

	decided, err := repo.GetByID(ctx, pending.ID)
	require.NoError(t, err)
	require.Equal(t, models.SubmissionStatusApproved, decided.Status)
	require.Equal(t, "looks good", decided.TrainerFeedback)
	require.NotNil(t, decided.ReviewedBy)
	require.EqualValues(t, 9, *decided.ReviewedBy)
}

func TestDecideIfPendingUnknownSubmission(t *testing.T) {
	db := newRepoTestDB(t, "submissionRepoUnknown")
	seedPendingSubmission(t, db)

	repo := NewSubmissionRepository(db)

	err := repo.DecideIfPending(context.Background(), 9999, SubmissionDecision{
		Status:     models.SubmissionStatusApproved,
		ReviewedBy: 9,
		ReviewedAt: time.Now(),
	})
	require.ErrorIs(t, err, ErrNoRowsUpdated)
}

func TestGetLatestPrefersNewestSubmission(t *testing.T) {
	db := newRepoTestDB(t, "submissionRepoLatest")
	first := seedPendingSubmission(t, db)

	require.NoError(t, db.Model(&models.Submission{}).Where("id = ?", first.ID).
		Update("status", models.SubmissionStatusRejected).Error)

	second := models.Submission{
		StudentID:     first.StudentID,
		DeliverableID: first.DeliverableID,
		SubmissionURL: "https://github.com/student/pipeline-v2",
		Status:        models.SubmissionStatusPending,
		SubmittedAt:   first.SubmittedAt.Add(time.Minute),
	}
	require.NoError(t, db.Create(&second).Error)

	repo := NewSubmissionRepository(db)

	latest, err := repo.GetLatest(context.Background(), first.StudentID, first.DeliverableID)
	require.NoError(t, err)
	require.Equal(t, second.ID, latest.ID)
	require.Equal(t, models.SubmissionStatusPending, latest.Status)
}

func TestApprovedDeliverableIDs(t *testing.T) {
	db := newRepoTestDB(t, "submissionRepoApproved")
	first := seedPendingSubmission(t, db)

	require.NoError(t, db.Model(&models.Submission{}).Where("id = ?", first.ID).
		Update("status", models.SubmissionStatusApproved).Error)

	repo := NewSubmissionRepository(db)
	ctx := context.Background()

	ids, err := repo.ApprovedDeliverableIDs(ctx, first.StudentID, []uint{first.DeliverableID, 999})
	require.NoError(t, err)
	require.Equal(t, []uint{first.DeliverableID}, ids)

	// No candidate deliverables short-circuits to an empty result.
	ids, err = repo.ApprovedDeliverableIDs(ctx, first.StudentID, nil)
	require.NoError(t, err)
	require.Empty(t, ids)
}
