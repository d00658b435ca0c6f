package performance_test

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/apranova/bootcamp-api/internal/handler"
	"github.com/apranova/bootcamp-api/internal/middleware"
	"github.com/apranova/bootcamp-api/internal/models"
	"github.com/apranova/bootcamp-api/internal/repository"
	"github.com/apranova/bootcamp-api/internal/service"
)

func setupTrackPerformanceApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:trackPerf?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Track{},
		&models.Project{},
		&models.ProjectStep{},
		&models.Deliverable{},
		&models.StudentProgress{},
		&models.Submission{},
	))

	// Seed dataset: two tracks, ten projects each, with steps and deliverables.
	now := time.Now().UTC()
	for _, code := range []string{models.TrackCodeDataProfessional, models.TrackCodeFullStackDeveloper} {
		track := models.Track{Code: code, Name: code, IsActive: true}
		require.NoError(t, db.Create(&track).Error)

		for number := 1; number <= 10; number++ {
			project := models.Project{
				TrackID:  track.ID,
				Number:   number,
				Title:    fmt.Sprintf("%s project %d", code, number),
				IsActive: true,
			}
			require.NoError(t, db.Create(&project).Error)

			for step := 1; step <= 8; step++ {
				require.NoError(t, db.Create(&models.ProjectStep{
					ProjectID:  project.ID,
					StepNumber: step,
					Title:      fmt.Sprintf("Step %d", step),
				}).Error)
			}

			deliverable := models.Deliverable{
				ProjectID:       project.ID,
				Title:           "Repository",
				DeliverableType: models.DeliverableTypeGitHub,
				IsRequired:      true,
			}
			require.NoError(t, db.Create(&deliverable).Error)

			require.NoError(t, db.Create(&models.Submission{
				StudentID:     1,
				DeliverableID: deliverable.ID,
				SubmissionURL: "https://github.com/student/project",
				Status:        models.SubmissionStatusApproved,
				SubmittedAt:   now,
			}).Error)
		}
	}

	logger := zerolog.New(io.Discard)
	trackService := service.NewTrackService(
		repository.NewTrackRepository(db),
		repository.NewProgressRepository(db),
		repository.NewSubmissionRepository(db),
		nil,
		logger,
	)
	trackHandler := handler.NewTrackHandler(trackService, logger)

	app := fiber.New()
	group := app.Group("/api/v1/tracks", func(c *fiber.Ctx) error {
		c.Locals(middleware.LocalsUserID, uint(1))
		c.Locals(middleware.LocalsUserRole, models.RoleStudent)
		return c.Next()
	})
	trackHandler.Register(group)

	return app, db
}

func TestTrackViewP95LatencyBelow250ms(t *testing.T) {
	app, db := setupTrackPerformanceApp(t)
	t.Cleanup(func() { _ = db })

	runs := 40
	durations := make([]time.Duration, 0, runs)

	for i := 0; i < runs; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/tracks", nil)
		start := time.Now()
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		durations = append(durations, time.Since(start))
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	index := int(math.Ceil(0.95*float64(len(durations)))) - 1
	if index < 0 {
		index = 0
	}
	p95 := durations[index]

	require.LessOrEqual(t, p95, 250*time.Millisecond)
}
