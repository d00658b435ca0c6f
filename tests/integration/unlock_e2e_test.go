package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/apranova/bootcamp-api/internal/config"
	"github.com/apranova/bootcamp-api/internal/handler"
	"github.com/apranova/bootcamp-api/internal/middleware"
	"github.com/apranova/bootcamp-api/internal/models"
	"github.com/apranova/bootcamp-api/internal/repository"
	"github.com/apranova/bootcamp-api/internal/router"
	"github.com/apranova/bootcamp-api/internal/service"
)

const e2eSeedToken = "integration-seed-token"

var e2eCurriculum = []byte(`{
	"tracks": [
		{
			"code": "DP",
			"name": "Data Professional",
			"projects": [
				{
					"number": 1,
					"title": "Data Pipeline",
					"steps": [
						{"step_number": 1, "title": "Extract"},
						{"step_number": 2, "title": "Load"}
					],
					"deliverables": [
						{"title": "Repository", "deliverable_type": "GITHUB"}
					]
				},
				{
					"number": 2,
					"title": "Warehouse Capstone",
					"project_type": "CAPSTONE",
					"steps": [{"step_number": 1, "title": "Model"}],
					"deliverables": [{"title": "Repository", "deliverable_type": "GITHUB"}]
				}
			]
		}
	]
}`)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:unlockE2E?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Track{},
		&models.Project{},
		&models.ProjectStep{},
		&models.Deliverable{},
		&models.Student{},
		&models.StudentProgress{},
		&models.Submission{},
		&models.ActivityLog{},
	))

	validate := validator.New(validator.WithRequiredStructEnabled())
	logger := zerolog.New(io.Discard)

	trackRepo := repository.NewTrackRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	activity := service.NewActivityService(activityRepo, logger)
	trackService := service.NewTrackService(trackRepo, progressRepo, submissionRepo, nil, logger)
	progressService := service.NewProgressService(progressRepo, trackRepo, trackService, nil, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, trackRepo, validate, nil, nil, logger)
	reviewService := service.NewReviewService(submissionRepo, validate, activity, nil, logger)
	seedService, err := service.NewSeedService(trackRepo, activity, true, e2eSeedToken, logger)
	require.NoError(t, err)

	auth := func(c *fiber.Ctx) error {
		if raw := c.Get("X-Test-User"); raw != "" {
			if id, parseErr := strconv.ParseUint(raw, 10, 64); parseErr == nil {
				c.Locals(middleware.LocalsUserID, uint(id))
			}
		}
		if role := c.Get("X-Test-Role"); role != "" {
			c.Locals(middleware.LocalsUserRole, role)
		}
		return c.Next()
	}

	app := fiber.New()
	router.Register(app, config.Config{AppName: "Bootcamp API", AppEnv: "test"}, router.Dependencies{
		TrackHandler:      handler.NewTrackHandler(trackService, logger),
		ProgressHandler:   handler.NewProgressHandler(progressService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, reviewService, logger),
		SeedHandler:       handler.NewSeedHandler(seedService, logger),
		JWTMiddleware:     auth,
	})

	return app
}

func request(t *testing.T, app *fiber.App, method, target string, body []byte, userID uint, role string) (int, map[string]json.RawMessage) {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-Test-User", strconv.FormatUint(uint64(userID), 10))
	}
	if role != "" {
		req.Header.Set("X-Test-Role", role)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &envelope))

	return resp.StatusCode, envelope
}

type trackPayload struct {
	Projects []struct {
		ID                 uint `json:"id"`
		Number             int  `json:"number"`
		ProgressPercentage int  `json:"progress_percentage"`
		IsUnlocked         bool `json:"is_unlocked"`
		Steps              []struct {
			ID uint `json:"id"`
		} `json:"steps"`
		Deliverables []struct {
			ID           uint   `json:"id"`
			LatestStatus string `json:"latest_status"`
		} `json:"deliverables"`
	} `json:"projects"`
	CurrentProjectID uint `json:"current_project_id"`
}

// TestUnlockFlowEndToEnd walks the whole student journey over HTTP: the
// curriculum is seeded, the student finishes every step of project 1 and
// submits its deliverable, a trainer approves it, and project 2 unlocks.
func TestUnlockFlowEndToEnd(t *testing.T) {
	app := setupApp(t)
	studentID := uint(1)

	// Seed the curriculum through the token-gated endpoint.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/seed/curriculum", bytes.NewReader(e2eCurriculum))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Seed-Token", e2eSeedToken)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	status, envelope := request(t, app, http.MethodGet, "/api/v1/tracks/DP", nil, studentID, models.RoleStudent)
	require.Equal(t, http.StatusOK, status)

	var track trackPayload
	require.NoError(t, json.Unmarshal(envelope["data"], &track))
	require.Len(t, track.Projects, 2)
	require.True(t, track.Projects[0].IsUnlocked)
	require.False(t, track.Projects[1].IsUnlocked)

	// Complete every step of project 1.
	for _, step := range track.Projects[0].Steps {
		body, marshalErr := json.Marshal(map[string]uint{
			"project_id": track.Projects[0].ID,
			"step_id":    step.ID,
		})
		require.NoError(t, marshalErr)
		status, _ = request(t, app, http.MethodPost, "/api/v1/progress/steps/complete", body, studentID, models.RoleStudent)
		require.Equal(t, http.StatusOK, status)
	}

	// Steps alone do not unlock project 2.
	status, envelope = request(t, app, http.MethodGet, "/api/v1/tracks/DP", nil, studentID, models.RoleStudent)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(envelope["data"], &track))
	require.Equal(t, 100, track.Projects[0].ProgressPercentage)
	require.False(t, track.Projects[1].IsUnlocked)

	// Submit the deliverable.
	submitBody, err := json.Marshal(map[string]interface{}{
		"deliverable_id": track.Projects[0].Deliverables[0].ID,
		"submission_url": "https://github.com/student/pipeline",
	})
	require.NoError(t, err)
	status, envelope = request(t, app, http.MethodPost, "/api/v1/submissions", submitBody, studentID, models.RoleStudent)
	require.Equal(t, http.StatusCreated, status)

	var submission struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(envelope["data"], &submission))

	// Trainer approves it.
	reviewBody := []byte(`{"decision": "approved", "feedback": "solid work"}`)
	status, _ = request(t, app, http.MethodPost,
		fmt.Sprintf("/api/v1/submissions/%d/review", submission.ID), reviewBody, 9, models.RoleTrainer)
	require.Equal(t, http.StatusOK, status)

	// Project 2 is now unlocked and becomes the current project.
	status, envelope = request(t, app, http.MethodGet, "/api/v1/tracks/DP", nil, studentID, models.RoleStudent)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(envelope["data"], &track))
	require.True(t, track.Projects[1].IsUnlocked)
	require.Equal(t, "APPROVED", track.Projects[0].Deliverables[0].LatestStatus)

	status, envelope = request(t, app, http.MethodGet, "/api/v1/tracks", nil, studentID, models.RoleStudent)
	require.Equal(t, http.StatusOK, status)

	var tracks []trackPayload
	require.NoError(t, json.Unmarshal(envelope["data"], &tracks))
	require.Len(t, tracks, 1)
	require.Equal(t, track.Projects[1].ID, tracks[0].CurrentProjectID)

	// Another student still sees project 2 locked.
	status, envelope = request(t, app, http.MethodGet, "/api/v1/tracks/DP", nil, 2, models.RoleStudent)
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(envelope["data"], &track))
	require.False(t, track.Projects[1].IsUnlocked)
}
