package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/stretchr/testify/require"

	"github.com/apranova/bootcamp-api/internal/dto"
	"github.com/apranova/bootcamp-api/internal/handler"
)

type stubTrackService struct {
	response dto.TrackResponse
}

func (s stubTrackService) ListTracks(context.Context, uint) ([]dto.TrackResponse, error) {
	return []dto.TrackResponse{s.response}, nil
}

func (s stubTrackService) GetTrack(context.Context, uint, string) (dto.TrackResponse, error) {
	return s.response, nil
}

func (s stubTrackService) ProjectUnlocked(context.Context, uint, uint) (bool, error) {
	return true, nil
}

func TestTrackViewContract(t *testing.T) {
	schemaPath, err := filepath.Abs(filepath.Join("..", "contracts", "track_view.schema.json"))
	require.NoError(t, err)

	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile("file://" + schemaPath)
	require.NoError(t, err)

	stepID := uint(11)
	response := dto.TrackResponse{
		ID:            1,
		Code:          "DP",
		Name:          "Data Professional",
		Description:   "Data engineering curriculum",
		Icon:          "database",
		DurationWeeks: 12,
		Projects: []dto.ProjectResponse{
			{
				ID:          10,
				Number:      1,
				Title:       "Data Pipeline",
				ProjectType: "STANDARD",
				TechStack:   []string{"Python", "Airflow"},
				Steps: []dto.StepResponse{
					{
						ID:          stepID,
						StepNumber:  1,
						Title:       "Extract",
						IsCompleted: true,
						CompletedAt: "2026-08-30T10:00:00Z",
					},
					{ID: 12, StepNumber: 2, Title: "Transform"},
				},
				Deliverables: []dto.DeliverableResponse{
					{
						ID:              20,
						Title:           "Repository",
						DeliverableType: "GITHUB",
						IsRequired:      true,
						LatestStatus:    "APPROVED",
					},
				},
				ProgressPercentage: 50,
				IsUnlocked:         true,
			},
			{
				ID:           30,
				Number:       2,
				Title:        "Warehouse Capstone",
				ProjectType:  "CAPSTONE",
				Steps:        []dto.StepResponse{},
				Deliverables: []dto.DeliverableResponse{},
				IsUnlocked:   false,
			},
		},
		CurrentProjectID: 10,
	}

	trackHandler := handler.NewTrackHandler(stubTrackService{response: response}, zerolog.Nop())

	app := fiber.New()
	group := app.Group("/api/v1/tracks", func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		c.Locals("user_role", "student")
		return c.Next()
	})
	trackHandler.Register(group)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tracks/DP", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var payload interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.NoError(t, schema.Validate(payload))
}
