package service

import (
	"bytes"
	"context"
	"crypto/subtle"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gorm.io/datatypes"

	"github.com/apranova/bootcamp-api/internal/dto"
	"github.com/apranova/bootcamp-api/internal/models"
	"github.com/apranova/bootcamp-api/internal/repository"
)

//go:embed curriculum_schema.json
var curriculumSchemaJSON []byte

// SeedService loads the curriculum catalog from a JSON document. The payload
// is validated against a JSON Schema before anything touches the database.
type SeedService interface {
	SeedCurriculum(ctx context.Context, token string, raw []byte, actor Actor) (int64, error)
}

type seedService struct {
	tracks   repository.TrackRepository
	activity ActivityRecorder
	schema   *jsonschema.Schema
	enabled  bool
	token    string
	logger   zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(tracks repository.TrackRepository, activity ActivityRecorder, enabled bool, token string, logger zerolog.Logger) (SeedService, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("curriculum_schema.json", bytes.NewReader(curriculumSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to load curriculum schema: %w", err)
	}

	schema, err := compiler.Compile("curriculum_schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile curriculum schema: %w", err)
	}

	return &seedService{
		tracks:   tracks,
		activity: activity,
		schema:   schema,
		enabled:  enabled,
		token:    token,
		logger:   logger.With().Str("component", "seed_service").Logger(),
	}, nil
}

func (s *seedService) SeedCurriculum(ctx context.Context, token string, raw []byte, actor Actor) (int64, error) {
	if !s.enabled {
		return 0, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return 0, ErrSeedUnauthorized
	}

	var document interface{}
	if err := json.Unmarshal(raw, &document); err != nil {
		return 0, fmt.Errorf("invalid seed document: %w", err)
	}
	if err := s.schema.Validate(document); err != nil {
		return 0, fmt.Errorf("seed document rejected by schema: %w", err)
	}

	var payload dto.SeedCatalogRequest
	if err := json.Unmarshal(raw, &payload); err != nil {
		return 0, fmt.Errorf("invalid seed document: %w", err)
	}

	tracks, err := buildCatalog(payload)
	if err != nil {
		return 0, err
	}

	affected, err := s.tracks.ReplaceCatalog(ctx, tracks)
	if err != nil {
		return 0, err
	}

	if s.activity != nil {
		_ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    actor.ID,
			ActorRole:  actor.Role,
			Action:     "catalog.seeded",
			EntityType: "track",
			Metadata:   map[string]interface{}{"tracks": affected},
		})
	}

	s.logger.Info().Int64("tracks", affected).Msg("curriculum seeded")

	return affected, nil
}

func (s *seedService) validateToken(token string) bool {
	expected := strings.TrimSpace(s.token)
	if expected == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.TrimSpace(token))) == 1
}

// buildCatalog maps the seed document onto catalog models and enforces the
// contiguity invariant: project numbers must run 1..N without gaps.
func buildCatalog(payload dto.SeedCatalogRequest) ([]models.Track, error) {
	tracks := make([]models.Track, 0, len(payload.Tracks))

	for _, seedTrack := range payload.Tracks {
		track := models.Track{
			Code:          seedTrack.Code,
			Name:          seedTrack.Name,
			Description:   seedTrack.Description,
			Icon:          seedTrack.Icon,
			DurationWeeks: seedTrack.DurationWeeks,
			IsActive:      true,
		}
		if track.Icon == "" {
			track.Icon = "code"
		}
		if track.DurationWeeks <= 0 {
			track.DurationWeeks = 12
		}

		seen := make(map[int]struct{}, len(seedTrack.Projects))
		for _, seedProject := range seedTrack.Projects {
			if _, dup := seen[seedProject.Number]; dup {
				return nil, fmt.Errorf("track %s: duplicate project number %d", seedTrack.Code, seedProject.Number)
			}
			seen[seedProject.Number] = struct{}{}

			project, err := buildProject(seedProject)
			if err != nil {
				return nil, fmt.Errorf("track %s: %w", seedTrack.Code, err)
			}
			track.Projects = append(track.Projects, project)
		}

		for n := 1; n <= len(seedTrack.Projects); n++ {
			if _, ok := seen[n]; !ok {
				return nil, fmt.Errorf("track %s: project numbers are not contiguous, missing %d", seedTrack.Code, n)
			}
		}

		tracks = append(tracks, track)
	}

	return tracks, nil
}

func buildProject(seed dto.SeedProject) (models.Project, error) {
	project := models.Project{
		Number:         seed.Number,
		Title:          seed.Title,
		Subtitle:       seed.Subtitle,
		Description:    seed.Description,
		ProjectType:    seed.ProjectType,
		EstimatedHours: seed.EstimatedHours,
		IsActive:       true,
	}
	if project.ProjectType == "" {
		project.ProjectType = models.ProjectTypeStandard
	}
	if project.EstimatedHours <= 0 {
		project.EstimatedHours = 40
	}

	if len(seed.TechStack) > 0 {
		encoded, err := json.Marshal(seed.TechStack)
		if err != nil {
			return models.Project{}, fmt.Errorf("project %d: invalid tech stack: %w", seed.Number, err)
		}
		project.TechStack = datatypes.JSON(encoded)
	}

	for _, seedStep := range seed.Steps {
		step := models.ProjectStep{
			StepNumber:       seedStep.StepNumber,
			Title:            seedStep.Title,
			Description:      seedStep.Description,
			EstimatedMinutes: seedStep.EstimatedMinutes,
		}
		if step.EstimatedMinutes <= 0 {
			step.EstimatedMinutes = 60
		}
		if len(seedStep.Resources) > 0 {
			encoded, err := json.Marshal(seedStep.Resources)
			if err != nil {
				return models.Project{}, fmt.Errorf("step %d: invalid resources: %w", seedStep.StepNumber, err)
			}
			step.Resources = datatypes.JSON(encoded)
		}
		project.Steps = append(project.Steps, step)
	}

	for _, seedDeliverable := range seed.Deliverables {
		deliverable := models.Deliverable{
			Title:           seedDeliverable.Title,
			Description:     seedDeliverable.Description,
			DeliverableType: seedDeliverable.DeliverableType,
			IsRequired:      true,
			Order:           seedDeliverable.Order,
		}
		if seedDeliverable.IsRequired != nil {
			deliverable.IsRequired = *seedDeliverable.IsRequired
		}
		project.Deliverables = append(project.Deliverables, deliverable)
	}

	return project, nil
}
