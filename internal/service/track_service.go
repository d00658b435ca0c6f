package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/apranova/bootcamp-api/internal/dto"
	"github.com/apranova/bootcamp-api/internal/models"
	"github.com/apranova/bootcamp-api/internal/observability"
	"github.com/apranova/bootcamp-api/internal/repository"
)

// TrackService exposes the curriculum catalog with per-student derived
// progress and unlock state. All derived fields are recomputed from the
// ledger on every cache miss; nothing is stored back into the catalog.
type TrackService interface {
	ListTracks(ctx context.Context, studentID uint) ([]dto.TrackResponse, error)
	GetTrack(ctx context.Context, studentID uint, code string) (dto.TrackResponse, error)
	ProjectUnlocked(ctx context.Context, studentID, projectID uint) (bool, error)
}

type trackService struct {
	tracks      repository.TrackRepository
	progress    repository.ProgressRepository
	submissions repository.SubmissionRepository
	cache       *TrackViewCache
	logger      zerolog.Logger
}

// NewTrackService builds the track aggregation service.
func NewTrackService(tracks repository.TrackRepository, progress repository.ProgressRepository, submissions repository.SubmissionRepository, cache *TrackViewCache, logger zerolog.Logger) TrackService {
	return &trackService{
		tracks:      tracks,
		progress:    progress,
		submissions: submissions,
		cache:       cache,
		logger:      logger.With().Str("component", "track_service").Logger(),
	}
}

func (s *trackService) ListTracks(ctx context.Context, studentID uint) ([]dto.TrackResponse, error) {
	if cached, ok := s.cache.Get(ctx, studentID); ok {
		s.logger.Debug().Uint("student_id", studentID).Msg("track view cache hit")
		return cached, nil
	}

	start := time.Now()
	defer func() {
		observability.UnlockRecomputeLatency().Observe(time.Since(start).Seconds())
	}()

	tracks, err := s.tracks.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TrackResponse, 0, len(tracks))
	for _, track := range tracks {
		response, err := s.buildTrackView(ctx, studentID, track)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}

	s.cache.Set(ctx, studentID, responses)

	return responses, nil
}

func (s *trackService) GetTrack(ctx context.Context, studentID uint, code string) (dto.TrackResponse, error) {
	track, err := s.tracks.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TrackResponse{}, ErrTrackNotFound
		}
		return dto.TrackResponse{}, err
	}

	return s.buildTrackView(ctx, studentID, track)
}

// ProjectUnlocked recomputes the unlock gate for a single project.
func (s *trackService) ProjectUnlocked(ctx context.Context, studentID, projectID uint) (bool, error) {
	project, err := s.tracks.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrProjectNotFound
		}
		return false, err
	}

	tracks, err := s.tracks.List(ctx)
	if err != nil {
		return false, err
	}

	for _, track := range tracks {
		if track.ID != project.TrackID {
			continue
		}

		view, err := s.buildTrackView(ctx, studentID, track)
		if err != nil {
			return false, err
		}

		for _, p := range view.Projects {
			if p.ID == projectID {
				return p.IsUnlocked, nil
			}
		}
	}

	// Unknown project or track: fail closed.
	return false, nil
}

// buildTrackView derives progress and unlock state for every project in the
// track from the student's ledger rows and submission history.
func (s *trackService) buildTrackView(ctx context.Context, studentID uint, track models.Track) (dto.TrackResponse, error) {
	projectIDs := make([]uint, 0, len(track.Projects))
	deliverableIDs := make([]uint, 0)
	for _, project := range track.Projects {
		projectIDs = append(projectIDs, project.ID)
		for _, deliverable := range project.Deliverables {
			deliverableIDs = append(deliverableIDs, deliverable.ID)
		}
	}

	ledger, err := s.progress.ListByStudent(ctx, studentID, projectIDs)
	if err != nil {
		return dto.TrackResponse{}, err
	}

	completedSteps := make(map[uint]models.StudentProgress, len(ledger))
	for _, row := range ledger {
		if row.StepID != nil {
			completedSteps[*row.StepID] = row
		}
	}

	approvedIDs, err := s.submissions.ApprovedDeliverableIDs(ctx, studentID, deliverableIDs)
	if err != nil {
		return dto.TrackResponse{}, err
	}
	approved := make(map[uint]struct{}, len(approvedIDs))
	for _, id := range approvedIDs {
		approved[id] = struct{}{}
	}

	latestStatus, err := s.latestSubmissionStatuses(ctx, studentID)
	if err != nil {
		return dto.TrackResponse{}, err
	}

	response := dto.TrackResponse{
		ID:            track.ID,
		Code:          track.Code,
		Name:          track.Name,
		Description:   track.Description,
		Icon:          track.Icon,
		DurationWeeks: track.DurationWeeks,
		Projects:      make([]dto.ProjectResponse, 0, len(track.Projects)),
	}

	var previous *dto.ProjectResponse
	var previousModel *models.Project
	for i := range track.Projects {
		project := track.Projects[i]
		view := buildProjectView(project, completedSteps, latestStatus)
		view.IsUnlocked = unlocked(project.Number, previous, previousModel, approved)
		response.Projects = append(response.Projects, view)
		previous = &response.Projects[len(response.Projects)-1]
		previousModel = &track.Projects[i]
	}

	response.CurrentProjectID = currentProjectID(response.Projects)

	return response, nil
}

func (s *trackService) latestSubmissionStatuses(ctx context.Context, studentID uint) (map[uint]string, error) {
	submissions, err := s.submissions.List(ctx, repository.SubmissionFilter{StudentID: &studentID})
	if err != nil {
		return nil, err
	}

	// List is ordered newest first, so the first row per deliverable wins.
	latest := make(map[uint]string, len(submissions))
	for _, submission := range submissions {
		if _, ok := latest[submission.DeliverableID]; !ok {
			latest[submission.DeliverableID] = submission.Status
		}
	}

	return latest, nil
}

func buildProjectView(project models.Project, completedSteps map[uint]models.StudentProgress, latestStatus map[uint]string) dto.ProjectResponse {
	view := dto.ProjectResponse{
		ID:             project.ID,
		Number:         project.Number,
		Title:          project.Title,
		Subtitle:       project.Subtitle,
		Description:    project.Description,
		ProjectType:    project.ProjectType,
		TechStack:      dto.DecodeTechStack(project),
		EstimatedHours: project.EstimatedHours,
		Steps:          make([]dto.StepResponse, 0, len(project.Steps)),
		Deliverables:   make([]dto.DeliverableResponse, 0, len(project.Deliverables)),
	}

	completed := 0
	for _, step := range project.Steps {
		stepView := dto.StepResponse{
			ID:               step.ID,
			StepNumber:       step.StepNumber,
			Title:            step.Title,
			Description:      step.Description,
			EstimatedMinutes: step.EstimatedMinutes,
		}
		if row, ok := completedSteps[step.ID]; ok && row.IsCompleted {
			stepView.IsCompleted = true
			if row.CompletedAt != nil {
				stepView.CompletedAt = row.CompletedAt.Format(time.RFC3339)
			}
			completed++
		}
		view.Steps = append(view.Steps, stepView)
	}

	view.ProgressPercentage = progressPercentage(completed, len(project.Steps))

	for _, deliverable := range project.Deliverables {
		view.Deliverables = append(view.Deliverables, dto.DeliverableResponse{
			ID:              deliverable.ID,
			Title:           deliverable.Title,
			Description:     deliverable.Description,
			DeliverableType: deliverable.DeliverableType,
			IsRequired:      deliverable.IsRequired,
			LatestStatus:    latestStatus[deliverable.ID],
		})
	}

	return view
}

// progressPercentage is step-based: round(100 * completed / total). A project
// with no steps reports 0 so a malformed catalog entry never reads complete.
func progressPercentage(completed, total int) int {
	if total == 0 {
		return 0
	}

	return int(math.Round(100 * float64(completed) / float64(total)))
}

// unlocked applies the sequential gate: project 1 is always open; project N
// opens only when project N-1 is at 100% and every required deliverable of
// N-1 has an approved submission. Missing prior data fails closed.
func unlocked(number int, previous *dto.ProjectResponse, previousModel *models.Project, approved map[uint]struct{}) bool {
	if number == 1 {
		return true
	}

	if previous == nil || previousModel == nil || previous.Number != number-1 {
		return false
	}

	if previous.ProgressPercentage != 100 {
		return false
	}

	for _, deliverable := range previousModel.Deliverables {
		if !deliverable.IsRequired {
			continue
		}
		if _, ok := approved[deliverable.ID]; !ok {
			return false
		}
	}

	return true
}

// currentProjectID picks the project a dashboard should surface: the first
// unlocked-but-incomplete project, else the last project when everything is
// done, else the first.
func currentProjectID(projects []dto.ProjectResponse) uint {
	if len(projects) == 0 {
		return 0
	}

	for _, project := range projects {
		if project.IsUnlocked && project.ProgressPercentage < 100 {
			return project.ID
		}
	}

	allComplete := true
	for _, project := range projects {
		if !project.IsUnlocked || project.ProgressPercentage < 100 {
			allComplete = false
			break
		}
	}
	if allComplete {
		return projects[len(projects)-1].ID
	}

	return projects[0].ID
}
