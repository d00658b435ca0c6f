package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/apranova/bootcamp-api/internal/dto"
	"github.com/apranova/bootcamp-api/internal/models"
	"github.com/apranova/bootcamp-api/internal/repository"
)

// FileUploader stores an uploaded artifact and returns its public URL.
type FileUploader interface {
	Upload(ctx context.Context, name string, reader io.Reader) (string, error)
}

// SubmissionService handles submission creation and resubmission. A new row
// is created every time; decided submissions are never mutated, which keeps
// the full review history as an audit trail.
type SubmissionService interface {
	List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error)
	Get(ctx context.Context, id uint) (dto.SubmissionResponse, error)
	Create(ctx context.Context, studentID uint, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error)
}

type submissionService struct {
	submissions repository.SubmissionRepository
	tracks      repository.TrackRepository
	validator   *validator.Validate
	uploader    FileUploader
	sanitizer   *bluemonday.Policy
	cache       *TrackViewCache
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(submissions repository.SubmissionRepository, tracks repository.TrackRepository, validate *validator.Validate, uploader FileUploader, cache *TrackViewCache, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		submissions: submissions,
		tracks:      tracks,
		validator:   validate,
		uploader:    uploader,
		sanitizer:   bluemonday.StrictPolicy(),
		cache:       cache,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) List(ctx context.Context, filter dto.SubmissionFilter) ([]dto.SubmissionResponse, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, err
	}

	repoFilter := repository.SubmissionFilter{
		StudentID:     filter.StudentID,
		DeliverableID: filter.DeliverableID,
		Status:        filter.Status,
	}

	submissions, err := s.submissions.List(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	return dto.NewSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) Get(ctx context.Context, id uint) (dto.SubmissionResponse, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	return dto.NewSubmissionResponse(submission), nil
}

// Create records a submission with status PENDING. It covers both the first
// submission for a deliverable and a resubmission after rejection: creation
// is refused while the latest submission is PENDING or APPROVED.
func (s *submissionService) Create(ctx context.Context, studentID uint, payload dto.SubmissionCreateRequest, file *multipart.FileHeader) (dto.SubmissionResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmissionResponse{}, err
	}

	deliverable, err := s.tracks.GetDeliverable(ctx, payload.DeliverableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmissionResponse{}, ErrDeliverableNotFound
		}
		return dto.SubmissionResponse{}, err
	}

	latest, err := s.submissions.GetLatest(ctx, studentID, deliverable.ID)
	switch {
	case err == nil:
		if latest.Status != models.SubmissionStatusRejected {
			return dto.SubmissionResponse{}, ErrSubmissionConflict
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// first submission for this deliverable
	default:
		return dto.SubmissionResponse{}, err
	}

	submission := models.Submission{
		StudentID:     studentID,
		DeliverableID: deliverable.ID,
		Status:        models.SubmissionStatusPending,
		SubmittedAt:   s.now(),
	}

	switch {
	case deliverable.RequiresURL():
		if strings.TrimSpace(payload.SubmissionURL) == "" {
			return dto.SubmissionResponse{}, ErrSubmissionURLRequired
		}
		submission.SubmissionURL = strings.TrimSpace(payload.SubmissionURL)
	case deliverable.DeliverableType == models.DeliverableTypeText:
		if strings.TrimSpace(payload.SubmissionText) == "" {
			return dto.SubmissionResponse{}, ErrSubmissionTextRequired
		}
		submission.SubmissionText = s.sanitizer.Sanitize(payload.SubmissionText)
	case deliverable.DeliverableType == models.DeliverableTypeFile:
		fileURL, err := s.storeFile(ctx, file)
		if err != nil {
			return dto.SubmissionResponse{}, err
		}
		submission.FileURL = fileURL
	default:
		return dto.SubmissionResponse{}, fmt.Errorf("unknown deliverable type %q", deliverable.DeliverableType)
	}

	if err := s.submissions.Create(ctx, &submission); err != nil {
		return dto.SubmissionResponse{}, err
	}

	created, err := s.submissions.GetByID(ctx, submission.ID)
	if err != nil {
		return dto.SubmissionResponse{}, err
	}

	s.cache.Invalidate(ctx, studentID)

	s.logger.Info().
		Uint("submission_id", created.ID).
		Uint("student_id", studentID).
		Uint("deliverable_id", deliverable.ID).
		Msg("submission created")

	return dto.NewSubmissionResponse(created), nil
}

func (s *submissionService) storeFile(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if file == nil {
		return "", ErrSubmissionFileRequired
	}

	if err := validateFileType(file); err != nil {
		return "", err
	}

	reader, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	uploadURL, err := s.uploader.Upload(ctx, file.Filename, reader)
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	return uploadURL, nil
}

func validateFileType(file *multipart.FileHeader) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer reader.Close()

	mime, err := mimetype.DetectReader(reader)
	if err != nil {
		return fmt.Errorf("failed to detect file type: %w", err)
	}

	allowed := []string{"application/pdf", "application/zip", "application/x-zip-compressed", "text/plain"}
	for _, a := range allowed {
		if mime.Is(a) {
			return nil
		}
	}

	return fmt.Errorf("unsupported file type: %s", mime.String())
}
