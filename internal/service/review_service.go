package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/apranova/bootcamp-api/internal/dto"
	"github.com/apranova/bootcamp-api/internal/models"
	"github.com/apranova/bootcamp-api/internal/observability"
	"github.com/apranova/bootcamp-api/internal/repository"
)

// ReviewService applies trainer decisions to pending submissions. The only
// legal transitions are PENDING -> APPROVED and PENDING -> REJECTED; the
// write is a conditional update on the current status so two racing
// reviewers cannot both decide the same submission.
type ReviewService interface {
	Review(ctx context.Context, submissionID uint, reviewer Actor, payload dto.ReviewRequest) (dto.SubmissionResponse, error)
}

type reviewService struct {
	submissions repository.SubmissionRepository
	validator   *validator.Validate
	activity    ActivityRecorder
	sanitizer   *bluemonday.Policy
	cache       *TrackViewCache
	logger      zerolog.Logger
	now         func() time.Time
}

// NewReviewService constructs the review service.
func NewReviewService(submissions repository.SubmissionRepository, validate *validator.Validate, activity ActivityRecorder, cache *TrackViewCache, logger zerolog.Logger) ReviewService {
	return &reviewService{
		submissions: submissions,
		validator:   validate,
		activity:    activity,
		sanitizer:   bluemonday.StrictPolicy(),
		cache:       cache,
		logger:      logger.With().Str("component", "review_service").Logger(),
		now:         time.Now,
	}
}

func (s *reviewService) Review(ctx context.Context, submissionID uint, reviewer Actor, payload dto.ReviewRequest) (dto.SubmissionResponse, error) {
	tracer := otel.Tracer("github.com/apranova/bootcamp-api/internal/service/review")
	ctx, span := tracer.Start(ctx, "review.decide")
	span.SetAttributes(
		attribute.Int64("review.submission_id", int64(submissionID)),
		attribute.Int64("review.reviewer_id", int64(reviewer.ID)),
		attribute.String("review.decision", payload.Decision),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.SubmissionResponse{}, err
	}

	feedback := strings.TrimSpace(payload.Feedback)
	if !payload.Approved() && feedback == "" {
		span.SetStatus(codes.Error, "feedback_required")
		return dto.SubmissionResponse{}, ErrFeedbackRequired
	}
	feedback = s.sanitizer.Sanitize(feedback)

	submission, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "submission_not_found")
			return dto.SubmissionResponse{}, ErrSubmissionNotFound
		}
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	if submission.IsDecided() {
		span.SetStatus(codes.Error, "already_decided")
		return dto.SubmissionResponse{}, ErrInvalidReviewState
	}

	status := models.SubmissionStatusRejected
	if payload.Approved() {
		status = models.SubmissionStatusApproved
	}

	decision := repository.SubmissionDecision{
		Status:     status,
		Feedback:   feedback,
		Grade:      payload.Grade,
		ReviewedBy: reviewer.ID,
		ReviewedAt: s.now(),
	}

	if err := s.submissions.DecideIfPending(ctx, submissionID, decision); err != nil {
		if errors.Is(err, repository.ErrNoRowsUpdated) {
			// Lost the race: another reviewer decided first.
			span.SetStatus(codes.Error, "decision_race_lost")
			return dto.SubmissionResponse{}, ErrInvalidReviewState
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "decision_write_failed")
		return dto.SubmissionResponse{}, err
	}

	decided, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		span.RecordError(err)
		return dto.SubmissionResponse{}, err
	}

	observability.ReviewDecisions().WithLabelValues(strings.ToLower(status)).Inc()
	s.cache.Invalidate(ctx, decided.StudentID)

	if s.activity != nil {
		_ = s.activity.Record(ctx, ActivityEntry{
			ActorID:    reviewer.ID,
			ActorRole:  reviewer.Role,
			Action:     "submission." + strings.ToLower(status),
			EntityType: "submission",
			EntityID:   &decided.ID,
			Metadata: map[string]interface{}{
				"student_id":     decided.StudentID,
				"deliverable_id": decided.DeliverableID,
			},
		})
	}

	s.logger.Info().
		Uint("submission_id", decided.ID).
		Uint("reviewer_id", reviewer.ID).
		Str("status", decided.Status).
		Msg("submission reviewed")

	return dto.NewSubmissionResponse(decided), nil
}
