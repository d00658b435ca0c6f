package handler

import (
	"errors"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/apranova/bootcamp-api/internal/dto"
	"github.com/apranova/bootcamp-api/internal/models"
	"github.com/apranova/bootcamp-api/internal/service"
	"github.com/apranova/bootcamp-api/internal/utils"
)

// SubmissionHandler manages submission and review endpoints.
type SubmissionHandler struct {
	submissions service.SubmissionService
	reviews     service.ReviewService
	logger      zerolog.Logger
}

// NewSubmissionHandler builds a submission handler instance.
func NewSubmissionHandler(submissions service.SubmissionService, reviews service.ReviewService, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		reviews:     reviews,
		logger:      logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group. The review
// route carries its own role guard supplied by the caller.
func (h *SubmissionHandler) Register(router fiber.Router, reviewGuard fiber.Handler) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Post("", h.create)
	if reviewGuard == nil {
		reviewGuard = func(c *fiber.Ctx) error { return c.Next() }
	}
	router.Post("/:id/review", reviewGuard, h.review)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	if actor.ID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	filter := dto.SubmissionFilter{}
	if deliverableID, err := parseQueryUint(c, "deliverable_id"); err == nil && deliverableID != nil {
		filter.DeliverableID = deliverableID
	}
	if status := strings.ToUpper(strings.TrimSpace(c.Query("status"))); status != "" {
		filter.Status = &status
	}

	// Students only ever see their own submissions; reviewers may filter
	// by student.
	switch actor.Role {
	case models.RoleTrainer, models.RoleAdmin, models.RoleSuperAdmin:
		if studentID, err := parseQueryUint(c, "student_id"); err == nil && studentID != nil {
			filter.StudentID = studentID
		}
	default:
		studentID := actor.ID
		filter.StudentID = &studentID
	}

	submissions, err := h.submissions.List(c.Context(), filter)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) get(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	if actor.ID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	submission, err := h.submissions.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	if actor.Role == models.RoleStudent && submission.StudentID != actor.ID {
		return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
	}

	return utils.SendSuccess(c, "submission retrieved", submission)
}

func (h *SubmissionHandler) create(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	if actor.ID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.SubmissionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	var file *multipart.FileHeader
	if formFile, err := c.FormFile("file"); err == nil {
		file = formFile
	}

	submission, err := h.submissions.Create(c.Context(), actor.ID, payload, file)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission created", submission)
}

func (h *SubmissionHandler) review(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.ReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	submission, err := h.reviews.Review(c.Context(), id, actorFromContext(c), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission reviewed", submission)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrDeliverableNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "deliverable not found")
	case errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "submission not found")
	case errors.Is(err, service.ErrSubmissionURLRequired),
		errors.Is(err, service.ErrSubmissionTextRequired),
		errors.Is(err, service.ErrSubmissionFileRequired),
		errors.Is(err, service.ErrFeedbackRequired):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSubmissionConflict):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidReviewState):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
