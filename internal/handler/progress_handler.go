package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/apranova/bootcamp-api/internal/dto"
	"github.com/apranova/bootcamp-api/internal/service"
	"github.com/apranova/bootcamp-api/internal/utils"
)

// ProgressHandler manages the student progress ledger endpoints.
type ProgressHandler struct {
	service service.ProgressService
	logger  zerolog.Logger
}

// NewProgressHandler builds a progress handler instance.
func NewProgressHandler(service service.ProgressService, logger zerolog.Logger) *ProgressHandler {
	return &ProgressHandler{
		service: service,
		logger:  logger.With().Str("component", "progress_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *ProgressHandler) Register(router fiber.Router) {
	router.Post("/steps/complete", h.markComplete)
	router.Post("/steps/incomplete", h.markIncomplete)
	router.Post("/projects/:id/start", h.startProject)
}

func (h *ProgressHandler) markComplete(c *fiber.Ctx) error {
	return h.toggle(c, true)
}

func (h *ProgressHandler) markIncomplete(c *fiber.Ctx) error {
	return h.toggle(c, false)
}

func (h *ProgressHandler) toggle(c *fiber.Ctx, completed bool) error {
	actor := actorFromContext(c)
	if actor.ID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.StepToggleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	var (
		progress dto.ProgressResponse
		err      error
	)
	if completed {
		progress, err = h.service.MarkStepComplete(c.Context(), actor.ID, payload)
	} else {
		progress, err = h.service.MarkStepIncomplete(c.Context(), actor.ID, payload)
	}
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "progress updated", progress)
}

func (h *ProgressHandler) startProject(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	if actor.ID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	projectID, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	progress, err := h.service.StartProject(c.Context(), actor.ID, projectID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "project started", progress)
}

func (h *ProgressHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrStepNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "step not found")
	case errors.Is(err, service.ErrProjectNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "project not found")
	case errors.Is(err, service.ErrStepProjectMismatch):
		return utils.SendError(c, fiber.StatusBadRequest, "step does not belong to project")
	case errors.Is(err, service.ErrProjectLocked):
		return utils.SendError(c, fiber.StatusForbidden, "project is locked")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
