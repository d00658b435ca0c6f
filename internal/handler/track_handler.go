package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/apranova/bootcamp-api/internal/service"
	"github.com/apranova/bootcamp-api/internal/utils"
)

// TrackHandler serves the curriculum catalog with per-student derived state.
type TrackHandler struct {
	service service.TrackService
	logger  zerolog.Logger
}

// NewTrackHandler builds a track handler instance.
func NewTrackHandler(service service.TrackService, logger zerolog.Logger) *TrackHandler {
	return &TrackHandler{
		service: service,
		logger:  logger.With().Str("component", "track_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *TrackHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:code", h.get)
}

func (h *TrackHandler) list(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	if actor.ID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	tracks, err := h.service.ListTracks(c.Context(), actor.ID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "tracks retrieved", tracks)
}

func (h *TrackHandler) get(c *fiber.Ctx) error {
	actor := actorFromContext(c)
	if actor.ID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	code := strings.ToUpper(strings.TrimSpace(c.Params("code")))
	track, err := h.service.GetTrack(c.Context(), actor.ID, code)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "track retrieved", track)
}

func (h *TrackHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrTrackNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "track not found")
	default:
		h.logger.Error().Err(err).Msg("internal server error")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
