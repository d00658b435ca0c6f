package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/apranova/bootcamp-api/internal/service"
	"github.com/apranova/bootcamp-api/internal/utils"
)

// SeedHandler exposes the token-gated curriculum seeding endpoint.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler builds a seed handler instance.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/curriculum", h.seedCurriculum)
}

func (h *SeedHandler) seedCurriculum(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Get("X-Seed-Token"))

	affected, err := h.service.SeedCurriculum(c.Context(), token, c.Body(), actorFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "curriculum seeded", fiber.Map{"tracks": affected})
}

func (h *SeedHandler) handleError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSeedDisabled):
		return utils.SendError(c, fiber.StatusForbidden, "seeding is disabled")
	case errors.Is(err, service.ErrSeedUnauthorized):
		return utils.SendError(c, fiber.StatusUnauthorized, "invalid seed token")
	default:
		h.logger.Warn().Err(err).Msg("curriculum seed rejected")
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
}
