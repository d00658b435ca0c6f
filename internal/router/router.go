package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/apranova/bootcamp-api/internal/config"
	"github.com/apranova/bootcamp-api/internal/handler"
	"github.com/apranova/bootcamp-api/internal/middleware"
	"github.com/apranova/bootcamp-api/internal/models"
	"github.com/apranova/bootcamp-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	TrackHandler      *handler.TrackHandler
	ProgressHandler   *handler.ProgressHandler
	SubmissionHandler *handler.SubmissionHandler
	SeedHandler       *handler.SeedHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})

	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.TrackHandler != nil {
		tracks := api.Group("/tracks", jwtMiddleware)
		deps.TrackHandler.Register(tracks)
	}

	if deps.ProgressHandler != nil {
		progress := api.Group("/progress", jwtMiddleware)
		deps.ProgressHandler.Register(progress)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware,
			middleware.RateLimit("submissions", 30, time.Minute))
		reviewGuard := middleware.RequireRole(models.RoleTrainer, models.RoleAdmin, models.RoleSuperAdmin)
		deps.SubmissionHandler.Register(submissions, reviewGuard)
	}

	if deps.SeedHandler != nil {
		seed := api.Group("/seed")
		deps.SeedHandler.Register(seed)
	}
}
