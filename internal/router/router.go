package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Polyratings/polyratings-api/internal/config"
	"github.com/Polyratings/polyratings-api/internal/handler"
	"github.com/Polyratings/polyratings-api/internal/middleware"
	"github.com/Polyratings/polyratings-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProfessorHandler *handler.ProfessorHandler
	RatingHandler    *handler.RatingHandler
	AdminHandler     *handler.AdminHandler
	AdminMiddleware  fiber.Handler
	RedisClient      *redis.Client
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/healthz", handler.HealthCheck(cfg, deps.RedisClient))
	app.Get("/metrics", observability.MetricsHandler())

	professors := app.Group("/professors", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	if deps.ProfessorHandler != nil {
		deps.ProfessorHandler.Register(professors)
	}
	if deps.RatingHandler != nil {
		submitLimit := middleware.RateLimit("submissions", cfg.SubmissionRateMax, cfg.SubmissionRateEvery)
		ratings := app.Group("/professors", submitLimit)
		deps.RatingHandler.Register(ratings)
	}

	adminGuard := deps.AdminMiddleware
	if adminGuard == nil {
		adminGuard = func(c *fiber.Ctx) error { return c.Next() }
	}
	if deps.AdminHandler != nil {
		admin := app.Group("/admin", adminGuard)
		deps.AdminHandler.Register(admin)
	}
}
