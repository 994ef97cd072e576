package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/CH4P4R/thumb-compare/internal/handler"
	"github.com/CH4P4R/thumb-compare/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Jobs      *handler.JobsHandler
	Project   *handler.ProjectHandler
	Thumbnail *handler.ThumbnailHandler
	Health    *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given
// Fiber app. jobSecret guards every refresh trigger.
func Setup(app *fiber.App, h *Handlers, corsOrigins, jobSecret string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))

	// Probes and metrics (no auth)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	api := app.Group("/api")
	jobAuth := middleware.NewJobAuth(jobSecret)

	// Refresh triggers: scheduled batch runs and on-demand single units
	api.Get("/jobs/competitors", h.Jobs.RefreshCompetitors, jobAuth)
	api.Get("/jobs/trending", h.Jobs.RefreshTrending, jobAuth)
	api.Get("/jobs/runs", h.Jobs.RecentRuns, jobAuth)
	api.Post("/competitors/:competitorId/refresh", h.Jobs.RefreshCompetitor, jobAuth)
	api.Post("/projects/:projectId/trending/refresh", h.Jobs.RefreshProjectTrending, jobAuth)

	// Read side
	readLimit := middleware.NewReadRateLimiter().Handler()
	api.Get("/projects/:projectId/trending", h.Project.GetTrending, readLimit)
	api.Get("/projects/:projectId/competitors", h.Project.GetCompetitors, readLimit)
	api.Get("/competitors/:competitorId/videos", h.Project.GetCompetitorVideos, readLimit)

	// Scoring collaborator
	api.Post("/thumbnails/score", h.Thumbnail.Score, middleware.NewScoreRateLimiter().Handler())
}
