package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/CH4P4R/thumb-compare/internal/model"
	"github.com/CH4P4R/thumb-compare/internal/service"
)

// RunLister reads recent audit records.
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]model.RunRecord, error)
}

// JobsHandler exposes the refresh trigger endpoints and the audit-log read
// side. Authorization is applied by middleware before any of these run.
type JobsHandler struct {
	runner *service.Runner
	runs   RunLister
}

func NewJobsHandler(runner *service.Runner, runs RunLister) *JobsHandler {
	return &JobsHandler{runner: runner, runs: runs}
}

// RefreshCompetitors handles GET /api/jobs/competitors, a full
// channel-refresh batch. Per-unit failures are reported in the summary with
// a 200; only a failure to enumerate the work set produces a 500.
func (h *JobsHandler) RefreshCompetitors(c fiber.Ctx) error {
	start := time.Now()
	summary, err := h.runner.RefreshCompetitors(c.Context())
	if err != nil {
		return enumerationError(c, err)
	}

	observeRun(model.RunCompetitorRefresh, summary, time.Since(start))
	return c.JSON(summary)
}

// RefreshTrending handles GET /api/jobs/trending, a full region-refresh batch.
func (h *JobsHandler) RefreshTrending(c fiber.Ctx) error {
	start := time.Now()
	summary, err := h.runner.RefreshTrending(c.Context())
	if err != nil {
		return enumerationError(c, err)
	}

	observeRun(model.RunTrendingFetch, summary, time.Since(start))
	return c.JSON(summary)
}

// RefreshCompetitor handles POST /api/competitors/:competitorId/refresh,
// a single-channel run.
func (h *JobsHandler) RefreshCompetitor(c fiber.Ctx) error {
	start := time.Now()
	summary, err := h.runner.RefreshCompetitor(c.Context(), c.Params("competitorId"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "NOT_FOUND",
					"message": "Competitor not found",
				},
			})
		}
		return enumerationError(c, err)
	}

	observeRun(model.RunCompetitorRefresh, summary, time.Since(start))
	return c.JSON(summary)
}

// RefreshProjectTrending handles POST /api/projects/:projectId/trending/refresh.
func (h *JobsHandler) RefreshProjectTrending(c fiber.Ctx) error {
	start := time.Now()
	summary, err := h.runner.RefreshProjectTrending(c.Context(), c.Params("projectId"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": fiber.Map{
					"code":    "NOT_FOUND",
					"message": "Project not found",
				},
			})
		}
		return enumerationError(c, err)
	}

	observeRun(model.RunTrendingFetch, summary, time.Since(start))
	return c.JSON(summary)
}

// RecentRuns handles GET /api/jobs/runs, returning the newest audit records.
func (h *JobsHandler) RecentRuns(c fiber.Ctx) error {
	limit := fiber.Query[int](c, "limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	records, err := h.runs.Recent(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to list run records",
			},
		})
	}
	if records == nil {
		records = []model.RunRecord{}
	}
	return c.JSON(fiber.Map{"runs": records})
}

func enumerationError(c fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "ENUMERATION_FAILED",
			"message": err.Error(),
		},
	})
}
