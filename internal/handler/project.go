package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5"

	"github.com/CH4P4R/thumb-compare/internal/middleware"
	"github.com/CH4P4R/thumb-compare/internal/model"
	"github.com/CH4P4R/thumb-compare/internal/repository"
	"github.com/CH4P4R/thumb-compare/internal/service"
)

// ProjectHandler serves the read side of the synced data: a project's
// trending set and its competitor channels with stored snapshots.
type ProjectHandler struct {
	projects *repository.ProjectRepo
	channels *repository.ChannelRepo
	videos   *repository.VideoRepo
	trending *repository.TrendingRepo
	cache    *service.CacheService
}

func NewProjectHandler(
	projects *repository.ProjectRepo,
	channels *repository.ChannelRepo,
	videos *repository.VideoRepo,
	trending *repository.TrendingRepo,
	cache *service.CacheService,
) *ProjectHandler {
	return &ProjectHandler{
		projects: projects,
		channels: channels,
		videos:   videos,
		trending: trending,
		cache:    cache,
	}
}

type trendingResponse struct {
	ProjectID  string                `json:"projectId"`
	RegionCode string                `json:"regionCode"`
	Videos     []model.TrendingVideo `json:"videos"`
}

// GetTrending handles GET /api/projects/:projectId/trending. Cache-aside:
// Redis first, then the store; refresh runs invalidate the key on commit.
func (h *ProjectHandler) GetTrending(c fiber.Ctx) error {
	projectID := c.Params("projectId")

	if h.cache != nil {
		cached, err := h.cache.GetTrending(c.Context(), projectID)
		if err != nil {
			middleware.Logger.Warn().Err(err).Msg("trending cache read failed")
		} else if cached != nil {
			Metrics.CacheHits.Inc()
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(cached)
		} else {
			Metrics.CacheMisses.Inc()
		}
	}

	project, err := h.projects.Get(c.Context(), projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(c, "Project not found")
		}
		return internalError(c, "Failed to load project")
	}

	videos, err := h.trending.ListByProject(c.Context(), projectID)
	if err != nil {
		return internalError(c, "Failed to load trending videos")
	}
	if videos == nil {
		videos = []model.TrendingVideo{}
	}

	resp := trendingResponse{
		ProjectID:  project.ID,
		RegionCode: project.RegionCode,
		Videos:     videos,
	}

	if h.cache != nil {
		if err := h.cache.SetTrending(c.Context(), projectID, resp); err != nil {
			middleware.Logger.Warn().Err(err).Msg("trending cache write failed")
		}
	}

	return c.JSON(resp)
}

type competitorEntry struct {
	model.CompetitorChannel
	VideoCount int `json:"videoCount"`
}

// GetCompetitors handles GET /api/projects/:projectId/competitors.
func (h *ProjectHandler) GetCompetitors(c fiber.Ctx) error {
	projectID := c.Params("projectId")

	if _, err := h.projects.Get(c.Context(), projectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(c, "Project not found")
		}
		return internalError(c, "Failed to load project")
	}

	channels, err := h.channels.ListByProject(c.Context(), projectID)
	if err != nil {
		return internalError(c, "Failed to load competitors")
	}

	entries := make([]competitorEntry, 0, len(channels))
	for _, ch := range channels {
		count, err := h.videos.CountByCompetitor(c.Context(), ch.ID)
		if err != nil {
			return internalError(c, "Failed to count snapshots")
		}
		entries = append(entries, competitorEntry{CompetitorChannel: ch, VideoCount: count})
	}

	return c.JSON(fiber.Map{"competitors": entries})
}

type competitorVideosResponse struct {
	CompetitorID string                  `json:"competitorId"`
	ChannelTitle string                  `json:"channelTitle"`
	Videos       []model.CompetitorVideo `json:"videos"`
}

// GetCompetitorVideos handles GET /api/competitors/:competitorId/videos.
func (h *ProjectHandler) GetCompetitorVideos(c fiber.Ctx) error {
	competitorID := c.Params("competitorId")

	if h.cache != nil {
		cached, err := h.cache.GetCompetitor(c.Context(), competitorID)
		if err != nil {
			middleware.Logger.Warn().Err(err).Msg("competitor cache read failed")
		} else if cached != nil {
			Metrics.CacheHits.Inc()
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(cached)
		} else {
			Metrics.CacheMisses.Inc()
		}
	}

	ch, err := h.channels.Get(c.Context(), competitorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notFound(c, "Competitor not found")
		}
		return internalError(c, "Failed to load competitor")
	}

	videos, err := h.videos.ListByCompetitor(c.Context(), competitorID, 50)
	if err != nil {
		return internalError(c, "Failed to load snapshots")
	}
	if videos == nil {
		videos = []model.CompetitorVideo{}
	}

	resp := competitorVideosResponse{
		CompetitorID: ch.ID,
		ChannelTitle: ch.ChannelTitle,
		Videos:       videos,
	}

	if h.cache != nil {
		if err := h.cache.SetCompetitor(c.Context(), competitorID, resp); err != nil {
			middleware.Logger.Warn().Err(err).Msg("competitor cache write failed")
		}
	}

	return c.JSON(resp)
}

func notFound(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": fiber.Map{"code": "NOT_FOUND", "message": msg},
	})
}

func internalError(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{"code": "INTERNAL_ERROR", "message": msg},
	})
}
