package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/CH4P4R/thumb-compare/internal/model"
	"github.com/CH4P4R/thumb-compare/internal/youtube"
)

// VideoSource is the upstream platform client. Pacing is owned by the
// implementation, not by the runner.
type VideoSource interface {
	ChannelVideos(ctx context.Context, channelID string, limit int) ([]youtube.Video, error)
	TrendingVideos(ctx context.Context, regionCode string, limit int) ([]youtube.Video, error)
}

// ChannelStore enumerates and resolves tracked competitor channels. The
// YouTube channel ID is immutable; only the display title may be refreshed.
type ChannelStore interface {
	List(ctx context.Context) ([]model.CompetitorChannel, error)
	Get(ctx context.Context, competitorID string) (*model.CompetitorChannel, error)
	UpdateTitle(ctx context.Context, competitorID, title string) error
}

// SnapshotStore reconciles fetched videos into a channel's snapshot set.
type SnapshotStore interface {
	UpsertChannelVideos(ctx context.Context, competitorID string, videos []youtube.Video) (inserted, updated int, err error)
}

// ProjectStore enumerates and resolves subscriber projects.
type ProjectStore interface {
	List(ctx context.Context) ([]model.Project, error)
	Get(ctx context.Context, projectID string) (*model.Project, error)
}

// TrendingStore replaces a project's trending set for a region.
type TrendingStore interface {
	ReplaceSet(ctx context.Context, projectID, regionCode string, videos []youtube.Video) (int, error)
}

// RunLog is the append-only audit sink.
type RunLog interface {
	Append(ctx context.Context, rec model.RunRecord) error
}

// Invalidator drops read-cache entries after a reconciliation commits.
type Invalidator interface {
	InvalidateCompetitor(ctx context.Context, competitorID string) error
	InvalidateTrending(ctx context.Context, projectID string) error
}

// Runner drives refresh runs. Work units are processed strictly sequentially
// in enumeration order; a unit's failure is recorded and the run moves on.
// Only a failure to enumerate the work set itself aborts a run.
type Runner struct {
	source   VideoSource
	channels ChannelStore
	videos   SnapshotStore
	projects ProjectStore
	trending TrendingStore
	runLog   RunLog
	cache    Invalidator

	channelLimit  int
	trendingLimit int
	log           zerolog.Logger
}

// NewRunner wires a runner. cache may be nil when no read cache is in play.
func NewRunner(
	source VideoSource,
	channels ChannelStore,
	videos SnapshotStore,
	projects ProjectStore,
	trending TrendingStore,
	runLog RunLog,
	cache Invalidator,
	channelLimit, trendingLimit int,
	log zerolog.Logger,
) *Runner {
	return &Runner{
		source:        source,
		channels:      channels,
		videos:        videos,
		projects:      projects,
		trending:      trending,
		runLog:        runLog,
		cache:         cache,
		channelLimit:  channelLimit,
		trendingLimit: trendingLimit,
		log:           log,
	}
}

// RefreshCompetitors runs one channel-refresh batch over every tracked
// competitor channel. The returned error is non-nil only when the work set
// itself could not be enumerated.
func (r *Runner) RefreshCompetitors(ctx context.Context) (*model.RunSummary, error) {
	summary := newSummary()

	channels, err := r.channels.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate competitor channels: %w", err)
	}

	summary.Status = model.RunInProgress
	start := time.Now()
	r.log.Info().Int("channels", len(channels)).Msg("competitor refresh starting")

	for _, ch := range channels {
		summary.Results = append(summary.Results, r.refreshChannelUnit(ctx, ch))
	}

	finalize(summary)
	r.log.Info().
		Str("status", string(summary.Status)).
		Int("units", summary.UnitsProcessed).
		Dur("elapsed", time.Since(start)).
		Msg("competitor refresh finished")
	return summary, nil
}

// RefreshCompetitor runs a single-channel refresh, used by the per-competitor
// trigger endpoint.
func (r *Runner) RefreshCompetitor(ctx context.Context, competitorID string) (*model.RunSummary, error) {
	ch, err := r.channels.Get(ctx, competitorID)
	if err != nil {
		return nil, fmt.Errorf("resolve competitor %s: %w", competitorID, err)
	}

	summary := newSummary()
	summary.Status = model.RunInProgress
	summary.Results = append(summary.Results, r.refreshChannelUnit(ctx, *ch))
	finalize(summary)
	return summary, nil
}

// refreshChannelUnit processes one channel work unit: fetch, reconcile,
// audit. The unit's outcome is decided by the fetch and the reconciliation
// alone; audit-log and cache failures are logged but never change it.
func (r *Runner) refreshChannelUnit(ctx context.Context, ch model.CompetitorChannel) model.UnitResult {
	videos, err := r.source.ChannelVideos(ctx, ch.YTChannelID, r.channelLimit)
	if err != nil {
		return r.failChannelUnit(ctx, ch, err)
	}

	inserted, updated, err := r.videos.UpsertChannelVideos(ctx, ch.ID, videos)
	if err != nil {
		return r.failChannelUnit(ctx, ch, err)
	}

	// The fetch carries the channel's current display title; pick up renames.
	// Best-effort, like the cache invalidation below.
	if len(videos) > 0 && videos[0].ChannelTitle != "" && videos[0].ChannelTitle != ch.ChannelTitle {
		if err := r.channels.UpdateTitle(ctx, ch.ID, videos[0].ChannelTitle); err != nil {
			r.log.Warn().Err(err).Str("competitor", ch.ID).Msg("channel title refresh failed")
		} else {
			ch.ChannelTitle = videos[0].ChannelTitle
		}
	}

	if r.cache != nil {
		if err := r.cache.InvalidateCompetitor(ctx, ch.ID); err != nil {
			r.log.Warn().Err(err).Str("competitor", ch.ID).Msg("cache invalidation failed")
		}
	}

	r.appendRecord(ctx, model.RunRecord{
		Type:   model.RunCompetitorRefresh,
		Status: model.UnitOK,
		Detail: model.RunDetail{
			CompetitorID: ch.ID,
			ChannelTitle: ch.ChannelTitle,
			VideosCount:  len(videos),
		},
	})

	r.log.Debug().
		Str("competitor", ch.ID).
		Str("channel", ch.ChannelTitle).
		Int("fetched", len(videos)).
		Int("inserted", inserted).
		Int("updated", updated).
		Msg("channel reconciled")

	return model.UnitResult{
		SubjectID:    ch.ID,
		ChannelTitle: ch.ChannelTitle,
		Status:       model.UnitOK,
		ItemsCount:   len(videos),
	}
}

func (r *Runner) failChannelUnit(ctx context.Context, ch model.CompetitorChannel, err error) model.UnitResult {
	r.log.Error().Err(err).
		Str("competitor", ch.ID).
		Str("channel", ch.ChannelTitle).
		Msg("channel refresh failed")

	r.appendRecord(ctx, model.RunRecord{
		Type:   model.RunCompetitorRefresh,
		Status: model.UnitError,
		Detail: model.RunDetail{
			CompetitorID: ch.ID,
			ChannelTitle: ch.ChannelTitle,
			Error:        err.Error(),
		},
	})

	return model.UnitResult{
		SubjectID:    ch.ID,
		ChannelTitle: ch.ChannelTitle,
		Status:       model.UnitError,
		Error:        err.Error(),
	}
}

// RefreshTrending runs one region-refresh batch. Projects are grouped by
// region so a region with N subscribers costs one upstream fetch and N
// replace-set reconciliations.
func (r *Runner) RefreshTrending(ctx context.Context) (*model.RunSummary, error) {
	summary := newSummary()

	projects, err := r.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate projects: %w", err)
	}

	groups := GroupByRegion(projects)
	summary.Status = model.RunInProgress
	start := time.Now()
	r.log.Info().
		Int("projects", len(projects)).
		Int("regions", len(groups)).
		Msg("trending refresh starting")

	for _, group := range groups {
		summary.Results = append(summary.Results, r.refreshRegionUnit(ctx, group))
	}

	finalize(summary)
	r.log.Info().
		Str("status", string(summary.Status)).
		Int("units", summary.UnitsProcessed).
		Dur("elapsed", time.Since(start)).
		Msg("trending refresh finished")
	return summary, nil
}

// RefreshProjectTrending refreshes a single project's trending set.
func (r *Runner) RefreshProjectTrending(ctx context.Context, projectID string) (*model.RunSummary, error) {
	p, err := r.projects.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("resolve project %s: %w", projectID, err)
	}

	summary := newSummary()
	summary.Status = model.RunInProgress
	group := RegionGroup{RegionCode: p.RegionCode, ProjectIDs: []string{p.ID}}
	summary.Results = append(summary.Results, r.refreshRegionUnit(ctx, group))
	finalize(summary)
	return summary, nil
}

// refreshRegionUnit processes one region group: a single upstream fetch, then
// one replace-set per subscribed project. Replaces commit independently, so a
// failure partway leaves earlier projects on the fresh set and later ones on
// their prior set, each internally consistent.
func (r *Runner) refreshRegionUnit(ctx context.Context, group RegionGroup) model.UnitResult {
	videos, err := r.source.TrendingVideos(ctx, group.RegionCode, r.trendingLimit)
	if err != nil {
		return r.failRegionUnit(ctx, group, err)
	}

	for _, projectID := range group.ProjectIDs {
		if _, err := r.trending.ReplaceSet(ctx, projectID, group.RegionCode, videos); err != nil {
			return r.failRegionUnit(ctx, group, fmt.Errorf("replace set for project %s: %w", projectID, err))
		}
		if r.cache != nil {
			if err := r.cache.InvalidateTrending(ctx, projectID); err != nil {
				r.log.Warn().Err(err).Str("project", projectID).Msg("cache invalidation failed")
			}
		}
	}

	r.appendRecord(ctx, model.RunRecord{
		Type:   model.RunTrendingFetch,
		Status: model.UnitOK,
		Detail: model.RunDetail{
			RegionCode:   group.RegionCode,
			ProjectCount: len(group.ProjectIDs),
			VideosCount:  len(videos),
		},
	})

	r.log.Debug().
		Str("region", group.RegionCode).
		Int("projects", len(group.ProjectIDs)).
		Int("videos", len(videos)).
		Msg("region reconciled")

	return model.UnitResult{
		SubjectID:    group.RegionCode,
		RegionCode:   group.RegionCode,
		ProjectCount: len(group.ProjectIDs),
		Status:       model.UnitOK,
		ItemsCount:   len(videos),
	}
}

func (r *Runner) failRegionUnit(ctx context.Context, group RegionGroup, err error) model.UnitResult {
	r.log.Error().Err(err).Str("region", group.RegionCode).Msg("trending refresh failed")

	r.appendRecord(ctx, model.RunRecord{
		Type:   model.RunTrendingFetch,
		Status: model.UnitError,
		Detail: model.RunDetail{
			RegionCode:   group.RegionCode,
			ProjectCount: len(group.ProjectIDs),
			Error:        err.Error(),
		},
	})

	return model.UnitResult{
		SubjectID:    group.RegionCode,
		RegionCode:   group.RegionCode,
		ProjectCount: len(group.ProjectIDs),
		Status:       model.UnitError,
		Error:        err.Error(),
	}
}

// appendRecord writes an audit record best-effort. The reconciliation has
// already committed by the time this runs, so a failed write is logged and
// dropped rather than surfaced into the unit's outcome.
func (r *Runner) appendRecord(ctx context.Context, rec model.RunRecord) {
	if err := r.runLog.Append(ctx, rec); err != nil {
		r.log.Warn().Err(err).
			Str("type", string(rec.Type)).
			Str("status", string(rec.Status)).
			Msg("audit record write failed")
	}
}

func newSummary() *model.RunSummary {
	return &model.RunSummary{
		Status:  model.RunPending,
		Results: []model.UnitResult{},
	}
}

// finalize moves a summary to its terminal state: Completed when every unit
// succeeded, PartiallyFailed otherwise.
func finalize(s *model.RunSummary) {
	s.Success = true
	s.Timestamp = time.Now().UTC().Format(time.RFC3339)
	s.UnitsProcessed = len(s.Results)

	s.Status = model.RunCompleted
	for _, res := range s.Results {
		if res.Status == model.UnitError {
			s.Status = model.RunPartiallyFailed
			break
		}
	}
}
