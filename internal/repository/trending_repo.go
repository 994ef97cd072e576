package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CH4P4R/thumb-compare/internal/model"
	"github.com/CH4P4R/thumb-compare/internal/youtube"
)

type TrendingRepo struct {
	pool *pgxpool.Pool
}

func NewTrendingRepo(pool *pgxpool.Pool) *TrendingRepo {
	return &TrendingRepo{pool: pool}
}

// ReplaceSet swaps a project's trending set for a region with the freshly
// fetched one: delete everything under (project, region), insert the new
// rows, all in one transaction. Readers see either the full prior set or the
// full new set, never a mix. Trending membership is a point-in-time ranking,
// so no history is kept.
func (r *TrendingRepo) ReplaceSet(ctx context.Context, projectID, regionCode string, videos []youtube.Video) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`DELETE FROM trending_videos WHERE project_id = $1 AND region_code = $2`,
		projectID, regionCode)
	if err != nil {
		return 0, err
	}

	batch := &pgx.Batch{}
	for _, v := range videos {
		batch.Queue(`
			INSERT INTO trending_videos
				(project_id, region_code, yt_video_id, title, thumbnail_url,
				 channel_title, published_at, view_count, like_count, fetched_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
			projectID, regionCode, v.ID, v.Title, v.ThumbnailURL,
			v.ChannelTitle, v.PublishedAt, v.ViewCount, v.LikeCount)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, err
		}
	}
	if err := br.Close(); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(videos), nil
}

// ListByProject returns a project's current trending set in fetch order.
func (r *TrendingRepo) ListByProject(ctx context.Context, projectID string) ([]model.TrendingVideo, error) {
	query := `
		SELECT id, project_id, region_code, yt_video_id, title, thumbnail_url,
		       channel_title, published_at, view_count, like_count, fetched_at
		FROM trending_videos
		WHERE project_id = $1
		ORDER BY fetched_at DESC, view_count DESC`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []model.TrendingVideo
	for rows.Next() {
		var v model.TrendingVideo
		err := rows.Scan(
			&v.ID, &v.ProjectID, &v.RegionCode, &v.YTVideoID, &v.Title,
			&v.ThumbnailURL, &v.ChannelTitle, &v.PublishedAt,
			&v.ViewCount, &v.LikeCount, &v.FetchedAt,
		)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}
