package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CH4P4R/thumb-compare/internal/model"
	"github.com/CH4P4R/thumb-compare/internal/youtube"
)

type VideoRepo struct {
	pool *pgxpool.Pool
}

func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

// UpsertChannelVideos reconciles a fetched batch against a competitor's
// stored snapshots inside one transaction. Existing rows (matched by
// yt_video_id) get their mutable fields overwritten; unknown IDs become new
// rows carrying the owning competitor and the original publish timestamp.
// Rows absent from the fetch are left alone, so a channel's back catalog
// survives pagination. Running the same batch twice changes no row counts.
func (r *VideoRepo) UpsertChannelVideos(ctx context.Context, competitorID string, videos []youtube.Video) (inserted, updated int, err error) {
	if len(videos) == 0 {
		return 0, 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback(ctx)

	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.ID)
	}

	rows, err := tx.Query(ctx,
		`SELECT yt_video_id FROM competitor_videos WHERE yt_video_id = ANY($1)`, ids)
	if err != nil {
		return 0, 0, err
	}
	existing := make(map[string]struct{}, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, 0, err
		}
		existing[id] = struct{}{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, 0, err
	}

	plan := BuildUpsertPlan(existing, videos)

	batch := &pgx.Batch{}
	for _, v := range plan.Inserts {
		batch.Queue(`
			INSERT INTO competitor_videos
				(competitor_id, yt_video_id, title, thumbnail_url, published_at,
				 view_count, like_count, comment_count, fetched_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`,
			competitorID, v.ID, v.Title, v.ThumbnailURL, v.PublishedAt,
			v.ViewCount, v.LikeCount, v.CommentCount)
	}
	for _, v := range plan.Updates {
		batch.Queue(`
			UPDATE competitor_videos
			SET title = $1, thumbnail_url = $2, view_count = $3, like_count = $4,
			    comment_count = $5, fetched_at = NOW()
			WHERE yt_video_id = $6`,
			v.Title, v.ThumbnailURL, v.ViewCount, v.LikeCount, v.CommentCount, v.ID)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return 0, 0, err
		}
	}
	if err := br.Close(); err != nil {
		return 0, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, 0, err
	}
	return len(plan.Inserts), len(plan.Updates), nil
}

// ListByCompetitor returns a competitor's stored snapshots, newest first.
func (r *VideoRepo) ListByCompetitor(ctx context.Context, competitorID string, limit int) ([]model.CompetitorVideo, error) {
	query := `
		SELECT id, competitor_id, yt_video_id, title, thumbnail_url, published_at,
		       view_count, like_count, comment_count, fetched_at
		FROM competitor_videos
		WHERE competitor_id = $1
		ORDER BY published_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, competitorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var videos []model.CompetitorVideo
	for rows.Next() {
		var v model.CompetitorVideo
		err := rows.Scan(
			&v.ID, &v.CompetitorID, &v.YTVideoID, &v.Title, &v.ThumbnailURL,
			&v.PublishedAt, &v.ViewCount, &v.LikeCount, &v.CommentCount, &v.FetchedAt,
		)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// CountByCompetitor returns how many snapshots a competitor currently holds.
func (r *VideoRepo) CountByCompetitor(ctx context.Context, competitorID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM competitor_videos WHERE competitor_id = $1`,
		competitorID).Scan(&n)
	return n, err
}
