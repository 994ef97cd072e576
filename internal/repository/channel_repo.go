package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CH4P4R/thumb-compare/internal/model"
)

type ChannelRepo struct {
	pool *pgxpool.Pool
}

func NewChannelRepo(pool *pgxpool.Pool) *ChannelRepo {
	return &ChannelRepo{pool: pool}
}

// List returns every tracked competitor channel across all projects. This is
// the competitor run's work-set enumeration.
func (r *ChannelRepo) List(ctx context.Context) ([]model.CompetitorChannel, error) {
	query := `
		SELECT id, project_id, yt_channel_id, channel_title, created_at
		FROM competitor_channels
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []model.CompetitorChannel
	for rows.Next() {
		var ch model.CompetitorChannel
		err := rows.Scan(&ch.ID, &ch.ProjectID, &ch.YTChannelID, &ch.ChannelTitle, &ch.CreatedAt)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// ListByProject returns a project's competitor channels.
func (r *ChannelRepo) ListByProject(ctx context.Context, projectID string) ([]model.CompetitorChannel, error) {
	query := `
		SELECT id, project_id, yt_channel_id, channel_title, created_at
		FROM competitor_channels
		WHERE project_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []model.CompetitorChannel
	for rows.Next() {
		var ch model.CompetitorChannel
		err := rows.Scan(&ch.ID, &ch.ProjectID, &ch.YTChannelID, &ch.ChannelTitle, &ch.CreatedAt)
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

// Get returns a single competitor channel by ID.
func (r *ChannelRepo) Get(ctx context.Context, competitorID string) (*model.CompetitorChannel, error) {
	query := `
		SELECT id, project_id, yt_channel_id, channel_title, created_at
		FROM competitor_channels
		WHERE id = $1`

	var ch model.CompetitorChannel
	err := r.pool.QueryRow(ctx, query, competitorID).Scan(
		&ch.ID, &ch.ProjectID, &ch.YTChannelID, &ch.ChannelTitle, &ch.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// UpdateTitle refreshes a channel's display title. Identity (the YouTube
// channel ID) is immutable.
func (r *ChannelRepo) UpdateTitle(ctx context.Context, competitorID, title string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE competitor_channels SET channel_title = $1 WHERE id = $2`,
		title, competitorID)
	return err
}
