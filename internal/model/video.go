package model

import "time"

// CompetitorVideo is a channel-scoped video snapshot. Exactly one row exists
// per yt_video_id; refreshes update the mutable metric fields and FetchedAt
// in place rather than inserting a second row.
type CompetitorVideo struct {
	ID           string    `json:"id"`
	CompetitorID string    `json:"competitorId"`
	YTVideoID    string    `json:"ytVideoId"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	PublishedAt  time.Time `json:"publishedAt"`
	ViewCount    int64     `json:"viewCount"`
	LikeCount    int64     `json:"likeCount"`
	CommentCount *int64    `json:"commentCount,omitempty"`
	FetchedAt    time.Time `json:"fetchedAt"`
}

// TrendingVideo is one row of a (project, region) trending set. The whole set
// is replaced atomically on every refresh; rows carry no channel owner, only
// the display channel title.
type TrendingVideo struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	RegionCode   string    `json:"regionCode"`
	YTVideoID    string    `json:"ytVideoId"`
	Title        string    `json:"title"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	ChannelTitle string    `json:"channelTitle"`
	PublishedAt  time.Time `json:"publishedAt"`
	ViewCount    int64     `json:"viewCount"`
	LikeCount    int64     `json:"likeCount"`
	FetchedAt    time.Time `json:"fetchedAt"`
}
