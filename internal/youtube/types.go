package youtube

import "time"

// Video is a point-in-time snapshot of a video's metadata and metrics as
// returned by the Data API. CommentCount is nil when the API omits it
// (comments disabled).
type Video struct {
	ID           string
	Title        string
	ThumbnailURL string
	ChannelTitle string
	PublishedAt  time.Time
	ViewCount    int64
	LikeCount    int64
	CommentCount *int64
}

// Channel is the resolved metadata of a channel.
type Channel struct {
	ID              string
	Title           string
	ThumbnailURL    string
	SubscriberCount int64
}
