package model

import "time"

// CompetitorChannel is a tracked external channel owned by one project.
// The YouTube channel ID is immutable identity; the title may be refreshed.
type CompetitorChannel struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	YTChannelID  string    `json:"ytChannelId"`
	ChannelTitle string    `json:"channelTitle"`
	CreatedAt    time.Time `json:"createdAt"`
}
