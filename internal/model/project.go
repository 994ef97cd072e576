package model

import "time"

// Project is a subscriber workspace. Each project tracks one trending region
// at a time.
type Project struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	RegionCode string    `json:"regionCode"`
	CreatedAt  time.Time `json:"createdAt"`
}
