package model

import "time"

// RunType identifies which pipeline produced a run.
type RunType string

const (
	RunCompetitorRefresh RunType = "competitor_refresh"
	RunTrendingFetch     RunType = "trending_fetch"
)

// RunStatus is the lifecycle state of a batch run.
type RunStatus string

const (
	RunPending         RunStatus = "pending"
	RunInProgress      RunStatus = "in_progress"
	RunCompleted       RunStatus = "completed"
	RunPartiallyFailed RunStatus = "partially_failed"
)

// UnitStatus is the outcome of a single work unit.
type UnitStatus string

const (
	UnitOK    UnitStatus = "ok"
	UnitError UnitStatus = "error"
)

// RunDetail is the structured payload of a RunRecord. It is a tagged union
// over the run types: competitor-refresh records fill CompetitorID and
// ChannelTitle, trending records fill RegionCode and ProjectCount. Error is
// set only on failed units.
type RunDetail struct {
	CompetitorID string `json:"competitorId,omitempty"`
	ChannelTitle string `json:"channelTitle,omitempty"`
	RegionCode   string `json:"regionCode,omitempty"`
	ProjectCount int    `json:"projectCount,omitempty"`
	VideosCount  int    `json:"videosCount,omitempty"`
	Error        string `json:"error,omitempty"`
}

// RunRecord is one append-only audit entry capturing a work unit's outcome.
// The pipeline never mutates or deletes these rows.
type RunRecord struct {
	ID        string     `json:"id"`
	Type      RunType    `json:"type"`
	Status    UnitStatus `json:"status"`
	Detail    RunDetail  `json:"detail"`
	CreatedAt time.Time  `json:"createdAt"`
}

// UnitResult is the per-unit entry of a trigger response.
type UnitResult struct {
	SubjectID    string     `json:"subjectId"`
	ChannelTitle string     `json:"channelTitle,omitempty"`
	RegionCode   string     `json:"regionCode,omitempty"`
	ProjectCount int        `json:"projectCount,omitempty"`
	Status       UnitStatus `json:"status"`
	ItemsCount   int        `json:"itemsCount,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// RunSummary is the JSON body returned by the job trigger endpoints.
type RunSummary struct {
	Success        bool         `json:"success"`
	Timestamp      string       `json:"timestamp"`
	Status         RunStatus    `json:"status"`
	UnitsProcessed int          `json:"unitsProcessed"`
	Results        []UnitResult `json:"results"`
}
