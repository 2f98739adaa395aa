package model

import "time"

const (
	EventTopicsRefreshed = "topics.refreshed"
	EventVideosRefreshed = "videos.refreshed"
	EventTrendsEvicted   = "trends.evicted"
)

// TrendEvent announces a change in the trend store to downstream collaborators.
type TrendEvent struct {
	Type       string    `json:"type"`
	Region     string    `json:"region,omitempty"`
	Category   Category  `json:"category,omitempty"`
	Count      int64     `json:"count"`
	OccurredAt time.Time `json:"occurred_at"`
}
