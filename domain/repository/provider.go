package repository

import (
	"context"
	"time"

	"trend-api/domain/model"
)

// ITopicTrendProvider returns the raw daily trending-searches payload for a region.
// The payload shape is not guaranteed.
type ITopicTrendProvider interface {
	DailyTrends(ctx context.Context, date time.Time, region string) (string, error)
}

// IVideoTrendProvider exposes the video platform's popularity chart.
type IVideoTrendProvider interface {
	ListMostPopular(ctx context.Context, region string, count int64) ([]model.VideoTrend, error)
	ListTags(ctx context.Context, videoID string) ([]string, error)
}

// IVideoSearchProvider backs keyword analysis.
type IVideoSearchProvider interface {
	SearchVideoIDs(ctx context.Context, query string, maxResults int64) ([]string, error)
	ListVideos(ctx context.Context, ids []string) ([]model.SearchVideo, error)
}

// ITopicTrendFetcher turns a provider payload into normalized topic records.
type ITopicTrendFetcher interface {
	FetchTopicTrends(ctx context.Context, category model.Category, region string, asOf time.Time) ([]model.TopicTrend, error)
}

// IVideoTrendFetcher returns normalized trending videos with their tags. It is all-or-nothing.
type IVideoTrendFetcher interface {
	FetchTrendingVideos(ctx context.Context, region string, count int64) ([]model.VideoTrend, error)
}
