package repository

import (
	"context"
	"time"

	"trend-api/domain/model"
)

// ITrendStore persists normalized trend records keyed by their natural keys.
type ITrendStore interface {
	// UpsertTopics inserts or overwrites topics keyed by (keyword, category, region).
	UpsertTopics(ctx context.Context, topics []model.TopicTrend) error
	// UpsertVideos inserts or overwrites videos keyed by video id.
	UpsertVideos(ctx context.Context, videos []model.VideoTrend) error
	// QueryTopics returns matching topics ordered by search volume, highest first.
	QueryTopics(ctx context.Context, q model.TopicQuery) ([]model.TopicTrend, error)
	// QueryVideos returns matching videos ordered by view count, highest first.
	QueryVideos(ctx context.Context, q model.VideoQuery) ([]model.VideoTrend, error)
	// DeleteVideosOlderThan removes videos last fetched before cutoff and returns the count.
	DeleteVideosOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	// DeleteTopicsOlderThan removes topics last fetched before cutoff and returns the count.
	DeleteTopicsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
