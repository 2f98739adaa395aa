package usecase

import (
	"context"
	"time"

	"trend-api/domain/model"
	"trend-api/domain/repository"
	"trend-api/infrastructure/logger"
	"trend-api/infrastructure/metrics"
)

const (
	DefaultVideoRetention = 3 * time.Hour
	DefaultTopicRetention = 24 * time.Hour
)

// EvictionResult reports one sweep. A failed delete leaves its count at zero and sets its error.
type EvictionResult struct {
	VideosDeleted int64
	TopicsDeleted int64
	VideoErr      error
	TopicErr      error
}

// EvictionJob removes records whose last fetch is older than the retention horizons.
type EvictionJob struct {
	store        repository.ITrendStore
	clock        func() time.Time
	videoHorizon time.Duration
	topicHorizon time.Duration
	publisher    repository.IEventPublisher // optional
}

func NewEvictionJob(store repository.ITrendStore, clock func() time.Time, videoHorizon, topicHorizon time.Duration) *EvictionJob {
	if clock == nil {
		clock = time.Now
	}
	if videoHorizon <= 0 {
		videoHorizon = DefaultVideoRetention
	}
	if topicHorizon <= 0 {
		topicHorizon = DefaultTopicRetention
	}
	return &EvictionJob{store: store, clock: clock, videoHorizon: videoHorizon, topicHorizon: topicHorizon}
}

func (j *EvictionJob) WithPublisher(publisher repository.IEventPublisher) *EvictionJob {
	j.publisher = publisher
	return j
}

// Sweep deletes stale videos and topics. Failures are logged and counted, never returned,
// so a scheduled run cannot take the process down.
func (j *EvictionJob) Sweep(ctx context.Context) EvictionResult {
	now := j.clock()
	var res EvictionResult

	res.VideosDeleted, res.VideoErr = j.store.DeleteVideosOlderThan(ctx, now.Add(-j.videoHorizon))
	if res.VideoErr != nil {
		res.VideosDeleted = 0
		metrics.EvictionFailures.WithLabelValues(metrics.KindVideos).Inc()
		logger.GetLogger().WithField("error", res.VideoErr).Error("Failed to evict stale videos")
	} else {
		metrics.EvictedRecords.WithLabelValues(metrics.KindVideos).Add(float64(res.VideosDeleted))
	}

	res.TopicsDeleted, res.TopicErr = j.store.DeleteTopicsOlderThan(ctx, now.Add(-j.topicHorizon))
	if res.TopicErr != nil {
		res.TopicsDeleted = 0
		metrics.EvictionFailures.WithLabelValues(metrics.KindTopics).Inc()
		logger.GetLogger().WithField("error", res.TopicErr).Error("Failed to evict stale topics")
	} else {
		metrics.EvictedRecords.WithLabelValues(metrics.KindTopics).Add(float64(res.TopicsDeleted))
	}

	logger.GetLogger().
		WithField("videos", res.VideosDeleted).
		WithField("topics", res.TopicsDeleted).
		Info("Eviction sweep finished")

	if total := res.VideosDeleted + res.TopicsDeleted; total > 0 && j.publisher != nil {
		evt := model.TrendEvent{Type: model.EventTrendsEvicted, Count: total, OccurredAt: now.UTC()}
		if err := j.publisher.Publish(ctx, evt); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed to publish eviction event")
		}
	}
	return res
}

// Run adapts Sweep to the scheduler's job signature.
func (j *EvictionJob) Run(ctx context.Context) {
	j.Sweep(ctx)
}
