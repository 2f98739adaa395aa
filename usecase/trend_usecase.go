package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"trend-api/domain/model"
	"trend-api/domain/region"
	"trend-api/domain/repository"
	"trend-api/infrastructure/logger"
	"trend-api/infrastructure/metrics"

	"golang.org/x/sync/errgroup"
)

// ITrendUsecase serves trend reads from the store, refreshing from providers on a miss.
type ITrendUsecase interface {
	GetTopicTrends(ctx context.Context, category model.Category, rawRegion string, tier model.AccessTier) ([]model.TopicTrend, error)
	GetTrendingVideos(ctx context.Context, rawRegion string, tier model.AccessTier) ([]model.VideoTrend, error)
	GetCombinedTrends(ctx context.Context, rawRegion string, tier model.AccessTier) ([]model.CombinedTrend, error)
}

const (
	DefaultFreshnessWindow = 3 * time.Hour
	DefaultProviderTimeout = 15 * time.Second
	DefaultVideoFetchSize  = 10
	DefaultEventTimeout    = 5 * time.Second
	// maxRelatedVideos bounds the videos attached to one combined trend.
	maxRelatedVideos = 3
)

type TrendSettings struct {
	FreshnessWindow time.Duration
	ProviderTimeout time.Duration
	VideoFetchSize  int64
	// EventTimeout bounds delivery of one refresh event, detached from the request.
	EventTimeout    time.Duration
	Limits          model.TierLimits
}

// DefaultTrendSettings returns the production window, timeout, fetch size and tier caps.
func DefaultTrendSettings() TrendSettings {
	return TrendSettings{
		FreshnessWindow: DefaultFreshnessWindow,
		ProviderTimeout: DefaultProviderTimeout,
		VideoFetchSize:  DefaultVideoFetchSize,
		EventTimeout:    DefaultEventTimeout,
		Limits:          model.DefaultTierLimits(),
	}
}

type TrendUsecase struct {
	store     repository.ITrendStore
	topics    repository.ITopicTrendFetcher
	videos    repository.IVideoTrendFetcher
	clock     func() time.Time
	settings  TrendSettings
	publisher repository.IEventPublisher // optional
	inflight  sync.WaitGroup
}

var _ ITrendUsecase = (*TrendUsecase)(nil)

func NewTrendUsecase(
	store repository.ITrendStore,
	topics repository.ITopicTrendFetcher,
	videos repository.IVideoTrendFetcher,
	clock func() time.Time,
	settings TrendSettings,
) *TrendUsecase {
	if clock == nil {
		clock = time.Now
	}
	if settings.FreshnessWindow <= 0 {
		settings.FreshnessWindow = DefaultFreshnessWindow
	}
	if settings.ProviderTimeout <= 0 {
		settings.ProviderTimeout = DefaultProviderTimeout
	}
	if settings.VideoFetchSize <= 0 {
		settings.VideoFetchSize = DefaultVideoFetchSize
	}
	if settings.EventTimeout <= 0 {
		settings.EventTimeout = DefaultEventTimeout
	}
	return &TrendUsecase{store: store, topics: topics, videos: videos, clock: clock, settings: settings}
}

// WithPublisher enables refresh events (fluent).
func (u *TrendUsecase) WithPublisher(publisher repository.IEventPublisher) *TrendUsecase {
	u.publisher = publisher
	return u
}

func (u *TrendUsecase) freshSince() time.Time {
	return u.clock().Add(-u.settings.FreshnessWindow)
}

// GetTopicTrends returns fresh topics for the category and region ordered by search volume.
// A region the provider does not serve falls back once to the default region.
func (u *TrendUsecase) GetTopicTrends(ctx context.Context, category model.Category, rawRegion string, tier model.AccessTier) ([]model.TopicTrend, error) {
	code := region.LockForTier(region.Normalize(rawRegion), tier)

	topics, err := u.topicsFor(ctx, category, code)
	if errors.Is(err, model.ErrUnsupportedRegion) && code != region.DefaultRegion {
		logger.GetLogger().
			WithField("region", code).
			WithField("fallback", region.DefaultRegion).
			Warn("Region not supported by topic provider, falling back")
		topics, err = u.topicsFor(ctx, category, region.DefaultRegion)
	}
	if err != nil {
		return nil, err
	}
	return model.Truncate(topics, u.settings.Limits.Topics(tier)), nil
}

func (u *TrendUsecase) topicsFor(ctx context.Context, category model.Category, code string) ([]model.TopicTrend, error) {
	q := model.TopicQuery{Category: category, Region: code, FreshSince: u.freshSince()}
	cached, err := u.store.QueryTopics(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("read cached topics: %w", err)
	}
	if len(cached) > 0 {
		metrics.CacheHit(metrics.KindTopics)
		return cached, nil
	}
	metrics.CacheMiss(metrics.KindTopics)

	fetchCtx, cancel := context.WithTimeout(ctx, u.settings.ProviderTimeout)
	defer cancel()
	start := time.Now()
	fetched, err := u.topics.FetchTopicTrends(fetchCtx, category, code, u.clock())
	metrics.ObserveFetch(metrics.KindTopics, start, err)
	if err != nil {
		return nil, err
	}

	if err := u.store.UpsertTopics(ctx, fetched); err != nil {
		return nil, fmt.Errorf("store topics: %w", err)
	}
	logger.GetLogger().
		WithField("category", category).
		WithField("region", code).
		WithField("count", len(fetched)).
		Info("Refreshed topic trends")
	u.publish(ctx, model.TrendEvent{
		Type:     model.EventTopicsRefreshed,
		Region:   code,
		Category: category,
		Count:    int64(len(fetched)),
	})

	refreshed, err := u.store.QueryTopics(ctx, model.TopicQuery{Category: category, Region: code, FreshSince: u.freshSince()})
	if err != nil {
		return nil, fmt.Errorf("read refreshed topics: %w", err)
	}
	return refreshed, nil
}

// GetTrendingVideos returns fresh videos for the region ordered by view count, capped per tier.
func (u *TrendUsecase) GetTrendingVideos(ctx context.Context, rawRegion string, tier model.AccessTier) ([]model.VideoTrend, error) {
	code := region.LockForTier(region.Normalize(rawRegion), tier)
	limit := u.settings.Limits.Videos(tier)

	cached, err := u.store.QueryVideos(ctx, model.VideoQuery{Region: code, FreshSince: u.freshSince(), Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("read cached videos: %w", err)
	}
	if len(cached) > 0 {
		metrics.CacheHit(metrics.KindVideos)
		return cached, nil
	}
	metrics.CacheMiss(metrics.KindVideos)

	fetchCtx, cancel := context.WithTimeout(ctx, u.settings.ProviderTimeout)
	defer cancel()
	start := time.Now()
	fetched, err := u.videos.FetchTrendingVideos(fetchCtx, code, u.settings.VideoFetchSize)
	metrics.ObserveFetch(metrics.KindVideos, start, err)
	if err != nil {
		return nil, err
	}

	if err := u.store.UpsertVideos(ctx, fetched); err != nil {
		return nil, fmt.Errorf("store videos: %w", err)
	}
	logger.GetLogger().
		WithField("region", code).
		WithField("count", len(fetched)).
		Info("Refreshed trending videos")
	u.publish(ctx, model.TrendEvent{Type: model.EventVideosRefreshed, Region: code, Count: int64(len(fetched))})

	refreshed, err := u.store.QueryVideos(ctx, model.VideoQuery{Region: code, FreshSince: u.freshSince(), Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("read refreshed videos: %w", err)
	}
	return refreshed, nil
}

// GetCombinedTrends joins whatever fresh topics (any category) and videos the store holds.
// It never calls a provider.
func (u *TrendUsecase) GetCombinedTrends(ctx context.Context, rawRegion string, tier model.AccessTier) ([]model.CombinedTrend, error) {
	code := region.LockForTier(region.Normalize(rawRegion), tier)
	since := u.freshSince()

	var (
		topics []model.TopicTrend
		videos []model.VideoTrend
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		topics, err = u.store.QueryTopics(gctx, model.TopicQuery{Region: code, FreshSince: since})
		if err != nil {
			return fmt.Errorf("read cached topics: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		videos, err = u.store.QueryVideos(gctx, model.VideoQuery{Region: code, FreshSince: since})
		if err != nil {
			return fmt.Errorf("read cached videos: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	combined := MergeTrends(topics, videos, maxRelatedVideos)
	return model.Truncate(combined, u.settings.Limits.Topics(tier)), nil
}

// publish delivers evt in the background so a slow sink never delays the response.
func (u *TrendUsecase) publish(ctx context.Context, evt model.TrendEvent) {
	if u.publisher == nil {
		return
	}
	evt.OccurredAt = u.clock().UTC()
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.settings.EventTimeout)
	u.inflight.Add(1)
	go func() {
		defer u.inflight.Done()
		defer cancel()
		if err := u.publisher.Publish(pubCtx, evt); err != nil {
			logger.GetLogger().WithField("type", evt.Type).WithField("error", err).Warn("Failed to publish trend event")
		}
	}()
}

// Wait blocks until every event handed to the publisher has been delivered or timed out.
func (u *TrendUsecase) Wait() {
	u.inflight.Wait()
}
