package provider

import (
	"context"
	"fmt"
	"time"

	"trend-api/domain/model"
	"trend-api/domain/repository"
	"trend-api/infrastructure/logger"

	"golang.org/x/sync/errgroup"
)

type VideoAdapter struct {
	provider    repository.IVideoTrendProvider
	clock       func() time.Time
	concurrency int
}

// NewVideoAdapter builds an adapter that loads tags with at most concurrency requests in flight.
func NewVideoAdapter(provider repository.IVideoTrendProvider, clock func() time.Time, concurrency int) repository.IVideoTrendFetcher {
	if clock == nil {
		clock = time.Now
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &VideoAdapter{provider: provider, clock: clock, concurrency: concurrency}
}

// FetchTrendingVideos lists the popularity chart for region and attaches each video's tags.
// Any failure discards the whole batch.
func (a *VideoAdapter) FetchTrendingVideos(ctx context.Context, region string, count int64) ([]model.VideoTrend, error) {
	videos, err := a.provider.ListMostPopular(ctx, region, count)
	if err != nil {
		return nil, fmt.Errorf("%w: most popular for %s: %w", model.ErrFetchFailed, region, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i := range videos {
		i := i
		g.Go(func() error {
			tags, err := a.provider.ListTags(gctx, videos[i].VideoID)
			if err != nil {
				return fmt.Errorf("tags for %s: %w", videos[i].VideoID, err)
			}
			videos[i].Tags = dedupeTags(tags)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrFetchFailed, err)
	}

	now := a.clock()
	for i := range videos {
		videos[i].Region = region
		videos[i].LastFetched = now
	}
	logger.GetLogger().WithFields(map[string]interface{}{"region": region, "count": len(videos)}).Debug("Fetched trending videos")
	return videos, nil
}

// dedupeTags drops blanks and repeats, keeping first occurrences in order. Never nil.
func dedupeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
