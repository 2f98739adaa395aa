// Package provider adapts the raw trend providers to normalized trend records.
package provider

import (
	"context"
	"fmt"
	"time"

	"trend-api/domain/model"
	"trend-api/domain/repository"
	"trend-api/infrastructure/logger"
)

type TopicAdapter struct {
	provider repository.ITopicTrendProvider
	clock    func() time.Time
}

func NewTopicAdapter(provider repository.ITopicTrendProvider, clock func() time.Time) repository.ITopicTrendFetcher {
	if clock == nil {
		clock = time.Now
	}
	return &TopicAdapter{provider: provider, clock: clock}
}

// FetchTopicTrends requests the daily feed for the day before asOf and normalizes it.
// Undecodable payloads produce an empty result; only provider errors are returned.
func (a *TopicAdapter) FetchTopicTrends(ctx context.Context, category model.Category, region string, asOf time.Time) ([]model.TopicTrend, error) {
	raw, err := a.provider.DailyTrends(ctx, asOf.AddDate(0, 0, -1), region)
	if err != nil {
		return nil, fmt.Errorf("%w: daily trends for %s: %w", model.ErrFetchFailed, region, err)
	}

	decoded := decodePayload(raw)
	log := logger.GetLogger().WithFields(map[string]interface{}{
		"region":   region,
		"category": category,
		"kind":     decoded.Kind.String(),
		"entries":  len(decoded.Topics),
	})
	if decoded.Kind == kindUnrecognized {
		preview := raw
		if len(preview) > 200 {
			preview = preview[:200]
		}
		log.WithField("preview", preview).Warn("Unrecognized topic trends payload")
		return []model.TopicTrend{}, nil
	}
	log.Debug("Decoded topic trends payload")

	now := a.clock()
	seen := make(map[string]struct{}, len(decoded.Topics))
	topics := make([]model.TopicTrend, 0, len(decoded.Topics))
	for _, t := range decoded.Topics {
		// a keyword appearing twice keeps its first, higher ranked entry
		if _, dup := seen[t.Keyword]; dup {
			continue
		}
		seen[t.Keyword] = struct{}{}

		related := t.RelatedQueries
		if related == nil {
			related = []string{}
		}
		topics = append(topics, model.TopicTrend{
			Keyword:        t.Keyword,
			Category:       category,
			Region:         region,
			SearchVolume:   t.SearchVolume,
			RelatedQueries: related,
			LastFetched:    now,
		})
	}
	return topics, nil
}
