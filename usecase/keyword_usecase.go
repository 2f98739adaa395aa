package usecase

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"trend-api/domain/model"
	"trend-api/domain/repository"
	"trend-api/infrastructure/logger"
	"trend-api/infrastructure/metrics"
)

type IKeywordUsecase interface {
	Analyze(ctx context.Context, keyword string, tier model.AccessTier) (*model.KeywordAnalysis, error)
}

const (
	keywordSearchSize   = 25
	maxRelatedKeywords  = 10
	maxKeywordTopVideos = 5
	minCountedWordLen   = 4
)

var (
	nonWordChars = regexp.MustCompile(`[^\w#]`)
	stopWords    = map[string]struct{}{
		"the": {}, "and": {}, "that": {}, "this": {}, "with": {},
		"for": {}, "you": {}, "was": {}, "are": {}, "will": {},
	}
)

type KeywordUsecase struct {
	search  repository.IVideoSearchProvider
	cache   repository.IKeywordCache // optional
	limits  model.TierLimits
	timeout time.Duration
}

var _ IKeywordUsecase = (*KeywordUsecase)(nil)

func NewKeywordUsecase(search repository.IVideoSearchProvider, limits model.TierLimits, timeout time.Duration) *KeywordUsecase {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &KeywordUsecase{search: search, limits: limits, timeout: timeout}
}

// WithCache enables the analysis cache (fluent).
func (u *KeywordUsecase) WithCache(cache repository.IKeywordCache) *KeywordUsecase {
	u.cache = cache
	return u
}

// Analyze estimates search volume and related keywords for keyword from the top search hits.
// The full analysis is cached; the tier only narrows what is returned.
func (u *KeywordUsecase) Analyze(ctx context.Context, keyword string, tier model.AccessTier) (*model.KeywordAnalysis, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, model.ErrKeywordRequired
	}

	analysis := u.cached(ctx, keyword)
	if analysis == nil {
		var err error
		analysis, err = u.fetch(ctx, keyword)
		if err != nil {
			return nil, err
		}
		if u.cache != nil {
			if err := u.cache.Set(ctx, keyword, analysis); err != nil {
				logger.GetLogger().WithField("keyword", keyword).WithField("error", err).Warn("Failed to cache keyword analysis")
			}
		}
	}

	out := *analysis
	out.Keyword = keyword
	out.RelatedKeywords = model.Truncate(nonNilSlice(analysis.RelatedKeywords), u.limits.RelatedKeywords(tier))
	out.TopVideos = model.Truncate(nonNilSlice(analysis.TopVideos), u.limits.TopVideos(tier))
	return &out, nil
}

func (u *KeywordUsecase) cached(ctx context.Context, keyword string) *model.KeywordAnalysis {
	if u.cache == nil {
		return nil
	}
	analysis, err := u.cache.Get(ctx, keyword)
	if err != nil {
		logger.GetLogger().WithField("keyword", keyword).WithField("error", err).Warn("Keyword cache unavailable")
		return nil
	}
	if analysis != nil {
		metrics.CacheHit(metrics.KindKeyword)
	} else {
		metrics.CacheMiss(metrics.KindKeyword)
	}
	return analysis
}

func (u *KeywordUsecase) fetch(ctx context.Context, keyword string) (analysis *model.KeywordAnalysis, err error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()
	start := time.Now()
	defer func() { metrics.ObserveFetch(metrics.KindKeyword, start, err) }()

	ids, err := u.search.SearchVideoIDs(ctx, keyword, keywordSearchSize)
	if err != nil {
		return nil, fmt.Errorf("%w: search %q: %w", model.ErrFetchFailed, keyword, err)
	}
	var videos []model.SearchVideo
	if len(ids) > 0 {
		videos, err = u.search.ListVideos(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("%w: list videos: %w", model.ErrFetchFailed, err)
		}
	}
	return AnalyzeVideos(keyword, videos), nil
}

// AnalyzeVideos counts the words of titles, descriptions and tags, skipping short words,
// stop words and fragments of the keyword itself.
func AnalyzeVideos(keyword string, videos []model.SearchVideo) *model.KeywordAnalysis {
	lowerKeyword := strings.ToLower(keyword)
	counts := map[string]int{}
	var order []string
	counted := 0
	var totalViews int64

	for _, v := range videos {
		text := strings.ToLower(v.Title + " " + v.Description + " " + strings.Join(v.Tags, " "))
		for _, word := range strings.Fields(text) {
			word = nonWordChars.ReplaceAllString(word, "")
			if len(word) < minCountedWordLen || strings.Contains(lowerKeyword, word) {
				continue
			}
			if _, stop := stopWords[word]; stop {
				continue
			}
			if _, seen := counts[word]; !seen {
				order = append(order, word)
			}
			counts[word]++
			counted++
		}
		totalViews += v.ViewCount
	}

	related := make([]model.RelatedKeyword, 0, len(order))
	for _, word := range order {
		related = append(related, model.RelatedKeyword{
			Keyword:    word,
			Total:      counts[word],
			Percentage: int(math.Round(float64(counts[word]) / float64(counted) * 100)),
		})
	}
	sort.SliceStable(related, func(i, j int) bool { return related[i].Total > related[j].Total })

	var average int64
	if len(videos) > 0 {
		average = int64(math.Round(float64(totalViews) / float64(len(videos))))
	}

	top := make([]model.KeywordVideo, 0, maxKeywordTopVideos)
	for _, v := range model.Truncate(videos, maxKeywordTopVideos) {
		top = append(top, model.KeywordVideo{
			Title:        v.Title,
			VideoID:      v.VideoID,
			PublishedAt:  v.PublishedAt,
			ChannelTitle: v.ChannelTitle,
			ViewCount:    v.ViewCount,
		})
	}

	return &model.KeywordAnalysis{
		Keyword: keyword,
		SearchVolume: model.KeywordVolume{
			Total:      totalViews,
			Average:    average,
			SampleSize: len(videos),
		},
		RelatedKeywords: model.Truncate(related, maxRelatedKeywords),
		TopVideos:       top,
	}
}

func nonNilSlice[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
