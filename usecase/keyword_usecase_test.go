package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"trend-api/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleSearchVideos() []model.SearchVideo {
	published := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return []model.SearchVideo{
		{VideoID: "a", Title: "Golang tutorial for beginners", Description: "Learn golang concurrency!", Tags: []string{"Tutorial", "#coding"}, ViewCount: 1000, ChannelTitle: "ch1", PublishedAt: published},
		{VideoID: "b", Title: "Concurrency patterns", Description: "with the tutorial", ViewCount: 500, ChannelTitle: "ch2", PublishedAt: published},
		{VideoID: "c", Title: "Go tips", Description: "that will do for you", Tags: []string{"tips"}, ViewCount: 1, ChannelTitle: "ch3", PublishedAt: published},
	}
}

func TestAnalyzeVideos(t *testing.T) {
	got := AnalyzeVideos("Golang", sampleSearchVideos())

	assert.Equal(t, "Golang", got.Keyword)
	assert.Equal(t, int64(1501), got.SearchVolume.Total)
	assert.Equal(t, int64(500), got.SearchVolume.Average)
	assert.Equal(t, 3, got.SearchVolume.SampleSize)

	// counted words: tutorial x3, concurrency x2, beginners, learn, #coding, patterns, tips x2
	require.NotEmpty(t, got.RelatedKeywords)
	assert.Equal(t, model.RelatedKeyword{Keyword: "tutorial", Total: 3, Percentage: 27}, got.RelatedKeywords[0])
	assert.Equal(t, model.RelatedKeyword{Keyword: "concurrency", Total: 2, Percentage: 18}, got.RelatedKeywords[1])
	assert.Equal(t, model.RelatedKeyword{Keyword: "tips", Total: 2, Percentage: 18}, got.RelatedKeywords[2])
	assert.Equal(t, "beginners", got.RelatedKeywords[3].Keyword)

	for _, rk := range got.RelatedKeywords {
		assert.NotEqual(t, "golang", rk.Keyword)
		assert.NotEqual(t, "with", rk.Keyword)
		assert.NotEqual(t, "that", rk.Keyword)
		assert.Greater(t, len(rk.Keyword), 3)
	}
	assert.Contains(t, got.RelatedKeywords, model.RelatedKeyword{Keyword: "#coding", Total: 1, Percentage: 9})

	require.Len(t, got.TopVideos, 3)
	assert.Equal(t, "a", got.TopVideos[0].VideoID)
	assert.Equal(t, "ch1", got.TopVideos[0].ChannelTitle)
}

func TestAnalyzeVideos_NoResults(t *testing.T) {
	got := AnalyzeVideos("nothing", nil)
	assert.Equal(t, int64(0), got.SearchVolume.Average)
	assert.Equal(t, 0, got.SearchVolume.SampleSize)
	assert.NotNil(t, got.RelatedKeywords)
	assert.NotNil(t, got.TopVideos)
}

func TestKeywordUsecase_RequiresKeyword(t *testing.T) {
	uc := NewKeywordUsecase(new(MockSearchProvider), model.DefaultTierLimits(), 0)
	_, err := uc.Analyze(context.Background(), "   ", model.TierPaid)
	assert.ErrorIs(t, err, model.ErrKeywordRequired)
}

func TestKeywordUsecase_FetchesCachesAndCapsPerTier(t *testing.T) {
	search := new(MockSearchProvider)
	cache := new(MockKeywordCache)
	uc := NewKeywordUsecase(search, model.DefaultTierLimits(), time.Second).WithCache(cache)

	ids := []string{"a", "b", "c"}
	search.On("SearchVideoIDs", hasDeadline, "golang", int64(25)).Return(ids, nil).Once()
	search.On("ListVideos", mock.Anything, ids).Return(sampleSearchVideos(), nil).Once()
	cache.On("Get", mock.Anything, "golang").Return(nil, nil).Once()
	cache.On("Set", mock.Anything, "golang", mock.MatchedBy(func(a *model.KeywordAnalysis) bool {
		return len(a.TopVideos) == 3 && len(a.RelatedKeywords) > 3
	})).Return(nil).Once()

	free, err := uc.Analyze(context.Background(), " golang ", model.TierFree)
	require.NoError(t, err)
	assert.Len(t, free.RelatedKeywords, 3)
	assert.Len(t, free.TopVideos, 2)

	search.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestKeywordUsecase_ServesFromCache(t *testing.T) {
	search := new(MockSearchProvider)
	cache := new(MockKeywordCache)
	uc := NewKeywordUsecase(search, model.DefaultTierLimits(), 0).WithCache(cache)

	cached := AnalyzeVideos("golang", sampleSearchVideos())
	cache.On("Get", mock.Anything, "GoLang").Return(cached, nil).Once()

	paid, err := uc.Analyze(context.Background(), "GoLang", model.TierPaid)
	require.NoError(t, err)
	assert.Equal(t, "GoLang", paid.Keyword)
	assert.Len(t, paid.TopVideos, 3)
	assert.Equal(t, cached.RelatedKeywords, paid.RelatedKeywords)
	search.AssertNotCalled(t, "SearchVideoIDs", mock.Anything, mock.Anything, mock.Anything)
}

func TestKeywordUsecase_CacheFailureDegrades(t *testing.T) {
	search := new(MockSearchProvider)
	cache := new(MockKeywordCache)
	uc := NewKeywordUsecase(search, model.DefaultTierLimits(), 0).WithCache(cache)

	cache.On("Get", mock.Anything, "rust").Return(nil, errors.New("redis down")).Once()
	cache.On("Set", mock.Anything, "rust", mock.Anything).Return(errors.New("redis down")).Once()
	search.On("SearchVideoIDs", mock.Anything, "rust", int64(25)).Return([]string{}, nil).Once()

	got, err := uc.Analyze(context.Background(), "rust", model.TierPaid)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SearchVolume.SampleSize)
	search.AssertNotCalled(t, "ListVideos", mock.Anything, mock.Anything)
}

func TestKeywordUsecase_ProviderErrorIsFetchFailed(t *testing.T) {
	search := new(MockSearchProvider)
	uc := NewKeywordUsecase(search, model.DefaultTierLimits(), 0)
	search.On("SearchVideoIDs", mock.Anything, "go", int64(25)).Return(nil, errors.New("quota")).Once()

	_, err := uc.Analyze(context.Background(), "go", model.TierFree)
	assert.ErrorIs(t, err, model.ErrFetchFailed)
}
