package usecase

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"trend-api/domain/model"
	"trend-api/domain/repository"
	"trend-api/infrastructure/persistence"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTopicFetcher struct {
	mock.Mock
}

func (m *MockTopicFetcher) FetchTopicTrends(ctx context.Context, category model.Category, region string, asOf time.Time) ([]model.TopicTrend, error) {
	args := m.Called(ctx, category, region, asOf)
	if v := args.Get(0); v != nil {
		return v.([]model.TopicTrend), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockVideoFetcher struct {
	mock.Mock
}

func (m *MockVideoFetcher) FetchTrendingVideos(ctx context.Context, region string, count int64) ([]model.VideoTrend, error) {
	args := m.Called(ctx, region, count)
	if v := args.Get(0); v != nil {
		return v.([]model.VideoTrend), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, evt model.TrendEvent) error {
	return m.Called(ctx, evt).Error(0)
}

type MockTrendStore struct {
	mock.Mock
}

func (m *MockTrendStore) UpsertTopics(ctx context.Context, topics []model.TopicTrend) error {
	return m.Called(ctx, topics).Error(0)
}

func (m *MockTrendStore) UpsertVideos(ctx context.Context, videos []model.VideoTrend) error {
	return m.Called(ctx, videos).Error(0)
}

func (m *MockTrendStore) QueryTopics(ctx context.Context, q model.TopicQuery) ([]model.TopicTrend, error) {
	args := m.Called(ctx, q)
	if v := args.Get(0); v != nil {
		return v.([]model.TopicTrend), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTrendStore) QueryVideos(ctx context.Context, q model.VideoQuery) ([]model.VideoTrend, error) {
	args := m.Called(ctx, q)
	if v := args.Get(0); v != nil {
		return v.([]model.VideoTrend), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTrendStore) DeleteVideosOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTrendStore) DeleteTopicsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTrendStore) Ping(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *MockTrendStore) Close() error                   { return m.Called().Error(0) }

type MockSearchProvider struct {
	mock.Mock
}

func (m *MockSearchProvider) SearchVideoIDs(ctx context.Context, query string, maxResults int64) ([]string, error) {
	args := m.Called(ctx, query, maxResults)
	if v := args.Get(0); v != nil {
		return v.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSearchProvider) ListVideos(ctx context.Context, ids []string) ([]model.SearchVideo, error) {
	args := m.Called(ctx, ids)
	if v := args.Get(0); v != nil {
		return v.([]model.SearchVideo), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockKeywordCache struct {
	mock.Mock
}

func (m *MockKeywordCache) Get(ctx context.Context, keyword string) (*model.KeywordAnalysis, error) {
	args := m.Called(ctx, keyword)
	if v := args.Get(0); v != nil {
		return v.(*model.KeywordAnalysis), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockKeywordCache) Set(ctx context.Context, keyword string, analysis *model.KeywordAnalysis) error {
	return m.Called(ctx, keyword, analysis).Error(0)
}

// fakeClock is advanced explicitly by tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

var hasDeadline = mock.MatchedBy(func(ctx context.Context) bool {
	_, ok := ctx.Deadline()
	return ok
})

func newSQLiteStore(t *testing.T) repository.ITrendStore {
	t.Helper()
	store, err := persistence.NewTrendStoreSQLite(filepath.Join(t.TempDir(), "trends.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}
