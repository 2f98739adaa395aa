package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trend-api/domain/dto"
	"trend-api/domain/model"
	"trend-api/interfaces/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTrendUsecase struct {
	mock.Mock
}

func (m *MockTrendUsecase) GetTopicTrends(ctx context.Context, category model.Category, rawRegion string, tier model.AccessTier) ([]model.TopicTrend, error) {
	args := m.Called(ctx, category, rawRegion, tier)
	if v := args.Get(0); v != nil {
		return v.([]model.TopicTrend), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTrendUsecase) GetTrendingVideos(ctx context.Context, rawRegion string, tier model.AccessTier) ([]model.VideoTrend, error) {
	args := m.Called(ctx, rawRegion, tier)
	if v := args.Get(0); v != nil {
		return v.([]model.VideoTrend), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTrendUsecase) GetCombinedTrends(ctx context.Context, rawRegion string, tier model.AccessTier) ([]model.CombinedTrend, error) {
	args := m.Called(ctx, rawRegion, tier)
	if v := args.Get(0); v != nil {
		return v.([]model.CombinedTrend), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockKeywordUsecase struct {
	mock.Mock
}

func (m *MockKeywordUsecase) Analyze(ctx context.Context, keyword string, tier model.AccessTier) (*model.KeywordAnalysis, error) {
	args := m.Called(ctx, keyword, tier)
	if v := args.Get(0); v != nil {
		return v.(*model.KeywordAnalysis), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) UpsertTopics(context.Context, []model.TopicTrend) error { return nil }
func (m *MockStore) UpsertVideos(context.Context, []model.VideoTrend) error { return nil }
func (m *MockStore) QueryTopics(context.Context, model.TopicQuery) ([]model.TopicTrend, error) {
	return nil, nil
}
func (m *MockStore) QueryVideos(context.Context, model.VideoQuery) ([]model.VideoTrend, error) {
	return nil, nil
}
func (m *MockStore) DeleteVideosOlderThan(context.Context, time.Time) (int64, error) { return 0, nil }
func (m *MockStore) DeleteTopicsOlderThan(context.Context, time.Time) (int64, error) { return 0, nil }
func (m *MockStore) Ping(ctx context.Context) error                                  { return m.Called(ctx).Error(0) }
func (m *MockStore) Close() error                                                    { return nil }

// newRouter stands in for the auth middleware by setting the paid claim directly.
func newRouter(paid bool, register func(r *gin.Engine)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.KeyUserID, "u-1")
		c.Set(middleware.KeyIsPaidUser, paid)
		c.Next()
	})
	register(r)
	return r
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func trendRouter(uc *MockTrendUsecase, paid bool) *gin.Engine {
	h := NewTrendHandler(uc)
	return newRouter(paid, func(r *gin.Engine) {
		r.GET("/trends", h.GetTrends)
		r.GET("/trends/combined", h.GetCombinedTrends)
		r.GET("/trending", h.GetTrendingVideos)
	})
}

func TestGetTrends_Success(t *testing.T) {
	uc := new(MockTrendUsecase)
	uc.On("GetTopicTrends", mock.Anything, model.CategorySports, "gb", model.TierPaid).
		Return([]model.TopicTrend{{Keyword: "derby", Category: model.CategorySports, Region: "GB", SearchVolume: 10}}, nil)

	w := get(trendRouter(uc, true), "/trends?category=Sports&region=gb")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool               `json:"success"`
		Data    []model.TopicTrend `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "derby", body.Data[0].Keyword)
	uc.AssertExpectations(t)
}

func TestGetTrends_DefaultsToAllCategoryAndFreeTier(t *testing.T) {
	uc := new(MockTrendUsecase)
	uc.On("GetTopicTrends", mock.Anything, model.CategoryAll, "", model.TierFree).Return([]model.TopicTrend{}, nil)

	w := get(trendRouter(uc, false), "/trends")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())
}

func TestGetTrends_InvalidCategory(t *testing.T) {
	uc := new(MockTrendUsecase)
	w := get(trendRouter(uc, true), "/trends?category=weather")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrorResponse{Success: false, Error: "Invalid category"}, decodeError(t, w))
	uc.AssertNotCalled(t, "GetTopicTrends", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTrendEndpoints_FailuresAre500(t *testing.T) {
	uc := new(MockTrendUsecase)
	failure := fmt.Errorf("%w: upstream", model.ErrFetchFailed)
	uc.On("GetTopicTrends", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, failure)
	uc.On("GetCombinedTrends", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	uc.On("GetTrendingVideos", mock.Anything, mock.Anything, mock.Anything).Return(nil, failure)
	r := trendRouter(uc, false)

	cases := map[string]string{
		"/trends":          "Failed to fetch trending topics",
		"/trends/combined": "Failed to fetch combined trends",
		"/trending":        "Failed to fetch trending videos",
	}
	for target, message := range cases {
		w := get(r, target)
		require.Equal(t, http.StatusInternalServerError, w.Code, target)
		assert.Equal(t, dto.ErrorResponse{Success: false, Error: message}, decodeError(t, w), target)
	}
}

func TestGetTrendingVideosAndCombined_Success(t *testing.T) {
	uc := new(MockTrendUsecase)
	uc.On("GetTrendingVideos", mock.Anything, "JP", model.TierPaid).
		Return([]model.VideoTrend{{VideoID: "v1", Region: "JP", Tags: []string{}}}, nil)
	uc.On("GetCombinedTrends", mock.Anything, "JP", model.TierPaid).
		Return([]model.CombinedTrend{{Keyword: "anime", RelatedVideos: []model.VideoTrend{}}}, nil)
	r := trendRouter(uc, true)

	w := get(r, "/trending?region=JP")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"videoId":"v1"`)

	w = get(r, "/trends/combined?region=JP")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"keyword":"anime"`)
	assert.Contains(t, w.Body.String(), `"relatedVideos":[]`)
}

func keywordRouter(uc *MockKeywordUsecase, paid bool) *gin.Engine {
	h := NewKeywordHandler(uc)
	return newRouter(paid, func(r *gin.Engine) {
		r.GET("/keywords/analyze", h.Analyze)
	})
}

func TestAnalyzeKeyword(t *testing.T) {
	uc := new(MockKeywordUsecase)
	uc.On("Analyze", mock.Anything, "", model.TierFree).Return(nil, model.ErrKeywordRequired)
	uc.On("Analyze", mock.Anything, "golang", model.TierFree).
		Return(&model.KeywordAnalysis{Keyword: "golang", RelatedKeywords: []model.RelatedKeyword{}, TopVideos: []model.KeywordVideo{}}, nil)
	uc.On("Analyze", mock.Anything, "broken", model.TierFree).Return(nil, errors.New("quota"))
	r := keywordRouter(uc, false)

	w := get(r, "/keywords/analyze")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Keyword is required", decodeError(t, w).Error)

	w = get(r, "/keywords/analyze?keyword=golang")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"keyword":"golang"`)

	w = get(r, "/keywords/analyze?keyword=broken")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to analyze keyword", decodeError(t, w).Error)
}

func TestHealthz(t *testing.T) {
	store := new(MockStore)
	store.On("Ping", mock.Anything).Return(nil).Once()
	store.On("Ping", mock.Anything).Return(errors.New("connection refused")).Once()

	h := NewHealthHandler(store, "sqlite")
	r := newRouter(false, func(r *gin.Engine) { r.GET("/healthz", h.Healthz) })

	w := get(r, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","store":"sqlite"}`, w.Body.String())

	w = get(r, "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}
