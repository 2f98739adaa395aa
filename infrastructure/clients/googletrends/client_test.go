package googletrends

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"trend-api/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(Config{
		BaseURL:      url,
		Language:     "en-US",
		TimezoneMins: 300,
		RetryMax:     2,
		RetryWaitMin: time.Millisecond,
		RetryWaitMax: 5 * time.Millisecond,
	}).(*Client)
}

func TestDailyTrends_EncodesParamsAndStripsPrefix(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, dailyTrendsPath, r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "en-US", q.Get("hl"))
		assert.Equal(t, "300", q.Get("tz"))
		assert.Equal(t, "FR", q.Get("geo"))
		assert.Equal(t, "20240102", q.Get("ed"))
		assert.Equal(t, "15", q.Get("ns"))
		_, _ = w.Write([]byte(")]}',\n{\"default\":{}}"))
	}))
	defer srv.Close()

	body, err := newTestClient(srv.URL).DailyTrends(context.Background(), time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC), "FR")
	require.NoError(t, err)
	assert.Equal(t, `{"default":{}}`, body)
}

func TestDailyTrends_UnsupportedRegion(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "not found", status: http.StatusNotFound, body: "nope"},
		{name: "bad request", status: http.StatusBadRequest, body: ""},
		{name: "message in body", status: http.StatusOK, body: "Unsupported region: ZZ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).DailyTrends(context.Background(), time.Now(), "ZZ")
			assert.ErrorIs(t, err, model.ErrUnsupportedRegion)
		})
	}
}

func TestDailyTrends_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	body, err := newTestClient(srv.URL).DailyTrends(context.Background(), time.Now(), "US")
	require.NoError(t, err)
	assert.Equal(t, "[]", body)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDailyTrends_DoesNotRetryRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).DailyTrends(context.Background(), time.Now(), "US")
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestDailyTrends_GivesUpAfterRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).DailyTrends(context.Background(), time.Now(), "US")
	require.Error(t, err)
	assert.NotErrorIs(t, err, model.ErrUnsupportedRegion)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDailyTrends_JSONBodyMentioningUnsupportedRegion(t *testing.T) {
	payload := `{"default":{"trendingSearchesDays":[{"trendingSearches":[{"title":{"query":"travel"},` +
		`"articles":[{"snippet":"The app now shows an unsupported region notice abroad"}]}]}]}}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(")]}',\n" + payload))
	}))
	defer srv.Close()

	body, err := newTestClient(srv.URL).DailyTrends(context.Background(), time.Now(), "US")
	require.NoError(t, err)
	assert.Equal(t, payload, body)
}
