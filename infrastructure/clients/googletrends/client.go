// Package googletrends fetches the raw daily trending-searches feed.
package googletrends

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"trend-api/domain/model"
	"trend-api/domain/repository"
	"trend-api/infrastructure/logger"

	"github.com/google/go-querystring/query"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	dailyTrendsPath = "/trends/api/dailytrends"
	xssiPrefix      = ")]}',"
	maxBodyBytes    = 4 << 20
)

type Config struct {
	BaseURL      string
	Language     string
	TimezoneMins int
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	RateLimit    float64
	RateBurst    int
	Timeout      time.Duration
}

type dailyTrendsParams struct {
	Language string `url:"hl"`
	Timezone int    `url:"tz"`
	Geo      string `url:"geo"`
	Date     string `url:"ed"`
	NS       int    `url:"ns"`
}

type Client struct {
	baseURL    string
	language   string
	tz         int
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg Config) repository.ITopicTrendProvider {
	if cfg.Language == "" {
		cfg.Language = "en-US"
	}
	if cfg.RetryWaitMin <= 0 {
		cfg.RetryWaitMin = time.Second
	}
	if cfg.RetryWaitMax <= 0 {
		cfg.RetryWaitMax = 10 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 1
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Transport = cleanhttp.DefaultPooledTransport()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = retryablehttp.LeveledLogger(leveledLogrus{inner: logger.GetLogger().WithField("subsystem", "googletrends")})
	retryClient.CheckRetry = retryPolicy
	// hand the last response back to the caller instead of a generic "giving up" error
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	httpClient := retryClient.StandardClient()
	httpClient.Timeout = cfg.Timeout

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		language:   cfg.Language,
		tz:         cfg.TimezoneMins,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, cfg.RateBurst),
	}
}

// retryPolicy retries connection errors and 5xx except 501. 429 is left to the caller.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// DailyTrends returns the daily trends payload for region with the anti-XSSI prefix removed.
func (c *Client) DailyTrends(ctx context.Context, date time.Time, region string) (string, error) {
	params, err := query.Values(dailyTrendsParams{
		Language: c.language,
		Timezone: c.tz,
		Geo:      region,
		Date:     date.Format("20060102"),
		NS:       15,
	})
	if err != nil {
		return "", fmt.Errorf("encode daily trends params: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("daily trends rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+dailyTrendsPath+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build daily trends request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("daily trends request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read daily trends body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("daily trends for %s returned %d: %w", region, resp.StatusCode, model.ErrUnsupportedRegion)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		if mentionsUnsupportedRegion(body) {
			return "", fmt.Errorf("daily trends for %s returned %d: %w", region, resp.StatusCode, model.ErrUnsupportedRegion)
		}
		return "", &StatusError{StatusCode: resp.StatusCode}
	}

	payload := strings.TrimLeft(string(body), " \t\r\n")
	payload = strings.TrimPrefix(payload, xssiPrefix)
	payload = strings.TrimLeft(payload, " \t\r\n")
	// a 2xx JSON body is data, even when an article snippet mentions the phrase
	if !json.Valid([]byte(payload)) && mentionsUnsupportedRegion(body) {
		return "", fmt.Errorf("daily trends for %s: %w", region, model.ErrUnsupportedRegion)
	}
	return payload, nil
}

// StatusError reports an unexpected HTTP status from the trends endpoint.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("daily trends returned status %d", e.StatusCode)
}

// IsRateLimited reports whether err came from a 429 response.
func IsRateLimited(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusTooManyRequests
}

func mentionsUnsupportedRegion(body []byte) bool {
	if len(body) > 4096 {
		body = body[:4096]
	}
	return strings.Contains(strings.ToLower(string(body)), "unsupported region")
}

// leveledLogrus adapts logrus to retryablehttp, downgrading errors to warnings since
// intermediate failures are retried.
type leveledLogrus struct {
	inner *logrus.Entry
}

func (l leveledLogrus) fields(keysAndValues []interface{}) *logrus.Entry {
	f := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.inner.WithFields(f)
}

func (l leveledLogrus) Error(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Warn(msg)
}

func (l leveledLogrus) Warn(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Warn(msg)
}

func (l leveledLogrus) Info(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Info(msg)
}

func (l leveledLogrus) Debug(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}
