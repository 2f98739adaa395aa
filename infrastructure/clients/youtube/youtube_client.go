package youtube

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"trend-api/domain/model"
	"trend-api/infrastructure/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Client is a read-only YouTube Data API client used for trending charts and keyword search.
type Client struct {
	service *youtube.Service
}

// Config represents YouTube API configuration
type Config struct {
	APIKey       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AccessToken  string
	RefreshToken string
	// Endpoint overrides the API base path, e.g. for a local stub. Must end with "/".
	Endpoint string
	// HTTPClient replaces the authenticated transport entirely.
	HTTPClient *http.Client
}

// NewYouTubeClient creates a client in API key mode when a key is present, otherwise in
// OAuth2 refresh-token mode. Without any credentials it returns model.ErrProviderNotConfigured.
func NewYouTubeClient(ctx context.Context, config *Config) (*Client, error) {
	opts := []option.ClientOption{}
	if config.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(config.Endpoint))
	}

	switch {
	case config.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(config.HTTPClient))
	case config.APIKey != "":
		opts = append(opts, option.WithAPIKey(config.APIKey))
	case config.RefreshToken != "" || config.AccessToken != "":
		oauth2Config := &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			RedirectURL:  config.RedirectURL,
			Scopes:       []string{youtube.YoutubeReadonlyScope},
			Endpoint:     google.Endpoint,
		}
		token := &oauth2.Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
			Expiry:       time.Now().Add(-1 * time.Minute), // force refresh on first use
		}
		// the oauth2 transport refreshes the token transparently
		opts = append(opts, option.WithHTTPClient(oauth2Config.Client(ctx, token)))
	default:
		return nil, model.ErrProviderNotConfigured
	}

	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	return &Client{service: service}, nil
}

// NewDisabledClient returns a client whose every call fails with model.ErrProviderNotConfigured.
func NewDisabledClient() *Client {
	return &Client{}
}

func (c *Client) Enabled() bool {
	return c.service != nil
}

// ListMostPopular returns the mostPopular chart for region.
func (c *Client) ListMostPopular(ctx context.Context, region string, count int64) ([]model.VideoTrend, error) {
	if c.service == nil {
		return nil, model.ErrProviderNotConfigured
	}
	response, err := c.service.Videos.List([]string{"snippet", "statistics"}).
		Chart("mostPopular").
		RegionCode(region).
		MaxResults(count).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list most popular videos: %w", err)
	}

	videos := make([]model.VideoTrend, 0, len(response.Items))
	for _, item := range response.Items {
		v := convertToVideoTrend(item)
		v.Region = region
		videos = append(videos, v)
	}
	return videos, nil
}

// ListTags returns the snippet tags of a single video. An unknown video has no tags.
func (c *Client) ListTags(ctx context.Context, videoID string) ([]string, error) {
	if c.service == nil {
		return nil, model.ErrProviderNotConfigured
	}
	response, err := c.service.Videos.List([]string{"snippet"}).
		Id(videoID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get tags for %s: %w", videoID, err)
	}
	if len(response.Items) == 0 || response.Items[0].Snippet == nil {
		return []string{}, nil
	}
	return response.Items[0].Snippet.Tags, nil
}

// SearchVideoIDs runs a video search and returns the matching ids in relevance order.
func (c *Client) SearchVideoIDs(ctx context.Context, q string, maxResults int64) ([]string, error) {
	if c.service == nil {
		return nil, model.ErrProviderNotConfigured
	}
	response, err := c.service.Search.List([]string{"id"}).
		Q(q).
		Type("video").
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search videos: %w", err)
	}

	ids := make([]string, 0, len(response.Items))
	for _, item := range response.Items {
		if item.Id != nil && item.Id.VideoId != "" {
			ids = append(ids, item.Id.VideoId)
		}
	}
	return ids, nil
}

// ListVideos loads snippet and statistics for ids.
func (c *Client) ListVideos(ctx context.Context, ids []string) ([]model.SearchVideo, error) {
	if c.service == nil {
		return nil, model.ErrProviderNotConfigured
	}
	if len(ids) == 0 {
		return []model.SearchVideo{}, nil
	}
	response, err := c.service.Videos.List([]string{"snippet", "statistics"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	videos := make([]model.SearchVideo, 0, len(response.Items))
	for _, item := range response.Items {
		v := convertToVideoTrend(item)
		sv := model.SearchVideo{
			VideoID:     v.VideoID,
			Title:       v.Title,
			Description: v.Description,
			PublishedAt: v.PublishedAt,
			ViewCount:   v.ViewCount,
			Tags:        v.Tags,
		}
		if item.Snippet != nil {
			sv.ChannelTitle = item.Snippet.ChannelTitle
		}
		videos = append(videos, sv)
	}
	return videos, nil
}

// clampCount keeps API counters within int64 so they never turn negative.
func clampCount(n uint64) int64 {
	if n > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}

// convertToVideoTrend converts a YouTube API video to our model. Missing statistics count as zero.
func convertToVideoTrend(video *youtube.Video) model.VideoTrend {
	v := model.VideoTrend{VideoID: video.Id}
	if video.Statistics != nil {
		v.ViewCount = clampCount(video.Statistics.ViewCount)
		v.LikeCount = clampCount(video.Statistics.LikeCount)
	}
	if video.Snippet == nil {
		return v
	}

	v.Title = video.Snippet.Title
	v.Description = video.Snippet.Description
	v.Tags = video.Snippet.Tags
	if publishedAt, err := time.Parse(time.RFC3339, video.Snippet.PublishedAt); err == nil {
		v.PublishedAt = publishedAt.UTC()
	} else if video.Snippet.PublishedAt != "" {
		logger.GetLogger().WithFields(map[string]interface{}{"videoId": video.Id, "publishedAt": video.Snippet.PublishedAt}).Warn("Unparsable publishedAt")
	}

	if t := video.Snippet.Thumbnails; t != nil {
		switch {
		case t.High != nil:
			v.ThumbnailURL = t.High.Url
		case t.Medium != nil:
			v.ThumbnailURL = t.Medium.Url
		case t.Default != nil:
			v.ThumbnailURL = t.Default.Url
		}
	}
	return v
}
