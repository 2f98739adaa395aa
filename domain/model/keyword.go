package model

import "time"

// KeywordAnalysis summarizes how a keyword performs on the video platform.
type KeywordAnalysis struct {
	Keyword         string           `json:"keyword"`
	SearchVolume    KeywordVolume    `json:"searchVolume"`
	RelatedKeywords []RelatedKeyword `json:"relatedKeywords"`
	TopVideos       []KeywordVideo   `json:"topVideos"`
}

type KeywordVolume struct {
	Total      int64 `json:"total"`
	Average    int64 `json:"average"`
	SampleSize int   `json:"sampleSize"`
}

type RelatedKeyword struct {
	Keyword    string `json:"keyword"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

type KeywordVideo struct {
	Title        string    `json:"title"`
	VideoID      string    `json:"videoId"`
	PublishedAt  time.Time `json:"publishedAt"`
	ChannelTitle string    `json:"channelTitle"`
	ViewCount    int64     `json:"viewCount"`
}

// SearchVideo is a search hit enriched with statistics, as returned by the video provider.
type SearchVideo struct {
	VideoID      string
	Title        string
	Description  string
	ChannelTitle string
	PublishedAt  time.Time
	ViewCount    int64
	Tags         []string
}
