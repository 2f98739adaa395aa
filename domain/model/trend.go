package model

import (
	"strings"
	"time"
)

// Category scopes a topic trend ranking.
type Category string

const (
	CategoryNews          Category = "news"
	CategoryEntertainment Category = "entertainment"
	CategorySports        Category = "sports"
	CategoryAll           Category = "all"
)

// ParseCategory validates a category query value. Empty input selects CategoryAll.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case "":
		return CategoryAll, nil
	case CategoryNews, CategoryEntertainment, CategorySports, CategoryAll:
		return c, nil
	}
	return "", ErrInvalidCategory
}

// TopicTrend is a ranked search keyword for a category and region.
// The natural key is (Keyword, Category, Region).
type TopicTrend struct {
	ID             int64     `json:"id,omitempty" bson:"-" gorm:"primaryKey;autoIncrement"`
	Keyword        string    `json:"keyword" bson:"keyword" gorm:"size:255;not null;uniqueIndex:ux_topic_trends_key,priority:1"`
	Category       Category  `json:"category" bson:"category" gorm:"size:32;not null;uniqueIndex:ux_topic_trends_key,priority:2;index:idx_topic_trends_fresh,priority:1"`
	Region         string    `json:"region" bson:"region" gorm:"size:2;not null;uniqueIndex:ux_topic_trends_key,priority:3;index:idx_topic_trends_fresh,priority:2"`
	SearchVolume   int64     `json:"searchVolume" bson:"searchVolume" gorm:"not null;default:0"`
	RelatedQueries []string  `json:"relatedQueries" bson:"relatedQueries" gorm:"serializer:json;type:text"`
	LastFetched    time.Time `json:"lastFetched" bson:"lastFetched" gorm:"not null;index:idx_topic_trends_fresh,priority:3"`
}

// TopicKey identifies a TopicTrend independent of its surrogate id.
type TopicKey struct {
	Keyword  string
	Category Category
	Region   string
}

func (t TopicTrend) Key() TopicKey {
	return TopicKey{Keyword: t.Keyword, Category: t.Category, Region: t.Region}
}

// VideoTrend is a trending video for a region. VideoID is globally unique.
type VideoTrend struct {
	ID           int64     `json:"id,omitempty" bson:"-" gorm:"primaryKey;autoIncrement"`
	Region       string    `json:"region" bson:"region" gorm:"size:2;not null;index:idx_video_trends_region,priority:1"`
	VideoID      string    `json:"videoId" bson:"videoId" gorm:"size:64;not null;uniqueIndex"`
	Title        string    `json:"title" bson:"title" gorm:"type:text"`
	Description  string    `json:"description" bson:"description" gorm:"type:text"`
	ThumbnailURL string    `json:"thumbnailUrl" bson:"thumbnailUrl" gorm:"type:text"`
	ViewCount    int64     `json:"viewCount" bson:"viewCount" gorm:"not null;default:0"`
	LikeCount    int64     `json:"likeCount" bson:"likeCount" gorm:"not null;default:0"`
	PublishedAt  time.Time `json:"publishedAt" bson:"publishedAt"`
	LastFetched  time.Time `json:"lastFetched" bson:"lastFetched" gorm:"not null;index:idx_video_trends_region,priority:2"`
	Tags         []string  `json:"tags" bson:"tags" gorm:"serializer:json;type:text"`
}

// CombinedTrend joins a topic with the videos that mention its keyword.
type CombinedTrend struct {
	Keyword       string       `json:"keyword"`
	SearchVolume  int64        `json:"searchVolume"`
	Category      Category     `json:"category"`
	RelatedVideos []VideoTrend `json:"relatedVideos"`
}

// TopicQuery filters topic reads. An empty Category matches every category,
// a zero FreshSince disables the freshness filter and Limit <= 0 is unlimited.
type TopicQuery struct {
	Category   Category
	Region     string
	FreshSince time.Time
	Limit      int
}

// VideoQuery filters video reads with the same conventions as TopicQuery.
type VideoQuery struct {
	Region     string
	FreshSince time.Time
	Limit      int
}
