package persistence

import (
	"context"
	"fmt"
	"time"

	"trend-api/domain/model"
	"trend-api/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TrendStoreGorm implements the trend store with gorm. It is wired to MySQL but relies
// only on dialect-neutral gorm features.
type TrendStoreGorm struct {
	db *gorm.DB
}

func NewTrendStoreGorm(db *gorm.DB) repository.ITrendStore {
	return &TrendStoreGorm{db: db}
}

// EnsureTrendSchemaGorm migrates the trend tables from the model tags.
func EnsureTrendSchemaGorm(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	if err := db.AutoMigrate(&model.TopicTrend{}, &model.VideoTrend{}); err != nil {
		return fmt.Errorf("auto migrate trend tables: %w", err)
	}
	return nil
}

func (r *TrendStoreGorm) UpsertTopics(ctx context.Context, topics []model.TopicTrend) error {
	if r.db == nil {
		return fmt.Errorf("gorm trend store: db is nil")
	}
	if len(topics) == 0 {
		return nil
	}
	rows := make([]model.TopicTrend, len(topics))
	for i, t := range topics {
		t.ID = 0
		t.RelatedQueries = nonNil(t.RelatedQueries)
		rows[i] = t
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "keyword"}, {Name: "category"}, {Name: "region"}},
		DoUpdates: clause.AssignmentColumns([]string{"search_volume", "related_queries", "last_fetched"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upsert topics: %w", err)
	}
	return nil
}

func (r *TrendStoreGorm) UpsertVideos(ctx context.Context, videos []model.VideoTrend) error {
	if r.db == nil {
		return fmt.Errorf("gorm trend store: db is nil")
	}
	if len(videos) == 0 {
		return nil
	}
	rows := make([]model.VideoTrend, len(videos))
	for i, v := range videos {
		v.ID = 0
		v.Tags = nonNil(v.Tags)
		rows[i] = v
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"region", "title", "description", "thumbnail_url", "view_count",
			"like_count", "published_at", "tags", "last_fetched",
		}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("upsert videos: %w", err)
	}
	return nil
}

func (r *TrendStoreGorm) QueryTopics(ctx context.Context, q model.TopicQuery) ([]model.TopicTrend, error) {
	if r.db == nil {
		return nil, fmt.Errorf("gorm trend store: db is nil")
	}
	tx := r.db.WithContext(ctx).Model(&model.TopicTrend{})
	if q.Region != "" {
		tx = tx.Where("region = ?", q.Region)
	}
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if !q.FreshSince.IsZero() {
		tx = tx.Where("last_fetched > ?", q.FreshSince.UTC())
	}
	tx = tx.Order("search_volume DESC").Order("id ASC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	topics := make([]model.TopicTrend, 0)
	if err := tx.Find(&topics).Error; err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	for i := range topics {
		topics[i].RelatedQueries = nonNil(topics[i].RelatedQueries)
	}
	return topics, nil
}

func (r *TrendStoreGorm) QueryVideos(ctx context.Context, q model.VideoQuery) ([]model.VideoTrend, error) {
	if r.db == nil {
		return nil, fmt.Errorf("gorm trend store: db is nil")
	}
	tx := r.db.WithContext(ctx).Model(&model.VideoTrend{})
	if q.Region != "" {
		tx = tx.Where("region = ?", q.Region)
	}
	if !q.FreshSince.IsZero() {
		tx = tx.Where("last_fetched > ?", q.FreshSince.UTC())
	}
	tx = tx.Order("view_count DESC").Order("id ASC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	videos := make([]model.VideoTrend, 0)
	if err := tx.Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	for i := range videos {
		videos[i].Tags = nonNil(videos[i].Tags)
	}
	return videos, nil
}

func (r *TrendStoreGorm) DeleteVideosOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("gorm trend store: db is nil")
	}
	res := r.db.WithContext(ctx).Where("last_fetched < ?", cutoff.UTC()).Delete(&model.VideoTrend{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete videos: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *TrendStoreGorm) DeleteTopicsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.db == nil {
		return 0, fmt.Errorf("gorm trend store: db is nil")
	}
	res := r.db.WithContext(ctx).Where("last_fetched < ?", cutoff.UTC()).Delete(&model.TopicTrend{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete topics: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *TrendStoreGorm) Ping(ctx context.Context) error {
	if r.db == nil {
		return fmt.Errorf("gorm trend store: db is nil")
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *TrendStoreGorm) Close() error {
	if r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
