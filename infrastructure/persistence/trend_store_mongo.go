package persistence

import (
	"context"
	"fmt"
	"time"

	"trend-api/domain/model"
	"trend-api/domain/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	topicCollection = "topic_trends"
	videoCollection = "video_trends"
)

// TrendStoreMongo keeps trends in two collections. Timestamps are stored with millisecond precision.
type TrendStoreMongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewTrendStoreMongo(client *mongo.Client, database string) repository.ITrendStore {
	return &TrendStoreMongo{client: client, db: client.Database(database)}
}

// EnsureTrendIndexesMongo creates the natural-key unique indexes and the freshness indexes.
func EnsureTrendIndexesMongo(ctx context.Context, client *mongo.Client, database string) error {
	db := client.Database(database)
	_, err := db.Collection(topicCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "keyword", Value: 1}, {Key: "category", Value: 1}, {Key: "region", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("ux_topic_trends_key"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "region", Value: 1}, {Key: "lastFetched", Value: 1}},
			Options: options.Index().SetName("idx_topic_trends_fresh"),
		},
	})
	if err != nil {
		return fmt.Errorf("create topic indexes: %w", err)
	}
	_, err = db.Collection(videoCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "videoId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("ux_video_trends_video_id"),
		},
		{
			Keys:    bson.D{{Key: "region", Value: 1}, {Key: "lastFetched", Value: 1}},
			Options: options.Index().SetName("idx_video_trends_fresh"),
		},
	})
	if err != nil {
		return fmt.Errorf("create video indexes: %w", err)
	}
	return nil
}

func topicUpsertModel(t model.TopicTrend, now time.Time) mongo.WriteModel {
	return mongo.NewUpdateOneModel().
		SetFilter(bson.D{{Key: "keyword", Value: t.Keyword}, {Key: "category", Value: t.Category}, {Key: "region", Value: t.Region}}).
		SetUpdate(bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "searchVolume", Value: t.SearchVolume},
				{Key: "relatedQueries", Value: nonNil(t.RelatedQueries)},
				{Key: "lastFetched", Value: t.LastFetched.UTC()},
				{Key: "updatedAt", Value: now},
			}},
			{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: now}}},
		}).
		SetUpsert(true)
}

func videoUpsertModel(v model.VideoTrend, now time.Time) mongo.WriteModel {
	return mongo.NewUpdateOneModel().
		SetFilter(bson.D{{Key: "videoId", Value: v.VideoID}}).
		SetUpdate(bson.D{
			{Key: "$set", Value: bson.D{
				{Key: "region", Value: v.Region},
				{Key: "title", Value: v.Title},
				{Key: "description", Value: v.Description},
				{Key: "thumbnailUrl", Value: v.ThumbnailURL},
				{Key: "viewCount", Value: v.ViewCount},
				{Key: "likeCount", Value: v.LikeCount},
				{Key: "publishedAt", Value: v.PublishedAt.UTC()},
				{Key: "tags", Value: nonNil(v.Tags)},
				{Key: "lastFetched", Value: v.LastFetched.UTC()},
				{Key: "updatedAt", Value: now},
			}},
			{Key: "$setOnInsert", Value: bson.D{{Key: "createdAt", Value: now}}},
		}).
		SetUpsert(true)
}

// topicFilter and videoFilter translate queries; empty fields are not constrained.
func topicFilter(q model.TopicQuery) bson.D {
	filter := bson.D{}
	if q.Region != "" {
		filter = append(filter, bson.E{Key: "region", Value: q.Region})
	}
	if q.Category != "" {
		filter = append(filter, bson.E{Key: "category", Value: q.Category})
	}
	if !q.FreshSince.IsZero() {
		filter = append(filter, bson.E{Key: "lastFetched", Value: bson.D{{Key: "$gt", Value: q.FreshSince.UTC()}}})
	}
	return filter
}

func videoFilter(q model.VideoQuery) bson.D {
	filter := bson.D{}
	if q.Region != "" {
		filter = append(filter, bson.E{Key: "region", Value: q.Region})
	}
	if !q.FreshSince.IsZero() {
		filter = append(filter, bson.E{Key: "lastFetched", Value: bson.D{{Key: "$gt", Value: q.FreshSince.UTC()}}})
	}
	return filter
}

func olderThanFilter(cutoff time.Time) bson.D {
	return bson.D{{Key: "lastFetched", Value: bson.D{{Key: "$lt", Value: cutoff.UTC()}}}}
}

func (r *TrendStoreMongo) UpsertTopics(ctx context.Context, topics []model.TopicTrend) error {
	if len(topics) == 0 {
		return nil
	}
	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(topics))
	for _, t := range topics {
		models = append(models, topicUpsertModel(t, now))
	}
	if _, err := r.db.Collection(topicCollection).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("bulk upsert topics: %w", err)
	}
	return nil
}

func (r *TrendStoreMongo) UpsertVideos(ctx context.Context, videos []model.VideoTrend) error {
	if len(videos) == 0 {
		return nil
	}
	now := time.Now().UTC()
	models := make([]mongo.WriteModel, 0, len(videos))
	for _, v := range videos {
		models = append(models, videoUpsertModel(v, now))
	}
	if _, err := r.db.Collection(videoCollection).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("bulk upsert videos: %w", err)
	}
	return nil
}

func (r *TrendStoreMongo) QueryTopics(ctx context.Context, q model.TopicQuery) ([]model.TopicTrend, error) {
	opts := options.Find().SetSort(bson.D{{Key: "searchVolume", Value: -1}, {Key: "_id", Value: 1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	cursor, err := r.db.Collection(topicCollection).Find(ctx, topicFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("find topics: %w", err)
	}
	topics := make([]model.TopicTrend, 0)
	if err := cursor.All(ctx, &topics); err != nil {
		return nil, fmt.Errorf("decode topics: %w", err)
	}
	for i := range topics {
		topics[i].RelatedQueries = nonNil(topics[i].RelatedQueries)
		topics[i].LastFetched = topics[i].LastFetched.UTC()
	}
	return topics, nil
}

func (r *TrendStoreMongo) QueryVideos(ctx context.Context, q model.VideoQuery) ([]model.VideoTrend, error) {
	opts := options.Find().SetSort(bson.D{{Key: "viewCount", Value: -1}, {Key: "_id", Value: 1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	cursor, err := r.db.Collection(videoCollection).Find(ctx, videoFilter(q), opts)
	if err != nil {
		return nil, fmt.Errorf("find videos: %w", err)
	}
	videos := make([]model.VideoTrend, 0)
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}
	for i := range videos {
		videos[i].Tags = nonNil(videos[i].Tags)
		videos[i].LastFetched = videos[i].LastFetched.UTC()
		videos[i].PublishedAt = videos[i].PublishedAt.UTC()
	}
	return videos, nil
}

func (r *TrendStoreMongo) DeleteVideosOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.Collection(videoCollection).DeleteMany(ctx, olderThanFilter(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete videos: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *TrendStoreMongo) DeleteTopicsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.Collection(topicCollection).DeleteMany(ctx, olderThanFilter(cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete topics: %w", err)
	}
	return res.DeletedCount, nil
}

func (r *TrendStoreMongo) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *TrendStoreMongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}
