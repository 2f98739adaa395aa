package persistence

import (
	"database/sql"
	"fmt"

	"trend-api/domain/repository"
	"trend-api/infrastructure/logger"
)

var postgresDialect = sqlDialect{
	name:        "postgres",
	placeholder: dollarPlaceholder,
	timeColumn:  nativeTimeColumn,
	upsertTopic: `INSERT INTO topic_trends (keyword, category, region, search_volume, related_queries, last_fetched, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (keyword, category, region) DO UPDATE SET
			search_volume = EXCLUDED.search_volume,
			related_queries = EXCLUDED.related_queries,
			last_fetched = EXCLUDED.last_fetched,
			updated_at = EXCLUDED.updated_at`,
	upsertVideo: `INSERT INTO video_trends (video_id, region, title, description, thumbnail_url, view_count, like_count, published_at, tags, last_fetched, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (video_id) DO UPDATE SET
			region = EXCLUDED.region,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			thumbnail_url = EXCLUDED.thumbnail_url,
			view_count = EXCLUDED.view_count,
			like_count = EXCLUDED.like_count,
			published_at = EXCLUDED.published_at,
			tags = EXCLUDED.tags,
			last_fetched = EXCLUDED.last_fetched,
			updated_at = EXCLUDED.updated_at`,
}

// NewTrendStorePostgres returns a trend store on PostgreSQL. Call EnsureTrendSchema first.
func NewTrendStorePostgres(db *sql.DB) repository.ITrendStore {
	return newSQLTrendStore(db, db, postgresDialect)
}

// EnsureTrendSchema creates the trend tables and their indexes if not exists
func EnsureTrendSchema(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS topic_trends (
			id BIGSERIAL PRIMARY KEY,
			keyword TEXT NOT NULL,
			category TEXT NOT NULL,
			region CHAR(2) NOT NULL,
			search_volume BIGINT NOT NULL DEFAULT 0 CHECK (search_volume >= 0),
			related_queries JSONB NOT NULL DEFAULT '[]'::jsonb,
			last_fetched TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT ux_topic_trends_key UNIQUE (keyword, category, region)
		)`,
		`CREATE TABLE IF NOT EXISTS video_trends (
			id BIGSERIAL PRIMARY KEY,
			video_id TEXT NOT NULL UNIQUE,
			region CHAR(2) NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			thumbnail_url TEXT NOT NULL DEFAULT '',
			view_count BIGINT NOT NULL DEFAULT 0 CHECK (view_count >= 0),
			like_count BIGINT NOT NULL DEFAULT 0 CHECK (like_count >= 0),
			published_at TIMESTAMPTZ NULL,
			tags JSONB NOT NULL DEFAULT '[]'::jsonb,
			last_fetched TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create trend tables: %w", err)
		}
	}

	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_topic_trends_fresh ON topic_trends(category, region, last_fetched)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_topic_trends_fresh")
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_video_trends_fresh ON video_trends(region, last_fetched)`); err != nil {
		logger.GetLogger().WithField("error", err).Warn("failed creating idx_video_trends_fresh")
	}
	return nil
}
