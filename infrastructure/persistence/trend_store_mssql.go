package persistence

import (
	"database/sql"
	"fmt"

	"trend-api/domain/repository"
	"trend-api/infrastructure/logger"
)

var mssqlDialect = sqlDialect{
	name:        "mssql",
	placeholder: atPPlaceholder,
	timeColumn:  nativeTimeColumn,
	useTop:      true,
	upsertTopic: `MERGE dbo.topic_trends WITH (HOLDLOCK) AS target
USING (SELECT @p1 AS keyword, @p2 AS category, @p3 AS region) AS src
ON (target.keyword = src.keyword AND target.category = src.category AND target.region = src.region)
WHEN MATCHED THEN UPDATE SET search_volume=@p4, related_queries=@p5, last_fetched=@p6, updated_at=@p7
WHEN NOT MATCHED THEN INSERT (keyword, category, region, search_volume, related_queries, last_fetched, created_at, updated_at)
VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p7);`,
	upsertVideo: `MERGE dbo.video_trends WITH (HOLDLOCK) AS target
USING (SELECT @p1 AS video_id) AS src
ON (target.video_id = src.video_id)
WHEN MATCHED THEN UPDATE SET region=@p2, title=@p3, description=@p4, thumbnail_url=@p5, view_count=@p6, like_count=@p7, published_at=@p8, tags=@p9, last_fetched=@p10, updated_at=@p11
WHEN NOT MATCHED THEN INSERT (video_id, region, title, description, thumbnail_url, view_count, like_count, published_at, tags, last_fetched, created_at, updated_at)
VALUES (@p1, @p2, @p3, @p4, @p5, @p6, @p7, @p8, @p9, @p10, @p11, @p11);`,
}

// NewTrendStoreMSSQL returns a trend store on SQL Server / Azure SQL.
func NewTrendStoreMSSQL(db *sql.DB) repository.ITrendStore {
	return newSQLTrendStore(db, db, mssqlDialect)
}

// EnsureTrendSchemaMSSQL creates the trend tables on MSSQL if not exists
func EnsureTrendSchemaMSSQL(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	ddl := []string{
		`IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.topic_trends') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.topic_trends (
        id BIGINT IDENTITY(1,1) NOT NULL PRIMARY KEY,
        keyword NVARCHAR(255) NOT NULL,
        category NVARCHAR(32) NOT NULL,
        region NCHAR(2) NOT NULL,
        search_volume BIGINT NOT NULL DEFAULT 0,
        related_queries NVARCHAR(MAX) NOT NULL DEFAULT N'[]',
        last_fetched DATETIMEOFFSET NOT NULL,
        created_at DATETIMEOFFSET NOT NULL,
        updated_at DATETIMEOFFSET NOT NULL,
        CONSTRAINT ux_topic_trends_key UNIQUE (keyword, category, region)
    );
END`,
		`IF NOT EXISTS (SELECT * FROM sys.objects WHERE object_id = OBJECT_ID(N'dbo.video_trends') AND type in (N'U'))
BEGIN
    CREATE TABLE dbo.video_trends (
        id BIGINT IDENTITY(1,1) NOT NULL PRIMARY KEY,
        video_id NVARCHAR(64) NOT NULL CONSTRAINT ux_video_trends_video_id UNIQUE,
        region NCHAR(2) NOT NULL,
        title NVARCHAR(MAX) NOT NULL DEFAULT N'',
        description NVARCHAR(MAX) NOT NULL DEFAULT N'',
        thumbnail_url NVARCHAR(MAX) NOT NULL DEFAULT N'',
        view_count BIGINT NOT NULL DEFAULT 0,
        like_count BIGINT NOT NULL DEFAULT 0,
        published_at DATETIMEOFFSET NULL,
        tags NVARCHAR(MAX) NOT NULL DEFAULT N'[]',
        last_fetched DATETIMEOFFSET NOT NULL,
        created_at DATETIMEOFFSET NOT NULL,
        updated_at DATETIMEOFFSET NOT NULL
    );
END`,
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create trend tables (mssql): %w", err)
		}
	}

	indexes := map[string]string{
		"idx_topic_trends_fresh": `IF NOT EXISTS (SELECT * FROM sys.indexes WHERE name = 'idx_topic_trends_fresh' AND object_id = OBJECT_ID('dbo.topic_trends'))
CREATE INDEX idx_topic_trends_fresh ON dbo.topic_trends(category, region, last_fetched)`,
		"idx_video_trends_fresh": `IF NOT EXISTS (SELECT * FROM sys.indexes WHERE name = 'idx_video_trends_fresh' AND object_id = OBJECT_ID('dbo.video_trends'))
CREATE INDEX idx_video_trends_fresh ON dbo.video_trends(region, last_fetched)`,
	}
	for name, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			logger.GetLogger().WithFields(map[string]interface{}{"index": name, "error": err}).Warn("failed creating index (mssql)")
		}
	}
	return nil
}
