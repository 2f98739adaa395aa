package persistence

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"trend-api/domain/repository"

	_ "modernc.org/sqlite"
)

var sqliteDialect = sqlDialect{
	name:        "sqlite",
	placeholder: questionPlaceholder,
	timeColumn:  unixNanoTimeColumn,
	upsertTopic: `INSERT INTO topic_trends (keyword, category, region, search_volume, related_queries, last_fetched, created_at, updated_at)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?7)
		ON CONFLICT(keyword, category, region) DO UPDATE SET
			search_volume = excluded.search_volume,
			related_queries = excluded.related_queries,
			last_fetched = excluded.last_fetched,
			updated_at = excluded.updated_at`,
	upsertVideo: `INSERT INTO video_trends (video_id, region, title, description, thumbnail_url, view_count, like_count, published_at, tags, last_fetched, created_at, updated_at)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8, ?9, ?10, ?11, ?11)
		ON CONFLICT(video_id) DO UPDATE SET
			region = excluded.region,
			title = excluded.title,
			description = excluded.description,
			thumbnail_url = excluded.thumbnail_url,
			view_count = excluded.view_count,
			like_count = excluded.like_count,
			published_at = excluded.published_at,
			tags = excluded.tags,
			last_fetched = excluded.last_fetched,
			updated_at = excluded.updated_at`,
}

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS topic_trends (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		keyword         TEXT NOT NULL,
		category        TEXT NOT NULL,
		region          TEXT NOT NULL,
		search_volume   INTEGER NOT NULL DEFAULT 0,
		related_queries TEXT NOT NULL DEFAULT '[]',
		last_fetched    INTEGER NOT NULL,
		created_at      INTEGER NOT NULL,
		updated_at      INTEGER NOT NULL,
		UNIQUE (keyword, category, region)
	);
	CREATE INDEX IF NOT EXISTS idx_topic_trends_fresh ON topic_trends(category, region, last_fetched);

	CREATE TABLE IF NOT EXISTS video_trends (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id      TEXT NOT NULL UNIQUE,
		region        TEXT NOT NULL,
		title         TEXT NOT NULL DEFAULT '',
		description   TEXT NOT NULL DEFAULT '',
		thumbnail_url TEXT NOT NULL DEFAULT '',
		view_count    INTEGER NOT NULL DEFAULT 0,
		like_count    INTEGER NOT NULL DEFAULT 0,
		published_at  INTEGER,
		tags          TEXT NOT NULL DEFAULT '[]',
		last_fetched  INTEGER NOT NULL,
		created_at    INTEGER NOT NULL,
		updated_at    INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_video_trends_fresh ON video_trends(region, last_fetched);
`

// NewTrendStoreSQLite opens (creating if needed) a SQLite file store. A single write
// connection serializes writers; reads use their own pool.
func NewTrendStoreSQLite(dbPath string) (repository.ITrendStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating sqlite dir: %w", err)
		}
	}

	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	writeDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite write db: %w", err)
	}
	writeDB.SetMaxOpenConns(1)

	if _, err := writeDB.Exec(sqliteSchema); err != nil {
		_ = writeDB.Close()
		return nil, fmt.Errorf("initializing sqlite schema: %w", err)
	}

	readDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writeDB.Close()
		return nil, fmt.Errorf("opening sqlite read db: %w", err)
	}
	return newSQLTrendStore(writeDB, readDB, sqliteDialect), nil
}
