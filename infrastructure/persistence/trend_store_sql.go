package persistence

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"trend-api/domain/model"
	"trend-api/domain/repository"
)

// timeColumn binds and scans a timestamp column. The zero time maps to NULL.
type timeColumn interface {
	sql.Scanner
	driver.Valuer
}

// nativeTime is used by drivers with a real timestamp type (postgres, mssql).
type nativeTime struct{ t *time.Time }

func (n nativeTime) Value() (driver.Value, error) {
	if n.t == nil || n.t.IsZero() {
		return nil, nil
	}
	return n.t.UTC(), nil
}

func (n nativeTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*n.t = time.Time{}
	case time.Time:
		*n.t = v.UTC()
	default:
		return fmt.Errorf("unsupported timestamp value %T", src)
	}
	return nil
}

// unixNanoTime stores timestamps as INTEGER nanoseconds so comparisons stay numeric.
type unixNanoTime struct{ t *time.Time }

func (n unixNanoTime) Value() (driver.Value, error) {
	if n.t == nil || n.t.IsZero() {
		return nil, nil
	}
	return n.t.UnixNano(), nil
}

func (n unixNanoTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*n.t = time.Time{}
	case int64:
		*n.t = time.Unix(0, v).UTC()
	default:
		return fmt.Errorf("unsupported unix nano value %T", src)
	}
	return nil
}

// sqlDialect captures what differs between the database/sql backends.
type sqlDialect struct {
	name        string
	placeholder func(n int) string
	timeColumn  func(t *time.Time) timeColumn
	// useTop selects "SELECT TOP (n)" instead of a trailing LIMIT.
	useTop bool
	// upsertTopic binds keyword, category, region, search_volume, related_queries, last_fetched, now.
	upsertTopic string
	// upsertVideo binds video_id, region, title, description, thumbnail_url, view_count,
	// like_count, published_at, tags, last_fetched, now.
	upsertVideo string
}

func dollarPlaceholder(n int) string   { return fmt.Sprintf("$%d", n) }
func atPPlaceholder(n int) string      { return fmt.Sprintf("@p%d", n) }
func questionPlaceholder(_ int) string { return "?" }

func nativeTimeColumn(t *time.Time) timeColumn   { return nativeTime{t: t} }
func unixNanoTimeColumn(t *time.Time) timeColumn { return unixNanoTime{t: t} }

const (
	topicColumns = "id, keyword, category, region, search_volume, related_queries, last_fetched"
	videoColumns = "id, video_id, region, title, description, thumbnail_url, view_count, like_count, published_at, tags, last_fetched"
)

// sqlTrendStore implements the trend store over database/sql. Writes go through db,
// reads through readDB which may be the same pool.
type sqlTrendStore struct {
	db      *sql.DB
	readDB  *sql.DB
	dialect sqlDialect
	clock   func() time.Time
}

func newSQLTrendStore(db, readDB *sql.DB, d sqlDialect) *sqlTrendStore {
	if readDB == nil {
		readDB = db
	}
	return &sqlTrendStore{db: db, readDB: readDB, dialect: d, clock: time.Now}
}

var _ repository.ITrendStore = (*sqlTrendStore)(nil)

func (s *sqlTrendStore) UpsertTopics(ctx context.Context, topics []model.TopicTrend) (err error) {
	if s.db == nil {
		return fmt.Errorf("%s trend store: db is nil", s.dialect.name)
	}
	if len(topics) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin topic upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, s.dialect.upsertTopic)
	if err != nil {
		return fmt.Errorf("prepare topic upsert: %w", err)
	}
	defer stmt.Close()

	now := s.clock().UTC()
	for i := range topics {
		t := topics[i]
		related, mErr := json.Marshal(nonNil(t.RelatedQueries))
		if mErr != nil {
			err = mErr
			return err
		}
		lastFetched := t.LastFetched
		if _, err = stmt.ExecContext(ctx,
			t.Keyword, string(t.Category), t.Region, t.SearchVolume, string(related),
			s.dialect.timeColumn(&lastFetched), s.dialect.timeColumn(&now),
		); err != nil {
			return fmt.Errorf("upsert topic %q: %w", t.Keyword, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit topic upsert: %w", err)
	}
	return nil
}

func (s *sqlTrendStore) UpsertVideos(ctx context.Context, videos []model.VideoTrend) (err error) {
	if s.db == nil {
		return fmt.Errorf("%s trend store: db is nil", s.dialect.name)
	}
	if len(videos) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin video upsert: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, s.dialect.upsertVideo)
	if err != nil {
		return fmt.Errorf("prepare video upsert: %w", err)
	}
	defer stmt.Close()

	now := s.clock().UTC()
	for i := range videos {
		v := videos[i]
		tags, mErr := json.Marshal(nonNil(v.Tags))
		if mErr != nil {
			err = mErr
			return err
		}
		publishedAt, lastFetched := v.PublishedAt, v.LastFetched
		if _, err = stmt.ExecContext(ctx,
			v.VideoID, v.Region, v.Title, v.Description, v.ThumbnailURL, v.ViewCount, v.LikeCount,
			s.dialect.timeColumn(&publishedAt), string(tags), s.dialect.timeColumn(&lastFetched), s.dialect.timeColumn(&now),
		); err != nil {
			return fmt.Errorf("upsert video %s: %w", v.VideoID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit video upsert: %w", err)
	}
	return nil
}

// whereBuilder accumulates conditions with dialect placeholders.
type whereBuilder struct {
	d     sqlDialect
	conds []string
	args  []interface{}
}

func (w *whereBuilder) add(cond string, arg interface{}) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, w.d.placeholder(len(w.args))))
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func (s *sqlTrendStore) selectQuery(columns, table string, w *whereBuilder, orderBy string, limit int) string {
	var b strings.Builder
	b.WriteString("SELECT ")
	if s.dialect.useTop && limit > 0 {
		fmt.Fprintf(&b, "TOP (%d) ", limit)
	}
	b.WriteString(columns)
	b.WriteString(" FROM ")
	b.WriteString(table)
	b.WriteString(w.String())
	b.WriteString(" ORDER BY ")
	b.WriteString(orderBy)
	if !s.dialect.useTop && limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}
	return b.String()
}

func (s *sqlTrendStore) QueryTopics(ctx context.Context, q model.TopicQuery) ([]model.TopicTrend, error) {
	if s.readDB == nil {
		return nil, fmt.Errorf("%s trend store: db is nil", s.dialect.name)
	}
	w := &whereBuilder{d: s.dialect}
	if q.Region != "" {
		w.add("region = %s", q.Region)
	}
	if q.Category != "" {
		w.add("category = %s", string(q.Category))
	}
	if !q.FreshSince.IsZero() {
		fresh := q.FreshSince
		w.add("last_fetched > %s", s.dialect.timeColumn(&fresh))
	}
	query := s.selectQuery(topicColumns, "topic_trends", w, "search_volume DESC, id ASC", q.Limit)

	rows, err := s.readDB.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer rows.Close()

	topics := make([]model.TopicTrend, 0)
	for rows.Next() {
		var (
			t        model.TopicTrend
			category string
			related  []byte
		)
		if err := rows.Scan(&t.ID, &t.Keyword, &category, &t.Region, &t.SearchVolume, &related, s.dialect.timeColumn(&t.LastFetched)); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		t.Category = model.Category(category)
		t.RelatedQueries = decodeStringList(related)
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (s *sqlTrendStore) QueryVideos(ctx context.Context, q model.VideoQuery) ([]model.VideoTrend, error) {
	if s.readDB == nil {
		return nil, fmt.Errorf("%s trend store: db is nil", s.dialect.name)
	}
	w := &whereBuilder{d: s.dialect}
	if q.Region != "" {
		w.add("region = %s", q.Region)
	}
	if !q.FreshSince.IsZero() {
		fresh := q.FreshSince
		w.add("last_fetched > %s", s.dialect.timeColumn(&fresh))
	}
	query := s.selectQuery(videoColumns, "video_trends", w, "view_count DESC, id ASC", q.Limit)

	rows, err := s.readDB.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	videos := make([]model.VideoTrend, 0)
	for rows.Next() {
		var (
			v    model.VideoTrend
			tags []byte
		)
		if err := rows.Scan(&v.ID, &v.VideoID, &v.Region, &v.Title, &v.Description, &v.ThumbnailURL,
			&v.ViewCount, &v.LikeCount, s.dialect.timeColumn(&v.PublishedAt), &tags, s.dialect.timeColumn(&v.LastFetched)); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		v.Tags = decodeStringList(tags)
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (s *sqlTrendStore) DeleteVideosOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteOlderThan(ctx, "video_trends", cutoff)
}

func (s *sqlTrendStore) DeleteTopicsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.deleteOlderThan(ctx, "topic_trends", cutoff)
}

func (s *sqlTrendStore) deleteOlderThan(ctx context.Context, table string, cutoff time.Time) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("%s trend store: db is nil", s.dialect.name)
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE last_fetched < %s", table, s.dialect.placeholder(1))
	res, err := s.db.ExecContext(ctx, query, s.dialect.timeColumn(&cutoff))
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected for %s: %w", table, err)
	}
	return n, nil
}

func (s *sqlTrendStore) Ping(ctx context.Context) error {
	if s.readDB == nil {
		return fmt.Errorf("%s trend store: db is nil", s.dialect.name)
	}
	return s.readDB.PingContext(ctx)
}

func (s *sqlTrendStore) Close() error {
	var firstErr error
	if s.readDB != nil && s.readDB != s.db {
		firstErr = s.readDB.Close()
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// decodeStringList reads a JSON array column. NULL or invalid content yields an empty list.
func decodeStringList(raw []byte) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil || out == nil {
		return []string{}
	}
	return out
}
