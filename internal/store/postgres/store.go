// Package postgres provides the Postgres-backed article repository.
//
// Expected schema:
//
//	CREATE TABLE articles (
//		id           BIGSERIAL PRIMARY KEY,
//		url          TEXT NOT NULL UNIQUE,
//		title        TEXT NOT NULL,
//		published_at TIMESTAMPTZ NOT NULL,
//		author       TEXT NOT NULL DEFAULT '',
//		source       TEXT NOT NULL DEFAULT 'Other',
//		sentiment    TEXT NOT NULL DEFAULT 'Neutral',
//		fact_check   TEXT NOT NULL DEFAULT 'Unverified',
//		category     TEXT NOT NULL DEFAULT 'General',
//		bd_summary   TEXT NOT NULL DEFAULT 'Not covered',
//		int_summary  TEXT NOT NULL DEFAULT 'Not covered',
//		image        TEXT NOT NULL DEFAULT '',
//		favicon      TEXT NOT NULL DEFAULT '',
//		score        DOUBLE PRECISION NOT NULL DEFAULT 0,
//		extras       JSONB,
//		full_text    TEXT NOT NULL DEFAULT '',
//		summary_json JSONB,
//		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
//
//	CREATE TABLE bd_matches (
//		id         BIGSERIAL PRIMARY KEY,
//		article_id BIGINT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
//		position   INT NOT NULL,
//		title      TEXT NOT NULL DEFAULT '',
//		source     TEXT NOT NULL DEFAULT '',
//		url        TEXT NOT NULL DEFAULT ''
//	);
//
// int_matches has the same shape as bd_matches.
//
// TODO: manage the schema with golang-migrate instead of by hand.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/simswatch/sims-analytics/internal/news"
)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// pgxPool is the subset of pgxpool.Pool the store uses, narrow enough for
// pgxmock to stand in during tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Store implements news.Store on Postgres.
type Store struct {
	pool pgxPool
}

// New connects a pool using the provided config and returns the Store.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool constructs a Store from an existing pool (primarily for
// testing).
func NewWithPool(pool pgxPool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

const articleColumns = `id, url, title, published_at, author, source, sentiment, fact_check, category, bd_summary, int_summary, image, favicon, score, extras, full_text, summary_json`

// UpsertArticle inserts the row keyed by URL or updates it in place, and
// returns the durable id the match rows reference.
func (s *Store) UpsertArticle(ctx context.Context, a *news.Article) (int64, error) {
	if a == nil || a.URL == "" {
		return 0, fmt.Errorf("article url is required")
	}
	extrasJSON, err := json.Marshal(a.Extras)
	if err != nil {
		return 0, fmt.Errorf("marshal extras: %w", err)
	}

	query := `
INSERT INTO articles (
	url, title, published_at, author, source, sentiment, fact_check,
	category, bd_summary, int_summary, image, favicon, score, extras,
	full_text, summary_json
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16
)
ON CONFLICT (url) DO UPDATE SET
	title = EXCLUDED.title,
	published_at = EXCLUDED.published_at,
	author = EXCLUDED.author,
	source = EXCLUDED.source,
	sentiment = EXCLUDED.sentiment,
	fact_check = EXCLUDED.fact_check,
	category = EXCLUDED.category,
	bd_summary = EXCLUDED.bd_summary,
	int_summary = EXCLUDED.int_summary,
	image = EXCLUDED.image,
	favicon = EXCLUDED.favicon,
	score = EXCLUDED.score,
	extras = EXCLUDED.extras,
	full_text = EXCLUDED.full_text,
	summary_json = EXCLUDED.summary_json,
	updated_at = NOW()
RETURNING id`

	var id int64
	err = s.pool.QueryRow(ctx, query,
		a.URL,
		a.Title,
		a.PublishedAt,
		a.Author,
		a.Source,
		string(a.Sentiment),
		string(a.FactCheck),
		a.Category,
		a.BDSummary,
		a.IntSummary,
		a.Image,
		a.Favicon,
		a.Score,
		extrasJSON,
		a.FullText,
		a.SummaryJSON,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert article: %w", err)
	}
	a.ID = id
	return id, nil
}

// ReplaceMatches rewrites both match lists for the article inside one
// transaction: every existing row is deleted, then the new entries are
// inserted in order. Lists are replaced wholesale, never merged.
func (s *Store) ReplaceMatches(ctx context.Context, articleID int64, bd, intl []news.Match) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace matches: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := replaceTable(ctx, tx, "bd_matches", articleID, bd); err != nil {
		return err
	}
	if err := replaceTable(ctx, tx, "int_matches", articleID, intl); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace matches: %w", err)
	}
	return nil
}

func replaceTable(ctx context.Context, tx pgx.Tx, table string, articleID int64, matches []news.Match) error {
	if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE article_id = $1`, table), articleID); err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	for i, m := range matches {
		if i == news.MaxMatches {
			break
		}
		query := fmt.Sprintf(`INSERT INTO %s (article_id, position, title, source, url) VALUES ($1,$2,$3,$4,$5)`, table)
		if _, err := tx.Exec(ctx, query, articleID, i, m.Title, m.Source, m.URL); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
	}
	return nil
}

// ListArticles returns the total count matching the filter plus one page,
// newest first, with both match lists attached.
func (s *Store) ListArticles(ctx context.Context, filter news.ArticleFilter) (int, []news.Article, error) {
	where, args := buildWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM articles` + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return 0, nil, fmt.Errorf("count articles: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	pageArgs := append(append([]any(nil), args...), limit, filter.Offset)
	pageQuery := fmt.Sprintf(
		`SELECT %s FROM articles%s ORDER BY published_at DESC LIMIT $%d OFFSET $%d`,
		articleColumns, where, len(args)+1, len(args)+2,
	)

	rows, err := s.pool.Query(ctx, pageQuery, pageArgs...)
	if err != nil {
		return 0, nil, fmt.Errorf("list articles: %w", err)
	}
	articles, err := scanArticles(rows)
	if err != nil {
		return 0, nil, err
	}

	for i := range articles {
		if err := s.loadMatches(ctx, &articles[i]); err != nil {
			return 0, nil, err
		}
	}
	return total, articles, nil
}

// GetArticle fetches one article by id with its match lists. Returns
// news.ErrNotFound when the id is unknown.
func (s *Store) GetArticle(ctx context.Context, id int64) (*news.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE id = $1`, articleColumns)
	rows, err := s.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	articles, err := scanArticles(rows)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, news.ErrNotFound
	}
	article := articles[0]
	if err := s.loadMatches(ctx, &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// AllArticles returns the whole corpus, newest first, without match lists.
// The aggregator does not read matches, so they are not fetched.
func (s *Store) AllArticles(ctx context.Context) ([]news.Article, error) {
	query := fmt.Sprintf(`SELECT %s FROM articles ORDER BY published_at DESC`, articleColumns)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	return scanArticles(rows)
}

func (s *Store) loadMatches(ctx context.Context, a *news.Article) error {
	var err error
	if a.BDMatches, err = s.queryMatches(ctx, "bd_matches", a.ID); err != nil {
		return err
	}
	if a.IntMatches, err = s.queryMatches(ctx, "int_matches", a.ID); err != nil {
		return err
	}
	return nil
}

func (s *Store) queryMatches(ctx context.Context, table string, articleID int64) ([]news.Match, error) {
	query := fmt.Sprintf(`SELECT title, source, url FROM %s WHERE article_id = $1 ORDER BY position`, table)
	rows, err := s.pool.Query(ctx, query, articleID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var out []news.Match
	for rows.Next() {
		var m news.Match
		if err := rows.Scan(&m.Title, &m.Source, &m.URL); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

func buildWhere(filter news.ArticleFilter) (string, []any) {
	var clauses []string
	var args []any
	add := func(clause string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if filter.Source != "" {
		add("source = $%d", filter.Source)
	}
	if filter.Sentiment != "" {
		add("sentiment = $%d", filter.Sentiment)
	}
	if !filter.Start.IsZero() {
		add("published_at >= $%d", filter.Start)
	}
	if !filter.End.IsZero() {
		add("published_at <= $%d", filter.End)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR full_text ILIKE $%d)", len(args), len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanArticles(rows pgx.Rows) ([]news.Article, error) {
	defer rows.Close()

	var out []news.Article
	for rows.Next() {
		var (
			a           news.Article
			sentiment   string
			factCheck   string
			extrasJSON  []byte
			summaryJSON []byte
		)
		err := rows.Scan(
			&a.ID, &a.URL, &a.Title, &a.PublishedAt, &a.Author, &a.Source,
			&sentiment, &factCheck, &a.Category, &a.BDSummary, &a.IntSummary,
			&a.Image, &a.Favicon, &a.Score, &extrasJSON, &a.FullText,
			&summaryJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		a.Sentiment = news.Sentiment(sentiment)
		a.FactCheck = news.FactCheck(factCheck)
		a.SummaryJSON = summaryJSON
		if len(extrasJSON) > 0 {
			if err := json.Unmarshal(extrasJSON, &a.Extras); err != nil {
				a.Extras = nil
			}
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate articles: %w", err)
	}
	return out, nil
}
