package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/simswatch/sims-analytics/internal/news"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	store, err := NewWithPool(mock)
	require.NoError(t, err)
	return store, mock
}

func sampleArticle() *news.Article {
	return &news.Article{
		URL:         "https://ndtv.com/world/border-talks",
		Title:       "Border talks resume",
		PublishedAt: time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		Author:      "Staff Reporter",
		Source:      "ndtv.com",
		Sentiment:   news.SentimentNegative,
		FactCheck:   news.FactCheckMixed,
		Category:    "Security",
		BDSummary:   "Covered prominently",
		IntSummary:  news.SummaryNotCovered,
		Score:       0.82,
		FullText:    "Officials met at the border.",
		SummaryJSON: []byte(`{"category":"Security"}`),
	}
}

func TestUpsertArticleReturnsID(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	a := sampleArticle()

	mock.ExpectQuery("INSERT INTO articles").
		WithArgs(
			a.URL, a.Title, a.PublishedAt, a.Author, a.Source,
			string(a.Sentiment), string(a.FactCheck), a.Category,
			a.BDSummary, a.IntSummary, a.Image, a.Favicon, a.Score,
			[]byte("null"), a.FullText, a.SummaryJSON,
		).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := store.UpsertArticle(context.Background(), a)
	require.NoError(t, err)
	require.Equal(t, int64(42), id)
	require.Equal(t, int64(42), a.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertArticleRequiresURL(t *testing.T) {
	t.Parallel()

	store, _ := newMockStore(t)
	_, err := store.UpsertArticle(context.Background(), &news.Article{})
	require.Error(t, err)
}

func TestReplaceMatchesRewritesBothTables(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	bd := []news.Match{
		{Title: "BD take", Source: "thedailystar.net", URL: "https://thedailystar.net/a"},
		{Title: "Second", Source: "bdnews24.com", URL: "https://bdnews24.com/b"},
	}
	intl := []news.Match{
		{Title: "Intl take", Source: "reuters.com", URL: "https://reuters.com/c"},
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM bd_matches").
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	mock.ExpectExec("INSERT INTO bd_matches").
		WithArgs(int64(7), 0, bd[0].Title, bd[0].Source, bd[0].URL).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO bd_matches").
		WithArgs(int64(7), 1, bd[1].Title, bd[1].Source, bd[1].URL).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("DELETE FROM int_matches").
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO int_matches").
		WithArgs(int64(7), 0, intl[0].Title, intl[0].Source, intl[0].URL).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := store.ReplaceMatches(context.Background(), 7, bd, intl)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceMatchesEmptyListsStillClear(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM bd_matches").
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	mock.ExpectExec("DELETE FROM int_matches").
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := store.ReplaceMatches(context.Background(), 7, nil, nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceMatchesRollsBackOnInsertFailure(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM bd_matches").
		WithArgs(int64(7)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO bd_matches").
		WithArgs(int64(7), 0, "t", "s", "u").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := store.ReplaceMatches(context.Background(), 7, []news.Match{{Title: "t", Source: "s", URL: "u"}}, nil)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func articleRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "url", "title", "published_at", "author", "source", "sentiment",
		"fact_check", "category", "bd_summary", "int_summary", "image",
		"favicon", "score", "extras", "full_text", "summary_json",
	})
}

func addArticleRow(rows *pgxmock.Rows, id int64, url string, published time.Time) *pgxmock.Rows {
	return rows.AddRow(
		id, url, "Border talks resume", published, "Staff Reporter",
		"ndtv.com", "Negative", "Mixed", "Security", "Covered prominently",
		"Not covered", "", "", 0.82, []byte(`{"links":["https://a"]}`),
		"Officials met at the border.", []byte(`{"category":"Security"}`),
	)
}

func TestListArticlesFiltersAndPaginates(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	published := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM articles WHERE source = \$1`).
		WithArgs("ndtv.com").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`SELECT .+ FROM articles WHERE source = \$1 ORDER BY published_at DESC LIMIT \$2 OFFSET \$3`).
		WithArgs("ndtv.com", 2, 1).
		WillReturnRows(addArticleRow(articleRows(), 42, "https://ndtv.com/a", published))
	mock.ExpectQuery("SELECT title, source, url FROM bd_matches").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"title", "source", "url"}).
			AddRow("BD take", "thedailystar.net", "https://thedailystar.net/a"))
	mock.ExpectQuery("SELECT title, source, url FROM int_matches").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"title", "source", "url"}))

	total, articles, err := store.ListArticles(context.Background(), news.ArticleFilter{
		Source: "ndtv.com",
		Limit:  2,
		Offset: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 5, total)
	require.Len(t, articles, 1)
	require.Equal(t, int64(42), articles[0].ID)
	require.Equal(t, news.SentimentNegative, articles[0].Sentiment)
	require.Equal(t, []news.Match{{
		Title:  "BD take",
		Source: "thedailystar.net",
		URL:    "https://thedailystar.net/a",
	}}, articles[0].BDMatches)
	require.Empty(t, articles[0].IntMatches)
	require.Equal(t, map[string]any{"links": []any{"https://a"}}, articles[0].Extras)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListArticlesDefaultLimit(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM articles`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY published_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 0).
		WillReturnRows(articleRows())

	total, articles, err := store.ListArticles(context.Background(), news.ArticleFilter{})
	require.NoError(t, err)
	require.Zero(t, total)
	require.Empty(t, articles)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetArticleNotFound(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT .+ FROM articles WHERE id").
		WithArgs(int64(99)).
		WillReturnRows(articleRows())

	_, err := store.GetArticle(context.Background(), 99)
	require.ErrorIs(t, err, news.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetArticleLoadsMatches(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	published := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .+ FROM articles WHERE id").
		WithArgs(int64(42)).
		WillReturnRows(addArticleRow(articleRows(), 42, "https://ndtv.com/a", published))
	mock.ExpectQuery("SELECT title, source, url FROM bd_matches").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"title", "source", "url"}))
	mock.ExpectQuery("SELECT title, source, url FROM int_matches").
		WithArgs(int64(42)).
		WillReturnRows(pgxmock.NewRows([]string{"title", "source", "url"}).
			AddRow("Intl take", "reuters.com", "https://reuters.com/c"))

	article, err := store.GetArticle(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, "https://ndtv.com/a", article.URL)
	require.Len(t, article.IntMatches, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAllArticlesSkipsMatches(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	published := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)

	rows := addArticleRow(articleRows(), 1, "https://ndtv.com/a", published)
	rows = addArticleRow(rows, 2, "https://ndtv.com/b", published.Add(-time.Hour))
	mock.ExpectQuery("SELECT .+ FROM articles ORDER BY published_at DESC").
		WillReturnRows(rows)

	articles, err := store.AllArticles(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)
	require.Nil(t, articles[0].BDMatches)
	require.NoError(t, mock.ExpectationsWereMet())
}
