package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/simswatch/sims-analytics/internal/news"
)

func article(url string, published time.Time) *news.Article {
	return &news.Article{
		URL:         url,
		Title:       "Title for " + url,
		PublishedAt: published,
		Source:      "ndtv.com",
		Sentiment:   news.SentimentNeutral,
		FactCheck:   news.FactCheckUnverified,
		Category:    "Politics",
	}
}

func TestUpsertIsIdempotentByURL(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	published := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	first := article("https://ndtv.com/a", published)
	id, err := s.UpsertArticle(ctx, first)
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	require.NoError(t, s.ReplaceMatches(ctx, id, []news.Match{{Title: "old"}}, nil))

	updated := article("https://ndtv.com/a", published)
	updated.Sentiment = news.SentimentNegative
	again, err := s.UpsertArticle(ctx, updated)
	require.NoError(t, err)
	require.Equal(t, id, again)

	got, err := s.GetArticle(ctx, id)
	require.NoError(t, err)
	require.Equal(t, news.SentimentNegative, got.Sentiment)
	// The upsert itself leaves match lists alone.
	require.Equal(t, []news.Match{{Title: "old"}}, got.BDMatches)

	total, _, err := s.ListArticles(ctx, news.ArticleFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
}

func TestReplaceMatchesOverwritesAndTruncates(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	id, err := s.UpsertArticle(ctx, article("https://ndtv.com/a", time.Now()))
	require.NoError(t, err)

	long := []news.Match{{Title: "1"}, {Title: "2"}, {Title: "3"}, {Title: "4"}}
	require.NoError(t, s.ReplaceMatches(ctx, id, long, []news.Match{{Title: "intl"}}))

	got, err := s.GetArticle(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.BDMatches, news.MaxMatches)
	require.Len(t, got.IntMatches, 1)

	require.NoError(t, s.ReplaceMatches(ctx, id, nil, nil))
	got, err = s.GetArticle(ctx, id)
	require.NoError(t, err)
	require.Empty(t, got.BDMatches)
	require.Empty(t, got.IntMatches)

	require.ErrorIs(t, s.ReplaceMatches(ctx, 999, nil, nil), news.ErrNotFound)
}

func TestListArticlesFilterSortPage(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	older := article("https://ndtv.com/old", base.Add(-48*time.Hour))
	older.Sentiment = news.SentimentPositive
	newer := article("https://ndtv.com/new", base)
	other := article("https://bdnews24.com/x", base.Add(-24*time.Hour))
	other.Source = "bdnews24.com"
	other.Title = "Flood warning issued"

	for _, a := range []*news.Article{older, newer, other} {
		_, err := s.UpsertArticle(ctx, a)
		require.NoError(t, err)
	}

	total, page, err := s.ListArticles(ctx, news.ArticleFilter{})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Equal(t, "https://ndtv.com/new", page[0].URL)
	require.Equal(t, "https://ndtv.com/old", page[2].URL)

	total, page, err = s.ListArticles(ctx, news.ArticleFilter{Source: "bdnews24.com"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "https://bdnews24.com/x", page[0].URL)

	total, page, err = s.ListArticles(ctx, news.ArticleFilter{Sentiment: "Positive"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "https://ndtv.com/old", page[0].URL)

	total, page, err = s.ListArticles(ctx, news.ArticleFilter{Search: "flood"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "https://bdnews24.com/x", page[0].URL)

	total, page, err = s.ListArticles(ctx, news.ArticleFilter{
		Start: base.Add(-30 * time.Hour),
		End:   base.Add(-time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, "https://bdnews24.com/x", page[0].URL)

	total, page, err = s.ListArticles(ctx, news.ArticleFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Equal(t, 3, total)
	require.Len(t, page, 1)

	_, page, err = s.ListArticles(ctx, news.ArticleFilter{Offset: 10})
	require.NoError(t, err)
	require.Empty(t, page)
}

func TestGetArticleReturnsCopy(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()
	id, err := s.UpsertArticle(ctx, article("https://ndtv.com/a", time.Now()))
	require.NoError(t, err)
	require.NoError(t, s.ReplaceMatches(ctx, id, []news.Match{{Title: "orig"}}, nil))

	got, err := s.GetArticle(ctx, id)
	require.NoError(t, err)
	got.BDMatches[0].Title = "mutated"
	got.Title = "mutated"

	fresh, err := s.GetArticle(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "orig", fresh.BDMatches[0].Title)
	require.NotEqual(t, "mutated", fresh.Title)

	_, err = s.GetArticle(ctx, 999)
	require.ErrorIs(t, err, news.ErrNotFound)
}
