package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/simswatch/sims-analytics/internal/archive"
	"github.com/simswatch/sims-analytics/internal/classify"
	"github.com/simswatch/sims-analytics/internal/config"
	"github.com/simswatch/sims-analytics/internal/dashboard"
	"github.com/simswatch/sims-analytics/internal/ingest"
	"github.com/simswatch/sims-analytics/internal/metrics"
	"github.com/simswatch/sims-analytics/internal/news"
	"github.com/simswatch/sims-analytics/internal/normalize"
	"github.com/simswatch/sims-analytics/internal/notify"
	"github.com/simswatch/sims-analytics/internal/store/memory"
)

type stubSearcher struct {
	resp *news.SearchResponse
	err  error
}

func (s *stubSearcher) Search(context.Context) (*news.SearchResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.resp != nil {
		return s.resp, nil
	}
	return &news.SearchResponse{}, nil
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type fixedIDs struct{}

func (fixedIDs) NewID() (string, error) { return "cycle-test", nil }

func newTestServer(t *testing.T, store news.Store, cfg config.Config) *Server {
	t.Helper()
	metrics.Init()

	classifier := classify.New(classify.DefaultTaxonomy)
	normalizer := normalize.New(classifier, news.DefaultSourceSets)
	ingestor := ingest.New(
		&stubSearcher{},
		store,
		normalizer,
		archive.NoOp{},
		notify.NoOp{},
		realClock{},
		fixedIDs{},
		zap.NewNop(),
	)
	aggregator := dashboard.New(classifier, news.DefaultSourceSets, nil)
	return NewServer(store, ingestor, aggregator, cfg, zap.NewNop())
}

func seedArticle(t *testing.T, store news.Store, url string, published time.Time) int64 {
	t.Helper()
	a := &news.Article{
		URL:         url,
		Title:       "Border talks resume",
		PublishedAt: published,
		Source:      "ndtv.com",
		Sentiment:   news.SentimentNegative,
		FactCheck:   news.FactCheckMixed,
		Category:    "Security",
		BDSummary:   "Covered prominently",
		IntSummary:  news.SummaryNotCovered,
		SummaryJSON: []byte(`{"category":"Security"}`),
	}
	id, err := store.UpsertArticle(context.Background(), a)
	require.NoError(t, err)
	require.NoError(t, store.ReplaceMatches(context.Background(), id, []news.Match{
		{Title: "BD take", Source: "thedailystar.net", URL: "https://thedailystar.net/a"},
	}, nil))
	return id
}

func doRequest(t *testing.T, s *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, memory.New(), config.Config{})
	rec := doRequest(t, s, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestListArticles(t *testing.T) {
	t.Parallel()

	store := memory.New()
	published := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	seedArticle(t, store, "https://ndtv.com/a", published)
	seedArticle(t, store, "https://ndtv.com/b", published.Add(time.Hour))

	s := newTestServer(t, store, config.Config{})
	rec := doRequest(t, s, http.MethodGet, "/api/articles")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total   int              `json:"total"`
		Count   int              `json:"count"`
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 2, body.Total)
	require.Equal(t, 2, body.Count)
	// Newest first.
	require.Equal(t, "https://ndtv.com/b", body.Results[0]["url"])

	first := body.Results[1]
	require.Equal(t, "Border talks resume", first["title"])
	require.Equal(t, "2025-06-01T10:30:00Z", first["publishedDate"])
	require.Equal(t, "Mixed", first["fact_check"])
	require.Equal(t, "Covered prominently", first["bangladeshi_summary"])
	require.Equal(t, "Not covered", first["international_summary"])

	matches, ok := first["bangladeshi_matches"].([]any)
	require.True(t, ok)
	require.Len(t, matches, 1)
	require.Equal(t, []any{}, first["international_matches"])

	summary, ok := first["summary"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Security", summary["category"])
}

func TestListArticlesFilters(t *testing.T) {
	t.Parallel()

	store := memory.New()
	published := time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)
	seedArticle(t, store, "https://ndtv.com/a", published)

	s := newTestServer(t, store, config.Config{})

	rec := doRequest(t, s, http.MethodGet, "/api/articles?source=bbc.com")
	var body struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Zero(t, body.Total)

	// A malformed date bound is ignored, not rejected.
	rec = doRequest(t, s, http.MethodGet, "/api/articles?start=not-a-date")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
}

func TestGetArticle(t *testing.T) {
	t.Parallel()

	store := memory.New()
	id := seedArticle(t, store, "https://ndtv.com/a", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	s := newTestServer(t, store, config.Config{})

	rec := doRequest(t, s, http.MethodGet, "/api/articles/1")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.EqualValues(t, id, body["id"])

	rec = doRequest(t, s, http.MethodGet, "/api/articles/999")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, s, http.MethodGet, "/api/articles/not-a-number")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDashboard(t *testing.T) {
	t.Parallel()

	store := memory.New()
	seedArticle(t, store, "https://ndtv.com/a", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	s := newTestServer(t, store, config.Config{})

	rec := doRequest(t, s, http.MethodGet, "/api/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	for _, key := range []string{
		"latestIndianNews", "timelineEvents", "languageDistribution",
		"factChecking", "keySources", "toneSentiment", "implications",
		"predictions",
	} {
		require.Contains(t, body, key)
	}

	feed, ok := body["latestIndianNews"].([]any)
	require.True(t, ok)
	require.Len(t, feed, 1)
}

func TestTriggerIngest(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, memory.New(), config.Config{})
	rec := doRequest(t, s, http.MethodPost, "/api/ingest")
	require.Equal(t, http.StatusAccepted, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "started", body["status"])
}

func TestTriggerIngestRequiresAPIKey(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}
	cfg.Auth.Enabled = true
	cfg.Auth.APIKey = "secret"
	s := newTestServer(t, memory.New(), cfg)

	rec := doRequest(t, s, http.MethodPost, "/api/ingest")
	require.Equal(t, http.StatusForbidden, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", nil)
	req.Header.Set("X-API-Key", "secret")
	out := httptest.NewRecorder()
	s.Handler().ServeHTTP(out, req)
	require.Equal(t, http.StatusAccepted, out.Code)

	// Reads stay open.
	rec = doRequest(t, s, http.MethodGet, "/api/articles")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, memory.New(), config.Config{})
	rec := doRequest(t, s, http.MethodGet, "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
}
