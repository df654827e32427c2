package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/simswatch/sims-analytics/internal/dashboard"
	"github.com/simswatch/sims-analytics/internal/ingest"
	"github.com/simswatch/sims-analytics/internal/news"
)

// articleResponse is the article projection served to clients. Field names
// match the original REST contract the dashboard frontend consumes.
type articleResponse struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	URL           string         `json:"url"`
	PublishedDate string         `json:"publishedDate"`
	Author        string         `json:"author"`
	Score         float64        `json:"score"`
	Text          string         `json:"text"`
	Summary       any            `json:"summary"`
	Image         string         `json:"image"`
	Favicon       string         `json:"favicon"`
	Extras        map[string]any `json:"extras"`
	Source        string         `json:"source"`
	Sentiment     string         `json:"sentiment"`
	FactCheck     string         `json:"fact_check"`
	BDSummary     string         `json:"bangladeshi_summary"`
	IntSummary    string         `json:"international_summary"`
	BDMatches     []news.Match   `json:"bangladeshi_matches"`
	IntMatches    []news.Match   `json:"international_matches"`
}

type listResponse struct {
	Total   int               `json:"total"`
	Count   int               `json:"count"`
	Results []articleResponse `json:"results"`
}

func toArticleResponse(a news.Article) articleResponse {
	var summary any
	if len(a.SummaryJSON) > 0 {
		// The canonical payload is stored as JSON; decode failures leave the
		// field null rather than failing the request.
		_ = json.Unmarshal(a.SummaryJSON, &summary)
	}
	bd := a.BDMatches
	if bd == nil {
		bd = []news.Match{}
	}
	intl := a.IntMatches
	if intl == nil {
		intl = []news.Match{}
	}
	return articleResponse{
		ID:            a.ID,
		Title:         a.Title,
		URL:           a.URL,
		PublishedDate: a.PublishedAt.Format(time.RFC3339),
		Author:        a.Author,
		Score:         a.Score,
		Text:          a.FullText,
		Summary:       summary,
		Image:         a.Image,
		Favicon:       a.Favicon,
		Extras:        a.Extras,
		Source:        a.Source,
		Sentiment:     string(a.Sentiment),
		FactCheck:     string(a.FactCheck),
		BDSummary:     a.BDSummary,
		IntSummary:    a.IntSummary,
		BDMatches:     bd,
		IntMatches:    intl,
	}
}

func (s *Server) listArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := news.ArticleFilter{
		Source:    q.Get("source"),
		Sentiment: q.Get("sentiment"),
		Search:    q.Get("search"),
		Limit:     intParam(q.Get("limit"), 20),
		Offset:    intParam(q.Get("offset"), 0),
	}
	// Malformed date bounds are ignored rather than rejected, matching the
	// original endpoint.
	filter.Start = dateParam(q.Get("start"))
	filter.End = dateParam(q.Get("end"))

	total, articles, err := s.store.ListArticles(r.Context(), filter)
	if err != nil {
		s.logger.Error("list articles failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list articles")
		return
	}

	results := make([]articleResponse, 0, len(articles))
	for _, a := range articles {
		results = append(results, toArticleResponse(a))
	}
	s.writeJSON(w, http.StatusOK, listResponse{
		Total:   total,
		Count:   len(results),
		Results: results,
	})
}

func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}
	article, err := s.store.GetArticle(r.Context(), id)
	if err != nil {
		if errors.Is(err, news.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "article not found")
			return
		}
		s.logger.Error("get article failed", zap.Int64("id", id), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to fetch article")
		return
	}
	s.writeJSON(w, http.StatusOK, toArticleResponse(*article))
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := dashboard.Params{
		Category: q.Get("category"),
		Start:    dateParam(q.Get("start")),
		End:      dateParam(q.Get("end")),
	}

	corpus, err := s.store.AllArticles(r.Context())
	if err != nil {
		s.logger.Error("load corpus failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to build dashboard")
		return
	}
	s.writeJSON(w, http.StatusOK, s.aggregator.Build(corpus, params))
}

func (s *Server) triggerIngest(w http.ResponseWriter, _ *http.Request) {
	if s.ingestor.Running() {
		s.writeError(w, http.StatusConflict, "ingestion cycle already in flight")
		return
	}
	go func() {
		// Detached from the request: the cycle outlives the HTTP response.
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := s.ingestor.RunCycle(ctx); err != nil && !errors.Is(err, ingest.ErrCycleInFlight) {
			s.logger.Error("on-demand ingestion cycle failed", zap.Error(err))
		}
	}()
	s.writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func intParam(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func dateParam(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
