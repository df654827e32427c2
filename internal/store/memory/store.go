// Package memory implements an in-memory article store for tests and local
// development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/simswatch/sims-analytics/internal/news"
)

// Store keeps articles in memory, keyed by URL like the real repository.
type Store struct {
	mu     sync.RWMutex
	nextID int64
	byURL  map[string]*news.Article
}

// New creates an empty Store.
func New() *Store {
	return &Store{byURL: make(map[string]*news.Article)}
}

// UpsertArticle mutates the record with the same URL in place or creates a
// new one, and returns its id.
func (s *Store) UpsertArticle(_ context.Context, a *news.Article) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.byURL[a.URL]
	if !ok {
		s.nextID++
		cp := cloneArticle(a)
		cp.ID = s.nextID
		s.byURL[a.URL] = cp
		a.ID = cp.ID
		return cp.ID, nil
	}

	id := existing.ID
	matchesBD, matchesInt := existing.BDMatches, existing.IntMatches
	*existing = *cloneArticle(a)
	existing.ID = id
	// Match lists are written separately via ReplaceMatches.
	existing.BDMatches, existing.IntMatches = matchesBD, matchesInt
	a.ID = id
	return id, nil
}

// ReplaceMatches overwrites both match lists for the article.
func (s *Store) ReplaceMatches(_ context.Context, articleID int64, bd, intl []news.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.byURL {
		if a.ID == articleID {
			a.BDMatches = truncateMatches(bd)
			a.IntMatches = truncateMatches(intl)
			return nil
		}
	}
	return news.ErrNotFound
}

// ListArticles applies the filter, sorts newest first and returns one page.
func (s *Store) ListArticles(_ context.Context, filter news.ArticleFilter) (int, []news.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []news.Article
	for _, a := range s.byURL {
		if matches(a, filter) {
			matched = append(matched, *cloneArticle(a))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	start := filter.Offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return total, matched[start:end], nil
}

// GetArticle fetches by id or returns news.ErrNotFound.
func (s *Store) GetArticle(_ context.Context, id int64) (*news.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.byURL {
		if a.ID == id {
			return cloneArticle(a), nil
		}
	}
	return nil, news.ErrNotFound
}

// AllArticles returns every stored article, newest first.
func (s *Store) AllArticles(_ context.Context) ([]news.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]news.Article, 0, len(s.byURL))
	for _, a := range s.byURL {
		out = append(out, *cloneArticle(a))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() {}

func matches(a *news.Article, f news.ArticleFilter) bool {
	if f.Source != "" && a.Source != f.Source {
		return false
	}
	if f.Sentiment != "" && string(a.Sentiment) != f.Sentiment {
		return false
	}
	if !f.Start.IsZero() && a.PublishedAt.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && a.PublishedAt.After(f.End) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(a.Title), needle) &&
			!strings.Contains(strings.ToLower(a.FullText), needle) {
			return false
		}
	}
	return true
}

func truncateMatches(in []news.Match) []news.Match {
	if len(in) > news.MaxMatches {
		in = in[:news.MaxMatches]
	}
	return append([]news.Match(nil), in...)
}

func cloneArticle(a *news.Article) *news.Article {
	cp := *a
	cp.BDMatches = append([]news.Match(nil), a.BDMatches...)
	cp.IntMatches = append([]news.Match(nil), a.IntMatches...)
	cp.SummaryJSON = append([]byte(nil), a.SummaryJSON...)
	if a.Extras != nil {
		cp.Extras = make(map[string]any, len(a.Extras))
		for k, v := range a.Extras {
			cp.Extras[k] = v
		}
	}
	return &cp
}
