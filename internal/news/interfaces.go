package news

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an article identity does not exist.
var ErrNotFound = errors.New("article not found")

// Store is the persistence contract consumed by the orchestrator and the
// read side.
type Store interface {
	// UpsertArticle creates or updates the row identified by article.URL and
	// returns its durable id. Match lists are written separately because the
	// match rows reference that id.
	UpsertArticle(ctx context.Context, article *Article) (int64, error)

	// ReplaceMatches deletes every match row for the article in both lists
	// and inserts the given ones in order. Replace, never merge.
	ReplaceMatches(ctx context.Context, articleID int64, bd, intl []Match) error

	// ListArticles returns the total count of rows matching the filter and
	// one page of them, newest first, with both match lists populated.
	ListArticles(ctx context.Context, filter ArticleFilter) (int, []Article, error)

	// GetArticle fetches one article by id. Returns ErrNotFound when absent.
	GetArticle(ctx context.Context, id int64) (*Article, error)

	// AllArticles returns the full corpus for aggregation, newest first.
	AllArticles(ctx context.Context) ([]Article, error)

	Close()
}

// RawResult is one raw record from the content-discovery service, before
// normalization. Summary is the annotation payload of unspecified shape.
type RawResult struct {
	Title         string
	URL           string
	PublishedDate string
	Author        string
	Image         string
	Favicon       string
	Score         float64
	Extras        map[string]any
	Text          string
	Summary       []byte
}

// SearchResponse is one bounded batch of raw results plus the undecoded
// response body, kept for archival.
type SearchResponse struct {
	Results []RawResult
	Raw     []byte
}

// Searcher is the external content-discovery collaborator.
type Searcher interface {
	Search(ctx context.Context) (*SearchResponse, error)
}

// Archiver persists raw response blobs for audit and replay.
type Archiver interface {
	Store(ctx context.Context, key string, data []byte) (string, error)
	Close() error
}

// Publisher emits ingestion events for downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) (string, error)
	Close() error
}

// Clock abstracts time.Now for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique identifiers for cycles and events.
type IDGenerator interface {
	NewID() (string, error)
}
