// Package ingest drives ingestion cycles: fetch one batch of raw results
// from the discovery service, normalize each item and commit it.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/simswatch/sims-analytics/internal/metrics"
	"github.com/simswatch/sims-analytics/internal/news"
	"github.com/simswatch/sims-analytics/internal/normalize"
)

// ErrCycleInFlight is returned when a cycle is requested while another one
// is still running. Concurrent cycles could interleave the upsert and
// match-replacement phases, so at most one runs at a time.
var ErrCycleInFlight = errors.New("ingestion cycle already in flight")

// Topics the ingestor publishes on.
const (
	TopicCycleCompleted  = "ingest.cycle.completed"
	TopicArticleUpserted = "ingest.article.upserted"
)

// Stats summarizes one completed cycle.
type Stats struct {
	CycleID   string    `json:"cycle_id"`
	StartedAt time.Time `json:"started_at"`
	Duration  string    `json:"duration"`
	Fetched   int       `json:"fetched"`
	Committed int       `json:"committed"`
	Skipped   int       `json:"skipped"`
	Failed    int       `json:"failed"`
}

// ArticleEvent is published after each successful commit.
type ArticleEvent struct {
	CycleID   string `json:"cycle_id"`
	ArticleID int64  `json:"article_id"`
	URL       string `json:"url"`
	Source    string `json:"source"`
	Category  string `json:"category"`
}

// Ingestor runs ingestion cycles against the store.
type Ingestor struct {
	searcher   news.Searcher
	store      news.Store
	normalizer *normalize.Normalizer
	archiver   news.Archiver
	publisher  news.Publisher
	clock      news.Clock
	ids        news.IDGenerator
	logger     *zap.Logger

	running atomic.Bool
}

// New constructs an Ingestor. Archiver and publisher are required; pass the
// noop implementations to disable them.
func New(
	searcher news.Searcher,
	store news.Store,
	normalizer *normalize.Normalizer,
	archiver news.Archiver,
	publisher news.Publisher,
	clock news.Clock,
	ids news.IDGenerator,
	logger *zap.Logger,
) *Ingestor {
	return &Ingestor{
		searcher:   searcher,
		store:      store,
		normalizer: normalizer,
		archiver:   archiver,
		publisher:  publisher,
		clock:      clock,
		ids:        ids,
		logger:     logger,
	}
}

// RunCycle executes one full ingestion cycle.
//
// A failure of the search call aborts the cycle; everything after that is
// isolated per item: a bad result is logged and skipped, and items already
// committed stay committed. Only one cycle runs at a time.
func (i *Ingestor) RunCycle(ctx context.Context) (Stats, error) {
	if !i.running.CompareAndSwap(false, true) {
		return Stats{}, ErrCycleInFlight
	}
	defer i.running.Store(false)

	cycleID, err := i.ids.NewID()
	if err != nil {
		return Stats{}, fmt.Errorf("generate cycle id: %w", err)
	}
	started := i.clock.Now()
	stats := Stats{CycleID: cycleID, StartedAt: started}
	log := i.logger.With(zap.String("cycle_id", cycleID))

	log.Info("starting ingestion cycle")
	resp, err := i.searcher.Search(ctx)
	if err != nil {
		metrics.ObserveCycle("failed", i.clock.Now().Sub(started))
		return stats, fmt.Errorf("search: %w", err)
	}
	stats.Fetched = len(resp.Results)
	log.Info("fetched raw results", zap.Int("count", stats.Fetched))

	i.archiveResponse(ctx, log, cycleID, started, resp.Raw)

	for _, raw := range resp.Results {
		i.processItem(ctx, log, cycleID, raw, &stats)
	}

	stats.Duration = i.clock.Now().Sub(started).String()
	metrics.ObserveCycle("ok", i.clock.Now().Sub(started))
	if _, err := i.publisher.Publish(ctx, TopicCycleCompleted, stats); err != nil {
		log.Warn("publish cycle summary failed", zap.Error(err))
	}
	log.Info("ingestion cycle finished",
		zap.Int("committed", stats.Committed),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

// Running reports whether a cycle is currently in flight.
func (i *Ingestor) Running() bool {
	return i.running.Load()
}

// processItem normalizes and commits one raw result. Errors never escape the
// item boundary.
func (i *Ingestor) processItem(ctx context.Context, log *zap.Logger, cycleID string, raw news.RawResult, stats *Stats) {
	itemLog := log.With(zap.String("url", raw.URL))

	article, err := i.normalizer.Normalize(raw)
	if err != nil {
		itemLog.Warn("normalize failed, skipping item", zap.Error(err))
		stats.Failed++
		metrics.ObserveItem(metrics.OutcomeFailed)
		return
	}
	if article == nil {
		itemLog.Debug("no annotation payload, skipping item")
		stats.Skipped++
		metrics.ObserveItem(metrics.OutcomeSkipped)
		return
	}

	id, err := i.store.UpsertArticle(ctx, article)
	if err != nil {
		itemLog.Warn("upsert failed, skipping item", zap.Error(err))
		stats.Failed++
		metrics.ObserveItem(metrics.OutcomeFailed)
		return
	}
	if err := i.store.ReplaceMatches(ctx, id, article.BDMatches, article.IntMatches); err != nil {
		// The article row is already committed; the stale match lists are an
		// accepted consequence of the two-phase write.
		itemLog.Warn("replace matches failed", zap.Int64("article_id", id), zap.Error(err))
		stats.Failed++
		metrics.ObserveItem(metrics.OutcomeFailed)
		return
	}

	stats.Committed++
	metrics.ObserveItem(metrics.OutcomeCommitted)
	event := ArticleEvent{
		CycleID:   cycleID,
		ArticleID: id,
		URL:       article.URL,
		Source:    article.Source,
		Category:  article.Category,
	}
	if _, err := i.publisher.Publish(ctx, TopicArticleUpserted, event); err != nil {
		itemLog.Warn("publish article event failed", zap.Error(err))
	}
}

func (i *Ingestor) archiveResponse(ctx context.Context, log *zap.Logger, cycleID string, started time.Time, raw []byte) {
	if len(raw) == 0 {
		return
	}
	key := fmt.Sprintf("%s/%s.json", started.UTC().Format("2006/01/02"), cycleID)
	uri, err := i.archiver.Store(ctx, key, raw)
	if err != nil {
		log.Warn("archive raw response failed", zap.Error(err))
		return
	}
	log.Debug("archived raw response", zap.String("uri", uri))
}
