// Package dashboard derives the analytics view from the persisted corpus.
// Everything here is a pure computation over a slice of articles, executed
// fresh on every request.
package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/simswatch/sims-analytics/internal/classify"
	"github.com/simswatch/sims-analytics/internal/news"
)

const (
	feedLimit       = 20
	timelineLimit   = 20
	keySourcesLimit = 5
)

// Dashboard is the aggregated view served to the UI. Field names follow the
// frontend contract.
type Dashboard struct {
	LatestIndianNews     []FeedItem      `json:"latestIndianNews"`
	TimelineEvents       []TimelineEvent `json:"timelineEvents"`
	LanguageDistribution map[string]int  `json:"languageDistribution"`
	FactChecking         FactChecking    `json:"factChecking"`
	KeySources           []string        `json:"keySources"`
	ToneSentiment        map[string]int  `json:"toneSentiment"`
	Implications         []Implication   `json:"implications"`
	Predictions          []Prediction    `json:"predictions"`
}

// FeedItem is one row of the regional news feed.
type FeedItem struct {
	ID         int64  `json:"id"`
	Date       string `json:"date"`
	Headline   string `json:"headline"`
	Source     string `json:"source"`
	Category   string `json:"category"`
	Sentiment  string `json:"sentiment"`
	DetailsURL string `json:"detailsUrl"`
}

// TimelineEvent is one entry of the key-events timeline.
type TimelineEvent struct {
	Date  string `json:"date"`
	Event string `json:"event"`
}

// FactChecking reports cross-media verification figures.
type FactChecking struct {
	BangladeshiAgreement   int    `json:"bangladeshiAgreement"`
	InternationalAgreement int    `json:"internationalAgreement"`
	VerificationStatus     string `json:"verificationStatus"`
}

// Implication is one heuristic signal over the sentiment histogram.
type Implication struct {
	Type   string `json:"type"`
	Impact string `json:"impact"`
}

// Params narrows the aggregation. Zero values mean "whole corpus".
type Params struct {
	Category string
	Start    time.Time
	End      time.Time
}

// Aggregator computes dashboards. Safe for concurrent use.
type Aggregator struct {
	classifier *classify.Classifier
	sources    news.SourceSets
	predictor  Predictor
}

// New builds an Aggregator. A nil predictor falls back to the static one.
func New(classifier *classify.Classifier, sources news.SourceSets, predictor Predictor) *Aggregator {
	if predictor == nil {
		predictor = StaticPredictor{}
	}
	return &Aggregator{classifier: classifier, sources: sources, predictor: predictor}
}

// Build computes the dashboard from the given corpus snapshot.
func (g *Aggregator) Build(corpus []news.Article, p Params) Dashboard {
	corpus = filterByDate(corpus, p.Start, p.End)

	return Dashboard{
		LatestIndianNews:     g.latestIndianNews(corpus, p.Category),
		TimelineEvents:       timelineEvents(corpus),
		LanguageDistribution: languageDistribution(corpus),
		FactChecking:         factChecking(corpus),
		KeySources:           keySources(corpus),
		ToneSentiment:        toneSentiment(corpus),
		Implications:         implications(toneSentiment(corpus)),
		Predictions:          g.predictor.Predictions(),
	}
}

func filterByDate(corpus []news.Article, start, end time.Time) []news.Article {
	if start.IsZero() && end.IsZero() {
		return corpus
	}
	out := make([]news.Article, 0, len(corpus))
	for _, a := range corpus {
		if !start.IsZero() && a.PublishedAt.Before(start) {
			continue
		}
		if !end.IsZero() && a.PublishedAt.After(end) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// latestIndianNews filters to the monitored Indian outlets, sorts the
// filtered set newest first, resolves each item's effective category, applies
// the optional category filter and keeps the first 20.
func (g *Aggregator) latestIndianNews(corpus []news.Article, category string) []FeedItem {
	var regional []news.Article
	for _, a := range corpus {
		if g.sources.IsIndian(a.Source) {
			regional = append(regional, a)
		}
	}
	sort.SliceStable(regional, func(i, j int) bool {
		return regional[i].PublishedAt.After(regional[j].PublishedAt)
	})

	items := make([]FeedItem, 0, feedLimit)
	for _, a := range regional {
		if len(items) == feedLimit {
			break
		}
		effective := g.effectiveCategory(a)
		if category != "" && !strings.EqualFold(effective, category) {
			continue
		}
		items = append(items, FeedItem{
			ID:         a.ID,
			Date:       a.PublishedAt.Format(time.RFC3339),
			Headline:   a.Title,
			Source:     a.Source,
			Category:   effective,
			Sentiment:  string(news.NormalizeSentiment(string(a.Sentiment))),
			DetailsURL: fmt.Sprintf("/news/%d", a.ID),
		})
	}
	return items
}

// effectiveCategory backfills rows stored before category inference existed.
func (g *Aggregator) effectiveCategory(a news.Article) string {
	if a.Category != "" && !strings.EqualFold(a.Category, news.CategoryGeneral) {
		return a.Category
	}
	return g.classifier.Classify(a.Title, a.FullText)
}

func timelineEvents(corpus []news.Article) []TimelineEvent {
	sorted := append([]news.Article(nil), corpus...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})
	if len(sorted) > timelineLimit {
		sorted = sorted[:timelineLimit]
	}
	out := make([]TimelineEvent, 0, len(sorted))
	for _, a := range sorted {
		out = append(out, TimelineEvent{
			Date:  a.PublishedAt.Format(time.RFC3339),
			Event: a.Title,
		})
	}
	return out
}

func languageDistribution(corpus []news.Article) map[string]int {
	dist := make(map[string]int)
	for _, a := range corpus {
		lang, ok := news.LanguageBySource[strings.ToLower(a.Source)]
		if !ok {
			lang = news.SourceOther
		}
		dist[lang]++
	}
	return dist
}

func factChecking(corpus []news.Article) FactChecking {
	agreement := 0
	for _, a := range corpus {
		if a.FactCheck == news.FactCheckTrue {
			agreement++
		}
	}
	status := "Unverified"
	if agreement > 0 {
		status = "Verified"
	}
	return FactChecking{
		BangladeshiAgreement: agreement,
		// No per-outlet verdicts are stored yet, so the international figure
		// is a placeholder rather than a computed statistic.
		InternationalAgreement: 0,
		VerificationStatus:     status,
	}
}

// keySources returns the five most frequent sources; ties keep
// first-encountered order.
func keySources(corpus []news.Article) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string
	for i, a := range corpus {
		source := a.Source
		if source == "" {
			source = news.SourceOther
		}
		if _, ok := counts[source]; !ok {
			firstSeen[source] = i
			order = append(order, source)
		}
		counts[source]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})
	if len(order) > keySourcesLimit {
		order = order[:keySourcesLimit]
	}
	return order
}

// toneSentiment counts the four canonical sentiments. Stored values are
// re-normalized so rows written before validation existed still land in a
// canonical bucket. Zero-count values never appear in the map.
func toneSentiment(corpus []news.Article) map[string]int {
	hist := make(map[string]int)
	for _, a := range corpus {
		hist[string(news.NormalizeSentiment(string(a.Sentiment)))]++
	}
	return hist
}

// implications applies independent, non-exclusive rules over the sentiment
// histogram; several can fire at once.
func implications(hist map[string]int) []Implication {
	var out []Implication
	if hist[string(news.SentimentNegative)] > hist[string(news.SentimentPositive)] {
		out = append(out, Implication{Type: "Critical coverage dominates", Impact: "High"})
	}
	if hist[string(news.SentimentPositive)] > 0 {
		out = append(out, Implication{Type: "Constructive bilateral coverage present", Impact: "Medium"})
	}
	if hist[string(news.SentimentNeutral)] > 0 {
		out = append(out, Implication{Type: "Neutral reporting baseline", Impact: "Low"})
	}
	return out
}
