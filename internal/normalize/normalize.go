// Package normalize reconciles the heterogeneous annotation payloads the
// content-discovery service has produced over time into one canonical
// article record.
package normalize

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/simswatch/sims-analytics/internal/classify"
	"github.com/simswatch/sims-analytics/internal/news"
)

// Normalizer turns raw search results into canonical articles. It is pure:
// the same input always yields the same record.
type Normalizer struct {
	classifier *classify.Classifier
	sources    news.SourceSets
}

// New builds a Normalizer around the given classifier and domain sets.
func New(classifier *classify.Classifier, sources news.SourceSets) *Normalizer {
	return &Normalizer{classifier: classifier, sources: sources}
}

// dateLayouts are tried in order against the raw publish timestamp.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Normalize converts one raw result into a canonical article plus its
// bounded match lists.
//
// A result without an annotation payload is skipped: both return values are
// nil and no record should be written. Any other problem (malformed publish
// date above all) is an error the caller handles at the item boundary.
func (n *Normalizer) Normalize(raw news.RawResult) (*news.Article, error) {
	ann := decodeAnnotation(raw.Summary)
	if ann.kind == payloadAbsent {
		return nil, nil
	}

	publishedAt, err := parseDate(raw.PublishedDate)
	if err != nil {
		return nil, fmt.Errorf("parse published date %q: %w", raw.PublishedDate, err)
	}

	article := &news.Article{
		URL:         raw.URL,
		Title:       raw.Title,
		PublishedAt: publishedAt,
		Author:      raw.Author,
		Image:       raw.Image,
		Favicon:     raw.Favicon,
		Score:       raw.Score,
		Extras:      raw.Extras,
		FullText:    raw.Text,
	}

	switch ann.kind {
	case payloadObject:
		n.applyObject(article, ann.obj)
	default:
		// Unparsed text or a shape we cannot extract from: everything
		// defaults, and the category comes from inference.
		n.applyDefaults(article)
	}

	summaryJSON, err := json.Marshal(canonicalSummary(article))
	if err != nil {
		return nil, fmt.Errorf("serialize canonical summary: %w", err)
	}
	article.SummaryJSON = summaryJSON

	return article, nil
}

func (n *Normalizer) applyObject(a *news.Article, obj map[string]any) {
	a.Source = n.sources.Normalize(lookupString(obj, "source"))
	a.Sentiment = news.NormalizeSentiment(lookupString(obj, "sentiment"))
	a.FactCheck = news.NormalizeFactCheck(lookupString(obj, "factCheck"))

	a.BDSummary = news.SummaryNotCovered
	a.IntSummary = news.SummaryNotCovered
	if comp := lookupObject(obj, "comparison"); comp != nil {
		if s := lookupString(comp, "bdSummary"); s != "" {
			a.BDSummary = s
		}
		if s := lookupString(comp, "intSummary"); s != "" {
			a.IntSummary = s
		}
	} else {
		// Legacy payloads carried the summaries at the top level.
		if s := lookupString(obj, "bdSummary"); s != "" {
			a.BDSummary = s
		}
		if s := lookupString(obj, "intSummary"); s != "" {
			a.IntSummary = s
		}
	}

	category := lookupString(obj, "category")
	if category == "" || strings.EqualFold(category, news.CategoryGeneral) {
		category = n.classifier.Classify(a.Title, a.FullText)
	}
	a.Category = category

	a.BDMatches = extractMatches(lookupList(obj, "bdMatches"))
	a.IntMatches = extractMatches(lookupList(obj, "intMatches"))
}

func (n *Normalizer) applyDefaults(a *news.Article) {
	a.Source = news.SourceOther
	a.Sentiment = news.SentimentNeutral
	a.FactCheck = news.FactCheckUnverified
	a.BDSummary = news.SummaryNotCovered
	a.IntSummary = news.SummaryNotCovered
	a.Category = n.classifier.Classify(a.Title, a.FullText)
}

// extractMatches tolerates partially populated match objects and truncates
// to the first MaxMatches entries, preserving order.
func extractMatches(list []any) []news.Match {
	var out []news.Match
	for _, entry := range list {
		if len(out) == news.MaxMatches {
			break
		}
		obj, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		m := news.Match{
			Title:  stringField(obj, "title"),
			Source: stringField(obj, "source"),
			URL:    stringField(obj, "url"),
		}
		out = append(out, m)
	}
	return out
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// summarySchema is the single canonical serialization of the normalized
// annotation, written back to the record so downstream readers see one
// schema regardless of which payload version produced it.
type summarySchema struct {
	Source     string           `json:"source"`
	Sentiment  news.Sentiment   `json:"sentiment"`
	FactCheck  news.FactCheck   `json:"fact_check"`
	Category   string           `json:"category"`
	Comparison comparisonSchema `json:"comparison"`
	BDMatches  []news.Match     `json:"bangladeshi_matches"`
	IntMatches []news.Match     `json:"international_matches"`
}

type comparisonSchema struct {
	BangladeshiMedia   string `json:"bangladeshi_media"`
	InternationalMedia string `json:"international_media"`
}

func canonicalSummary(a *news.Article) summarySchema {
	bd := a.BDMatches
	if bd == nil {
		bd = []news.Match{}
	}
	intl := a.IntMatches
	if intl == nil {
		intl = []news.Match{}
	}
	return summarySchema{
		Source:    a.Source,
		Sentiment: a.Sentiment,
		FactCheck: a.FactCheck,
		Category:  a.Category,
		Comparison: comparisonSchema{
			BangladeshiMedia:   a.BDSummary,
			InternationalMedia: a.IntSummary,
		},
		BDMatches:  bd,
		IntMatches: intl,
	}
}
