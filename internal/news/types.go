// Package news holds the canonical domain types and the contracts between the
// ingestion pipeline, the repository and the read side.
package news

import (
	"strings"
	"time"
)

// Sentiment labels an article's overall tone toward Bangladesh.
type Sentiment string

// Canonical sentiment values. Anything else collapses to Neutral.
const (
	SentimentPositive Sentiment = "Positive"
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentCautious Sentiment = "Cautious"
)

// FactCheck is the cross-media verification verdict for an article.
type FactCheck string

// Canonical fact-check verdicts. Anything else collapses to Unverified.
const (
	FactCheckTrue       FactCheck = "True"
	FactCheckFalse      FactCheck = "False"
	FactCheckMixed      FactCheck = "Mixed"
	FactCheckUnverified FactCheck = "Unverified"
)

// Defaults applied when the annotation payload is missing a field.
const (
	CategoryGeneral   = "General"
	SourceOther       = "Other"
	SummaryNotCovered = "Not covered"
)

// Article is the canonical record produced by the normalizer, keyed by URL.
type Article struct {
	ID          int64
	URL         string
	Title       string
	PublishedAt time.Time
	Author      string
	Source      string
	Sentiment   Sentiment
	FactCheck   FactCheck
	Category    string
	BDSummary   string
	IntSummary  string
	Image       string
	Favicon     string
	Score       float64
	Extras      map[string]any
	FullText    string
	// SummaryJSON is the re-serialized normalized annotation, stored so every
	// reader sees one schema no matter which payload shape produced the row.
	SummaryJSON []byte

	BDMatches  []Match
	IntMatches []Match
}

// Match references a corroborating article from another outlet. Each article
// carries at most MaxMatches of them per list, replaced wholesale on update.
type Match struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	URL    string `json:"url"`
}

// MaxMatches bounds each match list.
const MaxMatches = 3

// NormalizeSentiment capitalizes the raw value and collapses anything outside
// the canonical set to Neutral.
func NormalizeSentiment(raw string) Sentiment {
	switch Sentiment(capitalize(raw)) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	case SentimentCautious:
		return SentimentCautious
	default:
		return SentimentNeutral
	}
}

// NormalizeFactCheck capitalizes the raw value and collapses anything outside
// the canonical set to Unverified.
func NormalizeFactCheck(raw string) FactCheck {
	switch FactCheck(capitalize(raw)) {
	case FactCheckTrue:
		return FactCheckTrue
	case FactCheckFalse:
		return FactCheckFalse
	case FactCheckMixed:
		return FactCheckMixed
	default:
		return FactCheckUnverified
	}
}

func capitalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// ArticleFilter narrows the list query. Zero values mean "no filter".
type ArticleFilter struct {
	Source    string
	Sentiment string
	Start     time.Time
	End       time.Time
	Search    string
	Limit     int
	Offset    int
}
