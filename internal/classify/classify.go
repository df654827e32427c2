// Package classify infers a topical category for an article from its text
// using a fixed keyword taxonomy.
package classify

import (
	"regexp"
	"strings"

	"github.com/simswatch/sims-analytics/internal/news"
)

// Category pairs a label with the keywords that select it.
type Category struct {
	Name     string
	Keywords []string
}

// DefaultTaxonomy is the ordered taxonomy used in production. The order is a
// deliberate priority tie-break: when text matches keywords from several
// categories, the earliest category wins, so reordering changes output.
var DefaultTaxonomy = []Category{
	{"Health", []string{
		"health", "hospital", "dengue", "covid", "vaccine", "disease",
		"doctor", "medicine", "outbreak", "epidemic", "malaria", "cholera",
	}},
	{"Politics", []string{
		"election", "government", "minister", "parliament", "bnp",
		"awami league", "political", "politics", "vote", "cabinet",
		"opposition", "interim", "diplomacy", "diplomatic",
	}},
	{"Economy", []string{
		"economy", "gdp", "inflation", "remittance", "export", "import",
		"trade deficit", "imf", "world bank", "taka", "rupee", "fiscal",
	}},
	{"Education", []string{
		"education", "school", "university", "student", "exam", "teacher",
		"curriculum", "campus", "admission",
	}},
	{"Security", []string{
		"border", "bsf", "bgb", "military", "army", "navy", "defence",
		"defense", "terrorism", "militant", "insurgent", "smuggling",
	}},
	{"Sports", []string{
		"cricket", "football", "match", "tournament", "series", "stadium",
		"bcb", "bcci", "world cup", "t20", "odi", "test match", "asia cup",
	}},
	{"Technology", []string{
		"technology", "internet", "digital", "startup", "software", "mobile",
		"telecom", "5g", "cyber", "ai", "satellite",
	}},
	{"Environment", []string{
		"climate", "flood", "cyclone", "environment", "pollution", "river",
		"delta", "monsoon", "drought", "erosion", "rainfall",
	}},
	{"International", []string{
		"united nations", "unhcr", "rohingya", "refugee", "bilateral",
		"treaty", "summit", "foreign ministry", "ambassador", "visa",
	}},
	{"Culture", []string{
		"culture", "festival", "film", "cinema", "music", "heritage", "eid",
		"durga puja", "pohela boishakh", "art", "literature",
	}},
	{"Science", []string{
		"science", "research", "study finds", "scientist", "space",
		"discovery", "experiment",
	}},
	{"Business", []string{
		"business", "company", "investment", "investor", "market", "bank",
		"garment", "rmg", "textile", "stock", "shares", "tariff",
	}},
	{"Crime", []string{
		"murder", "crime", "police", "arrest", "fraud", "corruption",
		"robbery", "trafficking", "violence", "assault", "kidnap",
	}},
}

// Classifier scans text against an ordered taxonomy. It is pure and safe for
// concurrent use once built.
type Classifier struct {
	categories []compiled
}

type compiled struct {
	name    string
	pattern *regexp.Regexp
}

// New builds a Classifier from the given taxonomy, compiling one whole-word
// pattern per category. Categories without keywords are skipped.
func New(taxonomy []Category) *Classifier {
	c := &Classifier{categories: make([]compiled, 0, len(taxonomy))}
	for _, cat := range taxonomy {
		if len(cat.Keywords) == 0 {
			continue
		}
		quoted := make([]string, 0, len(cat.Keywords))
		for _, kw := range cat.Keywords {
			quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(kw)))
		}
		pattern := regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
		c.categories = append(c.categories, compiled{name: cat.Name, pattern: pattern})
	}
	return c
}

// Classify lower-cases and concatenates title and body, then returns the
// first category in taxonomy order with any whole-word keyword match, or
// General when nothing matches.
func (c *Classifier) Classify(title, body string) string {
	text := strings.ToLower(title + " " + body)
	for _, cat := range c.categories {
		if cat.pattern.MatchString(text) {
			return cat.name
		}
	}
	return news.CategoryGeneral
}
