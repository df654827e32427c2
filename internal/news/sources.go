package news

import "strings"

// SourceSets enumerates the known publisher domains per region. The sets are
// injected wherever domain knowledge is needed so tests can substitute
// fixtures.
type SourceSets struct {
	Indian        []string
	Bangladeshi   []string
	International []string
}

// DefaultSourceSets lists the outlets the monitoring query covers.
var DefaultSourceSets = SourceSets{
	Indian: []string{
		"timesofindia.indiatimes.com", "hindustantimes.com", "ndtv.com",
		"thehindu.com", "indianexpress.com", "indiatoday.in", "news18.com",
		"zeenews.india.com", "aajtak.in", "abplive.com", "jagran.com",
		"bhaskar.com", "livehindustan.com", "business-standard.com",
		"economictimes.indiatimes.com", "livemint.com", "scroll.in",
		"thewire.in", "wionews.com", "indiatvnews.com", "newsnationtv.com",
		"jansatta.com", "india.com",
	},
	Bangladeshi: []string{
		"thedailystar.net", "bdnews24.com", "jugantor.com", "kalerkantho.com",
		"samakal.com", "bd-pratidin.com", "dhakatribune.com",
		"banglanews24.com", "jagonews24.com", "ittefaq.com.bd", "mzamin.com",
		"newagebd.net", "thefinancialexpress.com.bd", "somoynews.tv",
		"channel24bd.tv", "dailyjanakantha.com", "theindependentbd.com",
		"banglatribune.com", "dhakapost.com", "risingbd.com",
		"dailyinqilab.com", "dailynayadiganta.com", "amadershomoy.com",
	},
	International: []string{
		"bbc.com", "reuters.com", "aljazeera.com", "apnews.com", "cnn.com",
		"nytimes.com", "theguardian.com", "france24.com", "dw.com",
	},
}

// All returns every known domain across the three sets, in set order.
func (s SourceSets) All() []string {
	out := make([]string, 0, len(s.Indian)+len(s.Bangladeshi)+len(s.International))
	out = append(out, s.Indian...)
	out = append(out, s.Bangladeshi...)
	out = append(out, s.International...)
	return out
}

// Known reports whether domain belongs to any set, case-insensitively.
func (s SourceSets) Known(domain string) bool {
	d := strings.ToLower(strings.TrimSpace(domain))
	for _, set := range [][]string{s.Indian, s.Bangladeshi, s.International} {
		for _, known := range set {
			if d == known {
				return true
			}
		}
	}
	return false
}

// IsIndian reports whether domain is one of the monitored Indian outlets.
func (s SourceSets) IsIndian(domain string) bool {
	d := strings.ToLower(strings.TrimSpace(domain))
	for _, known := range s.Indian {
		if d == known {
			return true
		}
	}
	return false
}

// Normalize keeps a known domain verbatim and forces everything else,
// including the empty string, to SourceOther.
func (s SourceSets) Normalize(domain string) string {
	if s.Known(domain) {
		return strings.TrimSpace(domain)
	}
	return SourceOther
}

// LanguageBySource maps publisher domains to the language of their press.
// Domains missing from the table bucket to SourceOther on the dashboard.
var LanguageBySource = map[string]string{
	"timesofindia.indiatimes.com":  "English",
	"hindustantimes.com":           "English",
	"ndtv.com":                     "English",
	"thehindu.com":                 "English",
	"indianexpress.com":            "English",
	"indiatoday.in":                "English",
	"news18.com":                   "English",
	"business-standard.com":        "English",
	"economictimes.indiatimes.com": "English",
	"livemint.com":                 "English",
	"scroll.in":                    "English",
	"thewire.in":                   "English",
	"wionews.com":                  "English",
	"india.com":                    "English",
	"zeenews.india.com":            "Hindi",
	"aajtak.in":                    "Hindi",
	"abplive.com":                  "Hindi",
	"jagran.com":                   "Hindi",
	"bhaskar.com":                  "Hindi",
	"livehindustan.com":            "Hindi",
	"indiatvnews.com":              "Hindi",
	"newsnationtv.com":             "Hindi",
	"jansatta.com":                 "Hindi",
	"thedailystar.net":             "English",
	"dhakatribune.com":             "English",
	"newagebd.net":                 "English",
	"thefinancialexpress.com.bd":   "English",
	"theindependentbd.com":         "English",
	"bdnews24.com":                 "Bengali",
	"jugantor.com":                 "Bengali",
	"kalerkantho.com":              "Bengali",
	"samakal.com":                  "Bengali",
	"bd-pratidin.com":              "Bengali",
	"banglanews24.com":             "Bengali",
	"jagonews24.com":               "Bengali",
	"ittefaq.com.bd":               "Bengali",
	"mzamin.com":                   "Bengali",
	"somoynews.tv":                 "Bengali",
	"channel24bd.tv":               "Bengali",
	"dailyjanakantha.com":          "Bengali",
	"banglatribune.com":            "Bengali",
	"dhakapost.com":                "Bengali",
	"risingbd.com":                 "Bengali",
	"dailyinqilab.com":             "Bengali",
	"dailynayadiganta.com":         "Bengali",
	"amadershomoy.com":             "Bengali",
	"bbc.com":                      "English",
	"reuters.com":                  "English",
	"apnews.com":                   "English",
	"cnn.com":                      "English",
	"nytimes.com":                  "English",
	"theguardian.com":              "English",
	"aljazeera.com":                "English",
	"france24.com":                 "French",
	"dw.com":                       "German",
}
