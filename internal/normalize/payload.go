package normalize

import (
	"encoding/json"
	"strings"
)

// payloadKind discriminates the historical annotation payload shapes. Adding
// a new shape means adding a kind and a decode branch here, not another type
// switch in the extraction code.
type payloadKind int

const (
	// payloadAbsent: no payload at all. The item is skipped entirely.
	payloadAbsent payloadKind = iota
	// payloadObject: a structured mapping, current or legacy key names.
	payloadObject
	// payloadRaw: text that did not parse, or a shape we cannot use. All
	// fields fall back to defaults; the raw text is retained for audit.
	payloadRaw
)

// annotation is the decoded tagged variant of a raw annotation payload.
type annotation struct {
	kind payloadKind
	obj  map[string]any
	raw  string
}

// decodeAnnotation classifies the raw payload bytes into one variant.
//
// A JSON string is unwrapped and its contents re-parsed, mirroring how early
// ingestion versions received the annotation double-encoded. A list whose
// first element is a mapping stands in for that mapping. Text that fails to
// parse is kept, not discarded, and lands in the defaults branch.
func decodeAnnotation(raw []byte) annotation {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return annotation{kind: payloadAbsent}
	}

	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err != nil {
		return annotation{kind: payloadRaw, raw: trimmed}
	}
	return classifyValue(value, trimmed)
}

func classifyValue(value any, original string) annotation {
	switch v := value.(type) {
	case nil:
		return annotation{kind: payloadAbsent}
	case string:
		inner := strings.TrimSpace(v)
		if inner == "" {
			return annotation{kind: payloadAbsent}
		}
		var nested any
		if err := json.Unmarshal([]byte(inner), &nested); err != nil {
			return annotation{kind: payloadRaw, raw: inner}
		}
		// Guard against a string that decodes to itself ("\"abc\"" style
		// double quoting) looping forever.
		if s, ok := nested.(string); ok && s == v {
			return annotation{kind: payloadRaw, raw: inner}
		}
		return classifyValue(nested, inner)
	case map[string]any:
		if len(v) == 0 {
			return annotation{kind: payloadAbsent}
		}
		return annotation{kind: payloadObject, obj: v}
	case []any:
		if len(v) > 0 {
			if first, ok := v[0].(map[string]any); ok {
				return annotation{kind: payloadObject, obj: first}
			}
		}
		return annotation{kind: payloadRaw, raw: original}
	default:
		return annotation{kind: payloadRaw, raw: original}
	}
}

// fieldAliases gives the ordered candidate keys per logical field: the
// canonical snake_case name first, then the aliases older payload versions
// used. All alias knowledge lives here.
var fieldAliases = map[string][]string{
	"source":     {"source"},
	"sentiment":  {"sentiment"},
	"factCheck":  {"fact_check", "factCheck"},
	"category":   {"category"},
	"comparison": {"comparison"},
	"bdSummary":  {"bangladeshi_media", "bangladeshiMedia"},
	"intSummary": {"international_media", "internationalMedia"},
	"bdMatches":  {"bangladeshi_matches", "bangladeshiMatches"},
	"intMatches": {"international_matches", "internationalMatches"},
}

// lookup resolves a logical field against the object by trying each alias in
// order and returns the first value present.
func lookup(obj map[string]any, field string) (any, bool) {
	for _, key := range fieldAliases[field] {
		if v, ok := obj[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func lookupString(obj map[string]any, field string) string {
	v, ok := lookup(obj, field)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// lookupList coerces the field to a list; anything that is not a list
// (including a scalar under the right key) becomes an empty one.
func lookupList(obj map[string]any, field string) []any {
	v, ok := lookup(obj, field)
	if !ok {
		return nil
	}
	list, _ := v.([]any)
	return list
}

func lookupObject(obj map[string]any, field string) map[string]any {
	v, ok := lookup(obj, field)
	if !ok {
		return nil
	}
	nested, _ := v.(map[string]any)
	return nested
}
