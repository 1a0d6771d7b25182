package polymarket

import (
	"strings"
	"unicode"
	"unicode/utf16"

	"github.com/Checker-Finance/market-radar/pkg/model"
)

type keywordRule struct {
	keywords []string
	category string
}

// keywordRules are checked in order against the lower-cased question; the
// first rule with any matching substring wins.
var keywordRules = []keywordRule{
	{[]string{"trump"}, "Politics"},
	{[]string{"election"}, "Election"},
	{[]string{"bitcoin", "crypto"}, "Crypto"},
	{[]string{"fed", "rate", "interest"}, "Economy"},
	{[]string{"recession"}, "Economy"},
	{[]string{"war", "conflict"}, "Geopolitics"},
	{[]string{"ai", "artificial intelligence"}, "Technology"},
	{[]string{"tether", "usdt", "depeg"}, "Crypto"},
	{[]string{"ukraine", "russia", "nato"}, "Geopolitics"},
}

// Classify returns the category of a raw record. It never returns "".
//
// Order: explicit category or groupItemTitle, then question keywords, then a
// label built from the first related event's title, then "General".
func Classify(raw RawMarket) string {
	for _, key := range []string{"category", "groupItemTitle"} {
		if !truthy(raw[key]) {
			continue
		}
		if c := strings.TrimSpace(text(raw[key])); c != "" {
			return c
		}
	}

	q := strings.ToLower(text(raw["question"]))
	for _, rule := range keywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(q, kw) {
				return rule.category
			}
		}
	}

	if events, ok := raw["events"].([]any); ok && len(events) > 0 {
		var title string
		if ev, ok := events[0].(map[string]any); ok {
			title = text(ev["title"])
		}
		if label := eventLabel(title); label != "" {
			return label
		}
	}

	return model.DefaultCategory
}

// eventLabel joins the first two tokens of title longer than two characters.
// Tokens are separated by runs of whitespace, ':' and '-'.
func eventLabel(title string) string {
	words := strings.FieldsFunc(title, func(r rune) bool {
		return unicode.IsSpace(r) || r == ':' || r == '-'
	})

	kept := make([]string, 0, 2)
	for _, w := range words {
		// counted in UTF-16 code units
		if len(utf16.Encode([]rune(w))) > 2 {
			kept = append(kept, w)
			if len(kept) == 2 {
				break
			}
		}
	}
	return strings.Join(kept, " ")
}
