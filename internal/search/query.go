package search

import (
	"strings"
	"unicode"

	"github.com/orsinium-labs/stopwords"
)

var english = stopwords.MustGet("en")

// maxQueryTerms bounds the OR-expansion of a keyword query.
const maxQueryTerms = 16

// Keywords lower-cases text, splits it on anything that is not a letter or
// digit, and drops stopwords, single characters and duplicates.
func Keywords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	var out []string
	for _, f := range fields {
		if len([]rune(f)) < 2 || seen[f] || english.Contains(f) {
			continue
		}
		seen[f] = true
		out = append(out, f)
		if len(out) == maxQueryTerms {
			break
		}
	}
	return out
}

// FTSQuery builds an FTS5 MATCH expression: every keyword quoted, OR-joined.
// It returns "" when the text has no usable keywords.
func FTSQuery(text string) string {
	kw := Keywords(text)
	if len(kw) == 0 {
		return ""
	}
	quoted := make([]string, len(kw))
	for i, k := range kw {
		quoted[i] = `"` + strings.ReplaceAll(k, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " OR ")
}
