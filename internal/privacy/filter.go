// Package privacy keeps user-marked private passages out of anything that
// outlives a turn: the search indexes, summaries built from them, and logs.
package privacy

import (
	"regexp"
	"strings"
)

// privateBlock matches <private>...</private>, case-insensitive, across lines.
var privateBlock = regexp.MustCompile(`(?is)<private>.*?</private>`)

// StripPrivateTags drops every private block and trims what is left.
func StripPrivateTags(content string) string {
	return strings.TrimSpace(privateBlock.ReplaceAllString(content, ""))
}

// HasPrivateContent reports whether content carries at least one private block.
func HasPrivateContent(content string) bool {
	return privateBlock.MatchString(content)
}

// HasOnlyPrivateContent reports whether nothing but private blocks and
// whitespace remains.
func HasOnlyPrivateContent(content string) bool {
	return HasPrivateContent(content) && StripPrivateTags(content) == ""
}

// Redact replaces private blocks with a marker so log lines keep their shape.
func Redact(content string) string {
	return privateBlock.ReplaceAllString(content, "[private]")
}
