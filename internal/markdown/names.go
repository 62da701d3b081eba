package markdown

import (
	"regexp"
	"strings"
)

var (
	linkPattern       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	htmlTagPattern    = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)
	parenPattern      = regexp.MustCompile(`\([^)]*\)`)
	deprecatedPattern = regexp.MustCompile(`(?i)\bdeprecated\b`)
	nonSlugPattern    = regexp.MustCompile(`[^a-z0-9.+]+`)
)

// StripEmphasis removes links, HTML tags, bold/italic markers and code ticks.
func StripEmphasis(s string) string {
	s = linkPattern.ReplaceAllString(s, "$1")
	s = htmlTagPattern.ReplaceAllString(s, " ")
	s = strings.NewReplacer("**", "", "__", "", "*", "", "`", "").Replace(s)
	return strings.TrimSpace(s)
}

// CleanName strips emphasis, parentheticals and deprecation tags from a
// display name, leaving the bare product name.
func CleanName(s string) string {
	s = StripEmphasis(s)
	s = parenPattern.ReplaceAllString(s, " ")
	s = deprecatedPattern.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Slug lowercases s and joins its words with dashes. Dots and plus signs
// are kept; callers decide how to rewrite them.
func Slug(s string) string {
	s = strings.ToLower(CleanName(s))
	s = nonSlugPattern.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
