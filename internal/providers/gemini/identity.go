package gemini

import (
	"strings"

	"pricing-ingest/internal/markdown"
	"pricing-ingest/internal/pricing"
)

// rule infers a model ID from a section heading when the section carries no
// explicit `gemini-...` code span.
type rule struct {
	match func(title string) bool
	id    string
}

func has(words ...string) func(string) bool {
	return func(title string) bool {
		for _, w := range words {
			if !strings.Contains(title, w) {
				return false
			}
		}
		return true
	}
}

func hasNot(match func(string) bool, words ...string) func(string) bool {
	return func(title string) bool {
		if !match(title) {
			return false
		}
		for _, w := range words {
			if strings.Contains(title, w) {
				return false
			}
		}
		return true
	}
}

// defaultRules are checked in order; more specific names come first.
var defaultRules = []rule{
	{has("2.5 pro"), "gemini-2.5-pro"},
	{has("2.5 flash-lite"), "gemini-2.5-flash-lite"},
	{has("2.5 flash", "image"), "gemini-2.5-flash-image"},
	{has("2.5 flash", "native audio"), "gemini-2.5-flash-native-audio"},
	{has("2.5 flash", "tts"), "gemini-2.5-flash-preview-tts"},
	{hasNot(has("2.5 flash"), "preview"), "gemini-2.5-flash"},
	{has("2.0 flash-lite"), "gemini-2.0-flash-lite"},
	{hasNot(has("2.0 flash"), "live", "image"), "gemini-2.0-flash"},
	{has("1.5 pro"), "gemini-1.5-pro"},
	{has("1.5 flash-8b"), "gemini-1.5-flash-8b"},
	{has("1.5 flash"), "gemini-1.5-flash"},
}

// inferrer hands out model IDs. Each rule fires at most once per document
// and is skipped when its ID is already taken.
type inferrer struct {
	rules   []rule
	claimed map[int]bool
}

func newInferrer(rules []rule) *inferrer {
	return &inferrer{rules: rules, claimed: map[int]bool{}}
}

func (in *inferrer) resolve(block markdown.Block, taken *markdown.TierMerge[pricing.GeminiEntry]) string {
	for _, line := range block.Lines {
		if markdown.IsTableLine(line) {
			break
		}
		if m := idPattern.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	title := strings.ToLower(markdown.CleanName(block.Title))
	for i, r := range in.rules {
		if in.claimed[i] || !r.match(title) {
			continue
		}
		if _, exists := taken.Get(r.id); exists {
			continue
		}
		in.claimed[i] = true
		return r.id
	}
	return ModelKey(block.Title)
}
