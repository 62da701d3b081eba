// Package anthropic parses the Claude pricing documentation.
package anthropic

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"pricing-ingest/internal/markdown"
	"pricing-ingest/internal/pricing"
)

// DefaultURL is the Claude pricing page rendered as Markdown.
const DefaultURL = "https://r.jina.ai/https://docs.claude.com/en/docs/about-claude/pricing"

const (
	providerName = "Anthropic"
	modelHeading = "Model pricing"
	batchHeading = "Batch processing"
)

// newNamingMajor is the first major version published as claude-<family>-<ver>.
// Earlier models are claude-<ver>-<family>.
const newNamingMajor = 4

var (
	familyFirst  = regexp.MustCompile(`(?i)^claude\s+(opus|sonnet|haiku)\s+(\d+)(?:\.(\d+))?`)
	versionFirst = regexp.MustCompile(`(?i)^claude\s+(\d+)(?:\.(\d+))?\s+(opus|sonnet|haiku)`)
)

// ModelKey maps a display name to Anthropic's API naming:
//
//	Claude Opus 4.1   -> claude-opus-4-1
//	Claude Sonnet 3.7 -> claude-3-7-sonnet
//	Claude 3.5 Haiku  -> claude-3-5-haiku
func ModelKey(display string) string {
	name := markdown.CleanName(display)
	var family, major, minor string
	if m := familyFirst.FindStringSubmatch(name); m != nil {
		family, major, minor = m[1], m[2], m[3]
	} else if m := versionFirst.FindStringSubmatch(name); m != nil {
		major, minor, family = m[1], m[2], m[3]
	} else {
		return strings.ReplaceAll(markdown.Slug(name), ".", "-")
	}
	family = strings.ToLower(family)
	ver := major
	if minor != "" {
		ver += "-" + minor
	}
	if n, err := strconv.Atoi(major); err == nil && n >= newNamingMajor {
		return "claude-" + family + "-" + ver
	}
	return "claude-" + ver + "-" + family
}

// Parser reads the "Model pricing" table and the optional batch table.
type Parser struct{}

func (Parser) Marker() string { return "### " + modelHeading }

func (Parser) Parse(doc string) (pricing.TextRecord, error) {
	lines := markdown.Lines(doc)
	section, ok := markdown.Section(lines, modelHeading)
	if !ok {
		return nil, markdown.MissingSection(pricing.Anthropic, modelHeading)
	}

	merged := markdown.NewTierMerge[pricing.TextEntry]()
	tables := 0
	markdown.Tables(section, func(t markdown.Table, tier markdown.Tier) {
		if !t.HasHeader("input") || !t.HasHeader("output") {
			return
		}
		tables++
		modelCol := max(t.Column("model"), 0)
		inCol := t.Column("input")
		outCol := t.Column("output")
		writeCol := t.Column("cache write")
		readCol := t.Column("cache hit")
		if readCol < 0 {
			readCol = t.Column("cache read")
		}
		for _, row := range t.Rows {
			cell := markdown.Cell(row, modelCol)
			if markdown.SkipKey(cell) {
				continue
			}
			merged.Offer(ModelKey(cell), tier, pricing.TextEntry{
				Provider:           providerName,
				Category:           modelHeading,
				Input:              markdown.CurrencyPtr(markdown.Cell(row, inCol)),
				Output:             markdown.CurrencyPtr(markdown.Cell(row, outCol)),
				PromptCachingWrite: markdown.CurrencyPtr(markdown.Cell(row, writeCol)),
				PromptCachingRead:  markdown.CurrencyPtr(markdown.Cell(row, readCol)),
			})
		}
	})
	if tables == 0 {
		return nil, markdown.MissingSection(pricing.Anthropic, modelHeading+" table")
	}
	if merged.Len() == 0 {
		return nil, markdown.NoModels(pricing.Anthropic, modelHeading)
	}

	record := pricing.TextRecord(merged.Values())
	if batch, ok := markdown.Section(lines, batchHeading); ok {
		applyBatchDiscounts(record, batch)
	}
	return record, nil
}

// applyBatchDiscounts records the batch input discount as a whole percentage
// for models that also appear in the main table.
func applyBatchDiscounts(record pricing.TextRecord, section []string) {
	markdown.Tables(section, func(t markdown.Table, _ markdown.Tier) {
		inCol := t.Column("input")
		if inCol < 0 {
			return
		}
		modelCol := max(t.Column("model"), 0)
		for _, row := range t.Rows {
			cell := markdown.Cell(row, modelCol)
			if markdown.SkipKey(cell) {
				continue
			}
			key := ModelKey(cell)
			entry, ok := record[key]
			if !ok || entry.Input == nil || *entry.Input == 0 {
				continue
			}
			batchIn, ok := markdown.ParseCurrency(markdown.Cell(row, inCol))
			if !ok {
				continue
			}
			discount := math.Round((1 - batchIn / *entry.Input) * 100)
			entry.BatchProcessingDiscount = &discount
			record[key] = entry
		}
	})
}
