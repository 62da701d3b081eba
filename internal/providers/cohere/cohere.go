// Package cohere parses the Cohere pricing page.
package cohere

import (
	"strings"

	"pricing-ingest/internal/markdown"
	"pricing-ingest/internal/pricing"
)

// DefaultURL is the Cohere pricing page rendered as Markdown.
const DefaultURL = "https://r.jina.ai/https://cohere.com/pricing"

const (
	providerName = "Cohere"
	heading      = "Command models"
)

// ModelKey normalizes a Cohere display name. A trailing "+" is spelled out
// so "Command R+ 08-2024" becomes "command-r-plus-08-2024".
func ModelKey(display string) string {
	name := strings.ReplaceAll(markdown.CleanName(display), "+", " plus ")
	return markdown.Slug(name)
}

// Parser reads the "Command models" table into the cohere record.
type Parser struct{}

func (Parser) Marker() string { return "### " + heading }

func (Parser) Parse(doc string) (pricing.TextRecord, error) {
	section, ok := markdown.Section(markdown.Lines(doc), heading)
	if !ok {
		return nil, markdown.MissingSection(pricing.Cohere, heading)
	}
	merged := markdown.NewTierMerge[pricing.TextEntry]()
	tables := 0
	markdown.Tables(section, func(t markdown.Table, tier markdown.Tier) {
		if !t.HasHeader("input") {
			return
		}
		tables++
		modelCol := max(t.Column("model"), 0)
		inCol := t.Column("input")
		outCol := t.Column("output")
		ctxCol := t.Column("context")
		for _, row := range t.Rows {
			cell := markdown.Cell(row, modelCol)
			if markdown.SkipKey(cell) {
				continue
			}
			entry := pricing.TextEntry{
				Provider: providerName,
				Category: heading,
				Input:    markdown.CurrencyPtr(markdown.Cell(row, inCol)),
				Output:   markdown.CurrencyPtr(markdown.Cell(row, outCol)),
			}
			if ctxCol >= 0 {
				entry.ContextWindow = markdown.ParseTokenCount(markdown.Cell(row, ctxCol))
			}
			merged.Offer(ModelKey(cell), tier, entry)
		}
	})
	if tables == 0 {
		return nil, markdown.MissingSection(pricing.Cohere, heading+" table")
	}
	if merged.Len() == 0 {
		return nil, markdown.NoModels(pricing.Cohere, heading)
	}
	return pricing.TextRecord(merged.Values()), nil
}
