// Package perplexity parses the Perplexity API pricing page.
package perplexity

import (
	"pricing-ingest/internal/markdown"
	"pricing-ingest/internal/pricing"
)

// DefaultURL is the Perplexity pricing page rendered as Markdown.
const DefaultURL = "https://r.jina.ai/https://docs.perplexity.ai/getting-started/pricing"

const (
	providerName = "Perplexity"
	heading      = "Token pricing"
)

// ModelKey normalizes a Perplexity display name ("Sonar Pro" becomes "sonar-pro").
func ModelKey(display string) string {
	return markdown.Slug(display)
}

// Parser reads the token pricing table. Reasoning and search columns are
// optional; search is priced per 1,000 requests.
type Parser struct{}

func (Parser) Marker() string { return "### " + heading }

func (Parser) Parse(doc string) (pricing.TextRecord, error) {
	section, ok := markdown.Section(markdown.Lines(doc), heading)
	if !ok {
		return nil, markdown.MissingSection(pricing.Perplexity, heading)
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
		reasoningCol := t.Column("reasoning")
		searchCol := t.Column("search")
		for _, row := range t.Rows {
			cell := markdown.Cell(row, modelCol)
			if markdown.SkipKey(cell) {
				continue
			}
			merged.Offer(ModelKey(cell), tier, pricing.TextEntry{
				Provider:    providerName,
				Category:    heading,
				Input:       markdown.CurrencyPtr(markdown.Cell(row, inCol)),
				Output:      markdown.CurrencyPtr(markdown.Cell(row, outCol)),
				Reasoning:   markdown.CurrencyPtr(markdown.Cell(row, reasoningCol)),
				SearchPrice: markdown.CurrencyPtr(markdown.Cell(row, searchCol)),
			})
		}
	})
	if tables == 0 {
		return nil, markdown.MissingSection(pricing.Perplexity, heading+" table")
	}
	if merged.Len() == 0 {
		return nil, markdown.NoModels(pricing.Perplexity, heading)
	}
	return pricing.TextRecord(merged.Values()), nil
}
