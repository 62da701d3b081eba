// Package imagen parses Google's Imagen image-generation prices.
package imagen

import (
	"pricing-ingest/internal/markdown"
	"pricing-ingest/internal/pricing"
)

// DefaultURL is the Vertex AI generative pricing page rendered as Markdown.
const DefaultURL = "https://r.jina.ai/https://cloud.google.com/vertex-ai/generative-ai/pricing"

const (
	providerName = "Google"
	heading      = "Imagen pricing"
	category     = "Image generation"
	unit         = "perImage"
)

// ModelKey normalizes an Imagen display name ("Imagen 4" becomes "imagen-4").
func ModelKey(display string) string {
	return markdown.Slug(display)
}

// Parser reads the Model | Variant | Price per image tables. Rows without a
// variant are keyed "standard"; a variant listed under several processing
// tiers keeps its best-tier price.
type Parser struct{}

func (Parser) Marker() string { return "### " + heading }

func (Parser) Parse(doc string) (pricing.ImageRecord, error) {
	section, ok := markdown.Section(markdown.Lines(doc), heading)
	if !ok {
		return nil, markdown.MissingSection(pricing.Imagen, heading)
	}
	merged := markdown.NewTierMerge[pricing.ImagePrice]()
	tables := 0
	markdown.Tables(section, func(t markdown.Table, tier markdown.Tier) {
		priceCol := t.Column("price")
		if priceCol < 0 {
			return
		}
		tables++
		modelCol := max(t.Column("model"), 0)
		variantCol := t.Column("variant")
		for _, row := range t.Rows {
			cell := markdown.Cell(row, modelCol)
			if markdown.SkipKey(cell) {
				continue
			}
			price, ok := markdown.ParseCurrency(markdown.Cell(row, priceCol))
			if !ok {
				continue
			}
			variant := markdown.Slug(markdown.Cell(row, variantCol))
			if variant == "" {
				variant = "standard"
			}
			merged.Offer(markdown.NestedKey(ModelKey(cell), variant), tier, pricing.ImagePrice{
				Price:    price,
				Category: category,
				Provider: providerName,
				Unit:     unit,
			})
		}
	})
	if tables == 0 {
		return nil, markdown.MissingSection(pricing.Imagen, heading+" table")
	}
	if merged.Len() == 0 {
		return nil, markdown.NoModels(pricing.Imagen, heading)
	}
	return pricing.ImageRecord(markdown.Nested(merged)), nil
}
