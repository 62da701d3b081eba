// Package openai parses the OpenAI pricing page. The same document feeds four
// payload records: text tokens, DALL-E images, embeddings and audio.
package openai

import (
	"strings"

	"pricing-ingest/internal/markdown"
	"pricing-ingest/internal/pricing"
)

// DefaultURL is the OpenAI pricing page rendered as Markdown.
const DefaultURL = "https://r.jina.ai/https://platform.openai.com/docs/pricing"

const (
	providerName = "OpenAI"

	textHeading       = "Text tokens"
	audioHeading      = "Audio tokens"
	fineTuningHeading = "Fine-tuning"
	imageHeading      = "Image generation"
	embeddingsHeading = "Embeddings"
	speechHeading     = "Transcription and speech generation"
)

// ModelKey normalizes an OpenAI display name. OpenAI already publishes IDs,
// so this only strips markup and tags ("DALL·E 3" becomes "dall-e-3").
func ModelKey(display string) string {
	return markdown.Slug(display)
}

// Text parses the "Text tokens" tables plus the optional audio-token and
// fine-tuning sections into the openai record.
type Text struct{}

func (Text) Marker() string { return "### " + textHeading }

type tokenRow struct {
	input, cached, output, training *float64
}

// tokenRows resolves every model row under section to one row per key,
// honouring the processing-tier priority.
func tokenRows(section []string) (*markdown.TierMerge[tokenRow], int) {
	merged := markdown.NewTierMerge[tokenRow]()
	tables := 0
	markdown.Tables(section, func(t markdown.Table, tier markdown.Tier) {
		if !t.HasHeader("input") && !t.HasHeader("training") {
			return
		}
		tables++
		modelCol := max(t.Column("model"), 0)
		tierCol := t.Column("tier")
		if tierCol < 0 {
			tierCol = t.Column("processing")
		}
		inCol := t.Column("input", "cached")
		cachedCol := t.Column("cached")
		outCol := t.Column("output")
		trainCol := t.Column("training")
		for _, row := range t.Rows {
			cell := markdown.Cell(row, modelCol)
			if markdown.SkipKey(cell) {
				continue
			}
			rowTier := tier
			if label := markdown.Cell(row, tierCol); label != "" {
				rowTier = markdown.TierOf(label)
			}
			merged.Offer(ModelKey(cell), rowTier, tokenRow{
				input:    markdown.CurrencyPtr(markdown.Cell(row, inCol)),
				cached:   markdown.CurrencyPtr(markdown.Cell(row, cachedCol)),
				output:   markdown.CurrencyPtr(markdown.Cell(row, outCol)),
				training: markdown.CurrencyPtr(markdown.Cell(row, trainCol)),
			})
		}
	})
	return merged, tables
}

func (Text) Parse(doc string) (pricing.TextRecord, error) {
	lines := markdown.Lines(doc)
	section, ok := markdown.Section(lines, textHeading)
	if !ok {
		return nil, markdown.MissingSection(pricing.OpenAI, textHeading)
	}
	rows, tables := tokenRows(section)
	if tables == 0 {
		return nil, markdown.MissingSection(pricing.OpenAI, textHeading+" table")
	}
	if rows.Len() == 0 {
		return nil, markdown.NoModels(pricing.OpenAI, textHeading)
	}

	record := pricing.TextRecord{}
	for key, r := range rows.Values() {
		record[key] = pricing.TextEntry{
			Provider:    providerName,
			Category:    textHeading,
			Input:       r.input,
			CachedInput: r.cached,
			Output:      r.output,
		}
	}

	if audio, ok := markdown.Section(lines, audioHeading); ok {
		audioRows, _ := tokenRows(audio)
		for key, r := range audioRows.Values() {
			entry, exists := record[key]
			if !exists {
				entry = pricing.TextEntry{Provider: providerName, Category: audioHeading}
			}
			entry.AudioInput = r.input
			entry.AudioCachedInput = r.cached
			entry.AudioOutput = r.output
			record[key] = entry
		}
	}

	if ft, ok := markdown.Section(lines, fineTuningHeading); ok {
		ftRows, _ := tokenRows(ft)
		for key, r := range ftRows.Values() {
			if r.training == nil {
				continue
			}
			entry, exists := record[key]
			if !exists {
				entry = pricing.TextEntry{
					Provider:    providerName,
					Category:    fineTuningHeading,
					Input:       r.input,
					CachedInput: r.cached,
					Output:      r.output,
				}
			}
			entry.FineTuning = r.training
			record[key] = entry
		}
	}
	return record, nil
}

// unitOf maps a price cell's trailing unit ("/ minute", "/ 1M characters")
// to the payload unit name.
func unitOf(cell string) string {
	c := strings.ToLower(cell)
	switch {
	case strings.Contains(c, "minute"):
		return "perMinute"
	case strings.Contains(c, "second"):
		return "perSecond"
	case strings.Contains(c, "character"):
		return "per1MCharacters"
	case strings.Contains(c, "image"):
		return "perImage"
	}
	return "per1MTokens"
}
