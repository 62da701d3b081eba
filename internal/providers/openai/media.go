package openai

import (
	"regexp"
	"strings"

	"pricing-ingest/internal/markdown"
	"pricing-ingest/internal/pricing"
)

var sizePattern = regexp.MustCompile(`(\d+)\s*[x×]\s*(\d+)`)

// Images parses the "Image generation" tables into the dalle record. Each
// resolution column becomes a "<quality>-<WxH>" key, resolved across tiers.
type Images struct{}

func (Images) Marker() string { return "### " + imageHeading }

func (Images) Parse(doc string) (pricing.ImageRecord, error) {
	section, ok := markdown.Section(markdown.Lines(doc), imageHeading)
	if !ok {
		return nil, markdown.MissingSection(pricing.DALLE, imageHeading)
	}
	merged := markdown.NewTierMerge[pricing.ImagePrice]()
	tables := 0
	markdown.Tables(section, func(t markdown.Table, tier markdown.Tier) {
		sizes := map[int]string{}
		for i, h := range t.Header {
			if m := sizePattern.FindStringSubmatch(h); m != nil {
				sizes[i] = m[1] + "x" + m[2]
			}
		}
		if len(sizes) == 0 {
			return
		}
		tables++
		modelCol := max(t.Column("model"), 0)
		qualityCol := t.Column("quality")
		for _, row := range t.Rows {
			cell := markdown.Cell(row, modelCol)
			if markdown.SkipKey(cell) {
				continue
			}
			key := ModelKey(cell)
			quality := markdown.Slug(markdown.Cell(row, qualityCol))
			if quality == "" {
				quality = "standard"
			}
			for col, size := range sizes {
				price, ok := markdown.ParseCurrency(markdown.Cell(row, col))
				if !ok {
					continue
				}
				merged.Offer(markdown.NestedKey(key, sizeKey(quality, size)), tier, pricing.ImagePrice{
					Price:    price,
					Category: imageHeading,
					Provider: providerName,
					Unit:     "perImage",
				})
			}
		}
	})
	if tables == 0 {
		return nil, markdown.MissingSection(pricing.DALLE, imageHeading+" table")
	}
	if merged.Len() == 0 {
		return nil, markdown.NoModels(pricing.DALLE, imageHeading)
	}
	return pricing.ImageRecord(markdown.Nested(merged)), nil
}

// Embeddings parses the "Embeddings" table into the embedding record.
type Embeddings struct{}

func (Embeddings) Marker() string { return "### " + embeddingsHeading }

func (Embeddings) Parse(doc string) (pricing.FlatRecord, error) {
	section, ok := markdown.Section(markdown.Lines(doc), embeddingsHeading)
	if !ok {
		return nil, markdown.MissingSection(pricing.Embedding, embeddingsHeading)
	}
	return flatRows(section, pricing.Embedding, embeddingsHeading, func(markdown.Table, []string) string {
		return embeddingsHeading
	})
}

// Audio parses the transcription and speech table into the audio record.
type Audio struct{}

func (Audio) Marker() string { return "### " + speechHeading }

func (Audio) Parse(doc string) (pricing.FlatRecord, error) {
	section, ok := markdown.Section(markdown.Lines(doc), speechHeading)
	if !ok {
		return nil, markdown.MissingSection(pricing.Audio, speechHeading)
	}
	return flatRows(section, pricing.Audio, speechHeading, func(t markdown.Table, row []string) string {
		if use := markdown.CleanName(markdown.Cell(row, t.Column("use case"))); use != "" {
			return use
		}
		return "Audio"
	})
}

// flatRows reads single-price tables; category picks each row's category.
func flatRows(section []string, key, heading string, category func(markdown.Table, []string) string) (pricing.FlatRecord, error) {
	merged := markdown.NewTierMerge[pricing.FlatEntry]()
	tables := 0
	markdown.Tables(section, func(t markdown.Table, tier markdown.Tier) {
		priceCol := t.Column("cost")
		if priceCol < 0 {
			priceCol = t.Column("price")
		}
		if priceCol < 0 {
			priceCol = t.Column("input")
		}
		if priceCol < 0 {
			return
		}
		tables++
		modelCol := max(t.Column("model"), 0)
		contextCol := t.Column("context")
		if contextCol < 0 {
			contextCol = t.Column("max input")
		}
		for _, row := range t.Rows {
			cell := markdown.Cell(row, modelCol)
			if markdown.SkipKey(cell) {
				continue
			}
			raw := markdown.Cell(row, priceCol)
			price, ok := markdown.ParseCurrency(raw)
			if !ok {
				continue
			}
			var window *int
			if contextCol >= 0 {
				window = markdown.ParseTokenCount(markdown.Cell(row, contextCol))
			}
			merged.Offer(ModelKey(cell), tier, pricing.FlatEntry{
				Price:    price,
				Context:  window,
				Unit:     unitOf(raw),
				Category: category(t, row),
				Provider: providerName,
			})
		}
	})
	if tables == 0 {
		return nil, markdown.MissingSection(key, heading+" table")
	}
	if merged.Len() == 0 {
		return nil, markdown.NoModels(key, heading)
	}
	return pricing.FlatRecord(merged.Values()), nil
}

// sizeKey builds an image price key such as "hd-1024x1792".
func sizeKey(quality, size string) string {
	return strings.ToLower(quality) + "-" + size
}
