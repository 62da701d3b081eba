// Package gemini parses the Gemini API pricing page. Each model has its own
// "## <Model>" section holding a Free Tier / Paid Tier table whose price cells
// are flat, split by prompt size, or split by modality.
package gemini

import (
	"regexp"
	"strconv"
	"strings"

	"pricing-ingest/internal/markdown"
	"pricing-ingest/internal/pricing"
)

// DefaultURL is the Gemini pricing page rendered as Markdown.
const DefaultURL = "https://r.jina.ai/https://ai.google.dev/gemini-api/docs/pricing"

const (
	providerName = "Google"
	category     = "Text tokens"
	modelLevel   = 2
)

var (
	idPattern      = regexp.MustCompile("`(gemini-[a-z0-9][a-z0-9.\\-]*)`")
	dollarPattern  = regexp.MustCompile(`\$\s*(\d[\d,]*(?:\.\d+)?|\.\d+)`)
	modalPattern   = regexp.MustCompile(`\$\s*(\d[\d,]*(?:\.\d+)?|\.\d+)\s*\(([^)]*)\)`)
	storagePattern = regexp.MustCompile(`(?i)\$\s*(\d[\d,]*(?:\.\d+)?|\.\d+)\s*/\s*1,?000,?000\s+tokens\s+per\s+hour`)
	rpdPattern     = regexp.MustCompile(`(?i)(\d[\d,]*)\s*RPD`)
	per1000Pattern = regexp.MustCompile(`(?i)\$\s*(\d[\d,]*(?:\.\d+)?)\s*/\s*1,?000\b`)
)

// ModelKey normalizes a Gemini display name, keeping version dots
// ("Gemini 2.5 Flash-Lite" becomes "gemini-2.5-flash-lite").
func ModelKey(display string) string {
	return markdown.Slug(display)
}

// Parser reads every Gemini model section into the gemini record.
type Parser struct{}

func (Parser) Marker() string { return "## Gemini" }

func (Parser) Parse(doc string) (pricing.GeminiRecord, error) {
	merged := markdown.NewTierMerge[pricing.GeminiEntry]()
	ids := newInferrer(defaultRules)
	tables := 0
	for _, block := range markdown.Sections(markdown.Lines(doc), modelLevel) {
		if !strings.Contains(strings.ToLower(block.Title), "gemini") {
			continue
		}
		var key string
		markdown.Tables(block.Lines, func(t markdown.Table, tier markdown.Tier) {
			entry, ok := parseTable(t)
			if !ok {
				return
			}
			tables++
			if key == "" {
				key = ids.resolve(block, merged)
			}
			merged.Offer(key, tier, entry)
		})
	}
	if tables == 0 {
		return nil, markdown.MissingSection(pricing.Gemini, "## Gemini pricing table")
	}
	if merged.Len() == 0 {
		return nil, markdown.NoModels(pricing.Gemini, "## Gemini")
	}
	return pricing.GeminiRecord(merged.Values()), nil
}

// parseTable reads one Free/Paid table. ok is false when the table carries
// neither an input nor an output price.
func parseTable(t markdown.Table) (pricing.GeminiEntry, bool) {
	priceCol := t.Column("paid")
	if priceCol < 0 {
		priceCol = len(t.Header) - 1
	}
	entry := pricing.GeminiEntry{Provider: providerName, Category: category}
	for _, row := range t.Rows {
		label := strings.ToLower(markdown.StripEmphasis(markdown.Cell(row, 0)))
		cell := markdown.Cell(row, priceCol)
		switch {
		case strings.HasPrefix(label, "input price"):
			entry.Input = ParsePrice(cell)
		case strings.HasPrefix(label, "output price"):
			entry.Output = ParsePrice(cell)
		case strings.HasPrefix(label, "context caching"):
			entry.ContextCaching = parseCaching(cell)
		case strings.HasPrefix(label, "grounding with google search"):
			entry.GroundingSearch = parseGrounding(cell)
		}
	}
	return entry, entry.Input != nil || entry.Output != nil
}

// ParsePrice reads a paid-tier cell into its price shape:
//
//	$1.25, prompts <= 200k tokens $2.50, prompts > 200k tokens -> {small, large}
//	$0.10 (text / image / video) $0.70 (audio)                -> {text, image, video, audio}
//	$0.40                                                      -> 0.4
//
// "Free of charge", "Not available" and cells without a dollar amount are nil.
func ParsePrice(cell string) *pricing.Price {
	s := normalizeCell(cell)
	amounts := dollars(s)
	if len(amounts) == 0 {
		return nil
	}
	if len(amounts) >= 2 && isTiered(s) {
		return pricing.TieredPrice(amounts[0], amounts[1])
	}
	if modal := parseModal(s); modal != nil {
		return &pricing.Price{Modal: modal}
	}
	return pricing.FlatPrice(amounts[0])
}

func normalizeCell(cell string) string {
	s := markdown.StripEmphasis(cell)
	return strings.NewReplacer("&lt;", "<", "&gt;", ">", "≤", "<=", "≥", ">=").Replace(s)
}

func isTiered(s string) bool {
	return strings.Contains(s, "<=") || strings.Contains(s, ">")
}

func dollars(s string) []float64 {
	var out []float64
	for _, m := range dollarPattern.FindAllStringSubmatch(s, -1) {
		if v, ok := markdown.ParseCurrency(m[1]); ok {
			out = append(out, v)
		}
	}
	return out
}

func parseModal(s string) *pricing.Modal {
	var modal pricing.Modal
	found := false
	for _, m := range modalPattern.FindAllStringSubmatch(s, -1) {
		v, ok := markdown.ParseCurrency(m[1])
		if !ok {
			continue
		}
		label := strings.ToLower(m[2])
		for _, slot := range []struct {
			word string
			dst  **float64
		}{
			{"text", &modal.Text},
			{"image", &modal.Image},
			{"video", &modal.Video},
			{"audio", &modal.Audio},
		} {
			if strings.Contains(label, slot.word) {
				*slot.dst = pricing.Float(v)
				found = true
			}
		}
	}
	if !found {
		return nil
	}
	return &modal
}

func parseCaching(cell string) *pricing.ContextCaching {
	s := normalizeCell(cell)
	var cc pricing.ContextCaching
	if m := storagePattern.FindStringSubmatch(s); m != nil {
		cc.StoragePerHour = markdown.CurrencyPtr(m[1])
		s = strings.Replace(s, m[0], "", 1)
	}
	cc.Price = ParsePrice(s)
	if cc.Price == nil && cc.StoragePerHour == nil {
		return nil
	}
	return &cc
}

func parseGrounding(cell string) *pricing.GroundingSearch {
	s := normalizeCell(cell)
	var gs pricing.GroundingSearch
	if m := rpdPattern.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			gs.FreeRequests = pricing.Int(n)
		}
	}
	if m := per1000Pattern.FindStringSubmatch(s); m != nil {
		gs.PricePer1000 = markdown.CurrencyPtr(m[1])
	}
	if gs.FreeRequests == nil && gs.PricePer1000 == nil {
		return nil
	}
	return &gs
}
