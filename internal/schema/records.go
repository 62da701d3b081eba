package schema

import (
	"math"
	"regexp"
	"sort"

	"pricing-ingest/internal/pricing"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// issues accumulates violations under a path prefix.
type issues struct {
	list []Issue
}

func (is *issues) add(path, reason string) {
	is.list = append(is.list, Issue{Path: path, Reason: reason})
}

func (is *issues) required(path, value string) {
	if value == "" {
		is.add(path, "is required")
	}
}

func (is *issues) cost(path string, v *float64) {
	if v == nil {
		return
	}
	switch {
	case math.IsNaN(*v) || math.IsInf(*v, 0):
		is.add(path, "must be a finite number")
	case *v < 0:
		is.add(path, "must not be negative")
	}
}

func (is *issues) price(path string, p *pricing.Price) {
	if p == nil {
		return
	}
	if n := p.Variants(); n != 1 {
		is.add(path, "must be exactly one of number, {small,large} or modality object")
		return
	}
	switch {
	case p.Flat != nil:
		is.cost(path, p.Flat)
	case p.Tiered != nil:
		is.cost(path+".small", &p.Tiered.Small)
		is.cost(path+".large", &p.Tiered.Large)
	case p.Modal != nil:
		m := p.Modal
		if m.Text == nil && m.Image == nil && m.Video == nil && m.Audio == nil {
			is.add(path, "modality price has no values")
		}
		is.cost(path+".text", m.Text)
		is.cost(path+".image", m.Image)
		is.cost(path+".video", m.Video)
		is.cost(path+".audio", m.Audio)
	}
}

// sortedKeys keeps issue order stable across runs.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ValidateText checks OpenAI, Anthropic, Cohere and Perplexity records.
func ValidateText(r pricing.TextRecord) []Issue {
	var is issues
	for _, key := range sortedKeys(r) {
		e := r[key]
		is.required(key+".provider", e.Provider)
		is.required(key+".category", e.Category)
		is.cost(key+".input", e.Input)
		is.cost(key+".output", e.Output)
		is.cost(key+".cachedInput", e.CachedInput)
		is.cost(key+".promptCachingWrite", e.PromptCachingWrite)
		is.cost(key+".promptCachingRead", e.PromptCachingRead)
		is.cost(key+".fineTuning", e.FineTuning)
		is.cost(key+".audioInput", e.AudioInput)
		is.cost(key+".audioCachedInput", e.AudioCachedInput)
		is.cost(key+".audioOutput", e.AudioOutput)
		is.cost(key+".reasoning", e.Reasoning)
		is.cost(key+".searchPrice", e.SearchPrice)
		if d := e.BatchProcessingDiscount; d != nil && (*d < 0 || *d > 100) {
			is.add(key+".batchProcessingDiscount", "must be a percentage between 0 and 100")
		}
		if c := e.ContextWindow; c != nil && *c <= 0 {
			is.add(key+".contextWindow", "must be positive")
		}
	}
	return is.list
}

// ValidateGemini checks a Gemini record, including the price variant shapes.
func ValidateGemini(r pricing.GeminiRecord) []Issue {
	var is issues
	for _, key := range sortedKeys(r) {
		e := r[key]
		is.required(key+".provider", e.Provider)
		is.required(key+".category", e.Category)
		is.price(key+".input", e.Input)
		is.price(key+".output", e.Output)
		if cc := e.ContextCaching; cc != nil {
			is.price(key+".contextCaching.price", cc.Price)
			is.cost(key+".contextCaching.storagePerHour", cc.StoragePerHour)
		}
		if gs := e.GroundingSearch; gs != nil {
			if gs.FreeRequests != nil && *gs.FreeRequests < 0 {
				is.add(key+".groundingSearch.freeRequests", "must not be negative")
			}
			is.cost(key+".groundingSearch.pricePer1000", gs.PricePer1000)
		}
	}
	return is.list
}

// ValidateImage checks DALL-E and Imagen records.
func ValidateImage(r pricing.ImageRecord) []Issue {
	var is issues
	for _, model := range sortedKeys(r) {
		sizes := r[model]
		if len(sizes) == 0 {
			is.add(model, "has no prices")
		}
		for _, size := range sortedKeys(sizes) {
			p := sizes[size]
			path := model + "." + size
			is.cost(path+".price", &p.Price)
			is.required(path+".category", p.Category)
			is.required(path+".provider", p.Provider)
			is.required(path+".unit", p.Unit)
		}
	}
	return is.list
}

// ValidateFlat checks embedding and audio records.
func ValidateFlat(r pricing.FlatRecord) []Issue {
	var is issues
	for _, key := range sortedKeys(r) {
		e := r[key]
		is.cost(key+".price", &e.Price)
		is.required(key+".category", e.Category)
		is.required(key+".provider", e.Provider)
		if e.Context != nil && *e.Context <= 0 {
			is.add(key+".context", "must be positive")
		}
	}
	return is.list
}
