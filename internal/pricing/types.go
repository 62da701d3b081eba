package pricing

import (
	"encoding/json"
	"fmt"
)

// Provider keys, in the order they appear in the generated payload.
const (
	OpenAI     = "openai"
	Anthropic  = "anthropic"
	Gemini     = "gemini"
	DALLE      = "dalle"
	Embedding  = "embedding"
	Audio      = "audio"
	Cohere     = "cohere"
	Perplexity = "perplexity"
	Imagen     = "imagen"
)

// ProviderKeys lists every provider key the payload must carry.
var ProviderKeys = []string{OpenAI, Anthropic, Gemini, DALLE, Embedding, Audio, Cohere, Perplexity, Imagen}

// TextEntry is the pricing shape shared by OpenAI, Anthropic, Cohere and Perplexity.
// Prices are USD per unit, typically per 1M tokens. Nil means "not applicable".
type TextEntry struct {
	Provider                string   `json:"provider"`
	Category                string   `json:"category"`
	Input                   *float64 `json:"input,omitempty"`
	Output                  *float64 `json:"output,omitempty"`
	CachedInput             *float64 `json:"cachedInput,omitempty"`
	ContextWindow           *int     `json:"contextWindow,omitempty"`
	PromptCachingWrite      *float64 `json:"promptCachingWrite,omitempty"`
	PromptCachingRead       *float64 `json:"promptCachingRead,omitempty"`
	BatchProcessingDiscount *float64 `json:"batchProcessingDiscount,omitempty"`
	FineTuning              *float64 `json:"fineTuning,omitempty"`
	AudioInput              *float64 `json:"audioInput,omitempty"`
	AudioCachedInput        *float64 `json:"audioCachedInput,omitempty"`
	AudioOutput             *float64 `json:"audioOutput,omitempty"`
	Reasoning               *float64 `json:"reasoning,omitempty"`
	SearchPrice             *float64 `json:"searchPrice,omitempty"`
}

// TextRecord maps a canonical model key to its text pricing.
type TextRecord map[string]TextEntry

// GeminiEntry carries Gemini prices, whose input/output may be flat, tiered or multi-modal.
type GeminiEntry struct {
	Provider        string           `json:"provider"`
	Category        string           `json:"category"`
	Input           *Price           `json:"input,omitempty"`
	Output          *Price           `json:"output,omitempty"`
	ContextCaching  *ContextCaching  `json:"contextCaching,omitempty"`
	GroundingSearch *GroundingSearch `json:"groundingSearch,omitempty"`
}

// ContextCaching is the cached-token price plus the hourly storage rate.
type ContextCaching struct {
	Price          *Price   `json:"price,omitempty"`
	StoragePerHour *float64 `json:"storagePerHour,omitempty"`
}

// GroundingSearch is the Google Search grounding quota and overage price.
type GroundingSearch struct {
	FreeRequests *int     `json:"freeRequests,omitempty"`
	PricePer1000 *float64 `json:"pricePer1000,omitempty"`
}

// GeminiRecord maps a canonical model key to its Gemini pricing.
type GeminiRecord map[string]GeminiEntry

// ImagePrice is the price of one generated image for a size/quality key.
type ImagePrice struct {
	Price    float64 `json:"price"`
	Category string  `json:"category"`
	Provider string  `json:"provider"`
	Unit     string  `json:"unit"`
}

// ImageRecord maps model key -> size/quality key -> price.
type ImageRecord map[string]map[string]ImagePrice

// FlatEntry is the single-price shape used for embeddings and audio models.
type FlatEntry struct {
	Price    float64 `json:"price"`
	Context  *int    `json:"context,omitempty"`
	Unit     string  `json:"unit,omitempty"`
	Category string  `json:"category"`
	Provider string  `json:"provider"`
}

// FlatRecord maps a canonical model key to its flat price.
type FlatRecord map[string]FlatEntry

// Providers holds one record per provider key. Every key is always encoded.
type Providers struct {
	OpenAI     TextRecord   `json:"openai"`
	Anthropic  TextRecord   `json:"anthropic"`
	Gemini     GeminiRecord `json:"gemini"`
	DALLE      ImageRecord  `json:"dalle"`
	Embedding  FlatRecord   `json:"embedding"`
	Audio      FlatRecord   `json:"audio"`
	Cohere     TextRecord   `json:"cohere"`
	Perplexity TextRecord   `json:"perplexity"`
	Imagen     ImageRecord  `json:"imagen"`
}

// Payload is the generated pricing dataset.
type Payload struct {
	LastUpdated         string                     `json:"lastUpdated"`
	Providers           Providers                  `json:"providers"`
	AdditionalProviders AdditionalProviderPayloads `json:"additionalProviders"`
}

// Normalize replaces nil records with empty ones so every key encodes as {}.
func (p *Payload) Normalize() {
	pr := &p.Providers
	if pr.OpenAI == nil {
		pr.OpenAI = TextRecord{}
	}
	if pr.Anthropic == nil {
		pr.Anthropic = TextRecord{}
	}
	if pr.Gemini == nil {
		pr.Gemini = GeminiRecord{}
	}
	if pr.DALLE == nil {
		pr.DALLE = ImageRecord{}
	}
	if pr.Embedding == nil {
		pr.Embedding = FlatRecord{}
	}
	if pr.Audio == nil {
		pr.Audio = FlatRecord{}
	}
	if pr.Cohere == nil {
		pr.Cohere = TextRecord{}
	}
	if pr.Perplexity == nil {
		pr.Perplexity = TextRecord{}
	}
	if pr.Imagen == nil {
		pr.Imagen = ImageRecord{}
	}
	if p.AdditionalProviders == nil {
		p.AdditionalProviders = AdditionalProviderPayloads{}
	}
}

// Record returns the record stored under a provider key, or nil for unknown keys.
func (p Providers) Record(key string) any {
	switch key {
	case OpenAI:
		return p.OpenAI
	case Anthropic:
		return p.Anthropic
	case Gemini:
		return p.Gemini
	case DALLE:
		return p.DALLE
	case Embedding:
		return p.Embedding
	case Audio:
		return p.Audio
	case Cohere:
		return p.Cohere
	case Perplexity:
		return p.Perplexity
	case Imagen:
		return p.Imagen
	}
	return nil
}

// Entries encodes each provider record into model key -> raw JSON value.
// Values are compact and deterministic, so byte equality is deep equality.
func (p Providers) Entries() (map[string]map[string]json.RawMessage, error) {
	out := make(map[string]map[string]json.RawMessage, len(ProviderKeys))
	for _, key := range ProviderKeys {
		data, err := json.Marshal(p.Record(key))
		if err != nil {
			return nil, fmt.Errorf("encode %s record: %w", key, err)
		}
		entries := map[string]json.RawMessage{}
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", key, err)
		}
		out[key] = entries
	}
	return out, nil
}

// Decode parses a payload and normalizes it.
func Decode(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
