// Package config reads the pipeline settings from the environment.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"pricing-ingest/internal/pricing"
	"pricing-ingest/internal/providers/anthropic"
	"pricing-ingest/internal/providers/cohere"
	"pricing-ingest/internal/providers/gemini"
	"pricing-ingest/internal/providers/imagen"
	"pricing-ingest/internal/providers/openai"
	"pricing-ingest/internal/providers/perplexity"
)

const (
	DefaultFetchTimeout = 20 * time.Second
	DefaultUserAgent    = "pricing-ingest/1.0 (+https://github.com/pricing-ingest; pricing data refresh)"
	DefaultOutputPath   = "generated/pricing.json"
	DefaultHistoryDir   = "generated/history"
	DefaultFixtureDir   = "fixtures"
)

// Source says where one provider's document comes from.
type Source struct {
	// Provider is the payload key, e.g. "dalle".
	Provider string
	// Document names the shared source document; DALL-E, embedding and audio
	// all read "openai".
	Document     string
	URL          string
	FixturePath  string
	ForceFixture bool
}

// Config is the resolved pipeline configuration.
type Config struct {
	OutputPath   string
	HistoryDir   string
	FixtureDir   string
	FetchTimeout time.Duration
	UserAgent    string
	// Concurrency bounds simultaneous provider fetches; 0 means one per provider.
	Concurrency int
	RedisURL    string
	TestMode    bool
	Sources     map[string]Source
}

type document struct {
	name       string
	defaultURL string
	providers  []string
}

var documents = []document{
	{"openai", openai.DefaultURL, []string{pricing.OpenAI, pricing.DALLE, pricing.Embedding, pricing.Audio}},
	{"anthropic", anthropic.DefaultURL, []string{pricing.Anthropic}},
	{"gemini", gemini.DefaultURL, []string{pricing.Gemini}},
	{"cohere", cohere.DefaultURL, []string{pricing.Cohere}},
	{"perplexity", perplexity.DefaultURL, []string{pricing.Perplexity}},
	{"imagen", imagen.DefaultURL, []string{pricing.Imagen}},
}

// Load builds the configuration from the environment.
func Load() Config {
	cfg := Config{
		OutputPath:   getEnv("PRICING_OUTPUT_PATH", DefaultOutputPath),
		HistoryDir:   getEnv("PRICING_HISTORY_DIR", DefaultHistoryDir),
		FixtureDir:   getEnv("PRICING_FIXTURE_DIR", DefaultFixtureDir),
		FetchTimeout: getEnvDuration("PRICING_FETCH_TIMEOUT", DefaultFetchTimeout),
		UserAgent:    getEnv("PRICING_USER_AGENT", DefaultUserAgent),
		Concurrency:  max(getEnvInt("PRICING_FETCH_CONCURRENCY", 0), 0),
		RedisURL:     getEnv("PRICING_REDIS_URL", getEnv("REDIS_URL", "")),
		TestMode:     getEnvBool("PRICING_TEST_MODE"),
		Sources:      make(map[string]Source, len(pricing.ProviderKeys)),
	}

	for _, doc := range documents {
		prefix := strings.ToUpper(doc.name)
		url := getEnv(prefix+"_PRICING_URL", doc.defaultURL)
		fixture := getEnv(prefix+"_PRICING_FIXTURE_PATH", filepath.Join(cfg.FixtureDir, doc.name+".md"))
		force := cfg.TestMode || getEnvBool(prefix+"_PRICING_FIXTURE")
		for _, provider := range doc.providers {
			cfg.Sources[provider] = Source{
				Provider:     provider,
				Document:     doc.name,
				URL:          url,
				FixturePath:  fixture,
				ForceFixture: force,
			}
		}
	}
	return cfg
}
