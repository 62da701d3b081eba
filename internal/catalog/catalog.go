// Package catalog holds curated pricing for providers whose prices cannot be
// scraped from a table: subscriptions, credit packs and compute rates.
package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"pricing-ingest/internal/pricing"
	"pricing-ingest/internal/schema"
)

//go:embed catalog.yaml
var curated []byte

// Load decodes and strictly validates the embedded catalog.
func Load() (pricing.AdditionalProviderPayloads, error) {
	return Parse(curated)
}

// Parse decodes a catalog document and strictly validates it.
func Parse(data []byte) (pricing.AdditionalProviderPayloads, error) {
	var c pricing.AdditionalProviderPayloads
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if c == nil {
		c = pricing.AdditionalProviderPayloads{}
	}
	return schema.Strict("additionalProviders", c, schema.ValidateCatalog)
}
