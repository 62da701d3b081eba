package schema

import (
	"fmt"

	"pricing-ingest/internal/pricing"
)

// ValidateCatalog checks curated providers. Each mode type has its own
// required fields:
//
//	token        input or output
//	subscription price and unit perMonth or perYear
//	credit       credits and price
//	compute      price and unit
//	range        min and max, min <= max
func ValidateCatalog(c pricing.AdditionalProviderPayloads) []Issue {
	var is issues
	for _, key := range sortedKeys(c) {
		p := c[key]
		is.required(key+".provider", p.Provider)
		if len(p.Models) == 0 {
			is.add(key+".models", "must list at least one model")
		}
		seen := map[string]bool{}
		for i, m := range p.Models {
			path := fmt.Sprintf("%s.models[%d]", key, i)
			is.required(path+".id", m.ID)
			is.required(path+".name", m.Name)
			is.required(path+".category", m.Category)
			is.required(path+".provider", m.Provider)
			if m.ID != "" && seen[m.ID] {
				is.add(path+".id", fmt.Sprintf("duplicate id %q", m.ID))
			}
			seen[m.ID] = true
			if len(m.Modes) == 0 {
				is.add(path+".modes", "must list at least one mode")
			}
			for j, mode := range m.Modes {
				is.mode(fmt.Sprintf("%s.modes[%d]", path, j), mode)
			}
		}
	}
	return is.list
}

func (is *issues) mode(path string, m pricing.Mode) {
	is.cost(path+".input", m.Input)
	is.cost(path+".output", m.Output)
	is.cost(path+".price", m.Price)
	is.cost(path+".credits", m.Credits)
	is.cost(path+".min", m.Min)
	is.cost(path+".max", m.Max)
	switch m.Type {
	case pricing.ModeToken:
		if m.Input == nil && m.Output == nil {
			is.add(path, "token mode requires input or output")
		}
	case pricing.ModeSubscription:
		if m.Price == nil {
			is.add(path+".price", "subscription mode requires price")
		}
		if m.Unit != pricing.UnitPerMonth && m.Unit != pricing.UnitPerYear {
			is.add(path+".unit", "subscription unit must be perMonth or perYear")
		}
	case pricing.ModeCredit:
		if m.Credits == nil {
			is.add(path+".credits", "credit mode requires credits")
		}
		if m.Price == nil {
			is.add(path+".price", "credit mode requires price")
		}
	case pricing.ModeCompute:
		if m.Price == nil {
			is.add(path+".price", "compute mode requires price")
		}
		is.required(path+".unit", m.Unit)
	case pricing.ModeRange:
		if m.Min == nil || m.Max == nil {
			is.add(path, "range mode requires min and max")
		} else if *m.Min > *m.Max {
			is.add(path, "range min must not exceed max")
		}
	default:
		is.add(path+".type", fmt.Sprintf("unknown mode type %q", m.Type))
	}
}

// ValidatePayload checks the date, every provider record and the catalog.
// Issue paths are prefixed with the provider key.
func ValidatePayload(p *pricing.Payload) []Issue {
	var is issues
	if !datePattern.MatchString(p.LastUpdated) {
		is.add("lastUpdated", "must be YYYY-MM-DD")
	}
	for _, key := range pricing.ProviderKeys {
		record := p.Providers.Record(key)
		var found []Issue
		switch r := record.(type) {
		case pricing.TextRecord:
			if r == nil {
				is.add("providers."+key, "is required")
			}
			found = ValidateText(r)
		case pricing.GeminiRecord:
			if r == nil {
				is.add("providers."+key, "is required")
			}
			found = ValidateGemini(r)
		case pricing.ImageRecord:
			if r == nil {
				is.add("providers."+key, "is required")
			}
			found = ValidateImage(r)
		case pricing.FlatRecord:
			if r == nil {
				is.add("providers."+key, "is required")
			}
			found = ValidateFlat(r)
		}
		for _, f := range found {
			is.add("providers."+key+"."+f.Path, f.Reason)
		}
	}
	for _, f := range ValidateCatalog(p.AdditionalProviders) {
		is.add("additionalProviders."+f.Path, f.Reason)
	}
	return is.list
}
