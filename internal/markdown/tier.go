package markdown

import "strings"

// Tier is a processing plan; lower values win when a model appears twice.
type Tier int

const (
	TierStandard Tier = iota
	TierFlex
	TierBatch
	TierPriority
	TierOther
)

func (t Tier) String() string {
	switch t {
	case TierStandard:
		return "standard"
	case TierFlex:
		return "flex"
	case TierBatch:
		return "batch"
	case TierPriority:
		return "priority"
	}
	return "other"
}

// TierOf classifies a tier label. An empty label is Standard.
func TierOf(label string) Tier {
	l := strings.ToLower(StripEmphasis(label))
	switch {
	case strings.TrimSpace(l) == "", strings.Contains(l, "standard"):
		return TierStandard
	case strings.Contains(l, "flex"):
		return TierFlex
	case strings.Contains(l, "batch"):
		return TierBatch
	case strings.Contains(l, "priority"):
		return TierPriority
	}
	return TierOther
}

var tierWords = []string{"standard", "flex", "batch", "priority"}

// TierLabel recognises a line that only names a processing tier, such as
// "#### Batch", "**Flex**" or "Priority processing".
func TierLabel(line string) (Tier, bool) {
	s := strings.TrimSpace(line)
	if _, text, ok := Heading(s); ok {
		s = text
	}
	s = strings.ToLower(StripEmphasis(s))
	s = strings.TrimSuffix(strings.TrimSpace(s), ":")
	s = strings.TrimSuffix(s, " processing")
	s = strings.TrimSuffix(s, " tier")
	for _, w := range tierWords {
		if s == w {
			return TierOf(w), true
		}
	}
	return TierOther, false
}

// TierMerge keeps one value per model key, chosen by tier priority rather
// than by row position.
type TierMerge[V any] struct {
	values map[string]V
	tiers  map[string]Tier
}

func NewTierMerge[V any]() *TierMerge[V] {
	return &TierMerge[V]{values: map[string]V{}, tiers: map[string]Tier{}}
}

// Offer stores v unless key already holds a value from an equal or better tier.
func (m *TierMerge[V]) Offer(key string, tier Tier, v V) bool {
	if cur, ok := m.tiers[key]; ok && cur <= tier {
		return false
	}
	m.values[key] = v
	m.tiers[key] = tier
	return true
}

// Get returns the stored value for key.
func (m *TierMerge[V]) Get(key string) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len is the number of resolved keys.
func (m *TierMerge[V]) Len() int {
	return len(m.values)
}

// Values returns the resolved map.
func (m *TierMerge[V]) Values() map[string]V {
	return m.values
}

const nestSep = "\x00"

// NestedKey joins an outer and inner key for a TierMerge that resolves a
// two-level record such as model -> variant.
func NestedKey(outer, inner string) string {
	return outer + nestSep + inner
}

// Nested regroups values offered under NestedKey into outer -> inner maps.
func Nested[V any](m *TierMerge[V]) map[string]map[string]V {
	out := map[string]map[string]V{}
	for k, v := range m.values {
		outer, inner, _ := strings.Cut(k, nestSep)
		if out[outer] == nil {
			out[outer] = map[string]V{}
		}
		out[outer][inner] = v
	}
	return out
}
