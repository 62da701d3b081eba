package pricing

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalizeEncodesEveryProviderKey(t *testing.T) {
	p := Payload{LastUpdated: "2026-01-02"}
	p.Normalize()
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range ProviderKeys {
		if !strings.Contains(string(data), `"`+key+`":{}`) {
			t.Errorf("expected empty %q record in %s", key, data)
		}
	}
	if !strings.Contains(string(data), `"additionalProviders":{}`) {
		t.Errorf("expected empty additionalProviders in %s", data)
	}
}

func TestPriceEncodesEachVariant(t *testing.T) {
	cases := []struct {
		name  string
		price *Price
		want  string
	}{
		{"flat", FlatPrice(0.3), `0.3`},
		{"tiered", TieredPrice(1.25, 2.5), `{"small":1.25,"large":2.5}`},
		{"modal", &Price{Modal: &Modal{Text: Float(0.3), Audio: Float(1)}}, `{"text":0.3,"audio":1}`},
	}
	for _, tc := range cases {
		data, err := json.Marshal(tc.price)
		if err != nil {
			t.Fatalf("%s: marshal: %v", tc.name, err)
		}
		if string(data) != tc.want {
			t.Errorf("%s: got %s, want %s", tc.name, data, tc.want)
		}
		var back Price
		if err := json.Unmarshal(data, &back); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.name, err)
		}
		if back.Variants() != 1 {
			t.Errorf("%s: expected exactly one variant after decode, got %d", tc.name, back.Variants())
		}
	}
}

func TestPriceRejectsStrings(t *testing.T) {
	var p Price
	if err := json.Unmarshal([]byte(`"cheap"`), &p); err == nil {
		t.Fatalf("expected error decoding a string price")
	}
}

func TestEntriesAreComparableByBytes(t *testing.T) {
	a := Providers{OpenAI: TextRecord{"gpt-4o": {Provider: "OpenAI", Category: "Text tokens", Input: Float(2.5)}}}
	b := Providers{OpenAI: TextRecord{"gpt-4o": {Provider: "OpenAI", Category: "Text tokens", Input: Float(2.5)}}}
	ea, err := a.Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	eb, err := b.Entries()
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if string(ea[OpenAI]["gpt-4o"]) != string(eb[OpenAI]["gpt-4o"]) {
		t.Fatalf("identical entries encoded differently: %s vs %s", ea[OpenAI]["gpt-4o"], eb[OpenAI]["gpt-4o"])
	}
	if len(ea[Gemini]) != 0 {
		t.Fatalf("expected empty gemini entries, got %v", ea[Gemini])
	}
}

func TestDecodeNormalizesMissingKeys(t *testing.T) {
	p, err := Decode([]byte(`{"lastUpdated":"2026-01-01","providers":{"openai":{"gpt-4o":{"provider":"OpenAI","category":"Text tokens","input":2.5}}}}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Providers.Cohere == nil || p.Providers.Imagen == nil {
		t.Fatalf("expected missing records to be normalized")
	}
	if got := *p.Providers.OpenAI["gpt-4o"].Input; got != 2.5 {
		t.Fatalf("input = %v, want 2.5", got)
	}
}
