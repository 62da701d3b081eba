package openai

import (
	"errors"
	"os"
	"reflect"
	"testing"

	"pricing-ingest/internal/markdown"
	"pricing-ingest/internal/pricing"
)

func loadFixture(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../../fixtures/openai.md")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(data)
}

func TestTextParsesGPT4o(t *testing.T) {
	doc := "### Text tokens\n\n| Model | Input | Cached input | Output |\n| --- | --- | --- | --- |\n| gpt-4o | $2.50 | $1.25 | $10.00 |\n"
	record, err := Text{}.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	want := pricing.TextRecord{
		"gpt-4o": {
			Provider:    "OpenAI",
			Category:    "Text tokens",
			Input:       pricing.Float(2.5),
			CachedInput: pricing.Float(1.25),
			Output:      pricing.Float(10),
		},
	}
	if !reflect.DeepEqual(record, want) {
		t.Fatalf("got %+v, want %+v", record, want)
	}
}

func TestTextStandardBeatsBatchRegardlessOfOrder(t *testing.T) {
	docs := []string{
		"### Text tokens\n| Model | Tier | Input | Output |\n| --- | --- | --- | --- |\n| gpt-4o | Batch | $1.25 | $5.00 |\n| gpt-4o | Standard | $2.50 | $10.00 |\n",
		"### Text tokens\n| Model | Tier | Input | Output |\n| --- | --- | --- | --- |\n| gpt-4o | Standard | $2.50 | $10.00 |\n| gpt-4o | Batch | $1.25 | $5.00 |\n",
	}
	for i, doc := range docs {
		record, err := Text{}.Parse(doc)
		if err != nil {
			t.Fatalf("doc %d: Parse error: %v", i, err)
		}
		if got := *record["gpt-4o"].Input; got != 2.5 {
			t.Errorf("doc %d: input = %v, want standard 2.5", i, got)
		}
		if got := *record["gpt-4o"].Output; got != 10 {
			t.Errorf("doc %d: output = %v, want standard 10", i, got)
		}
	}
}

func TestTextEmptyTableFails(t *testing.T) {
	doc := "### Text tokens\n\n| Model | Input | Cached input | Output |\n| --- | --- | --- | --- |\n"
	if _, err := (Text{}).Parse(doc); !errors.Is(err, markdown.ErrSectionNotFound) {
		t.Fatalf("expected ErrSectionNotFound, got %v", err)
	}
}

func TestTextOnlyHeaderRowsFails(t *testing.T) {
	doc := "### Text tokens\n\n| Model | Input | Output |\n| --- | --- | --- |\n| Model | Input | Output |\n| --- | --- | --- |\n"
	if _, err := (Text{}).Parse(doc); !errors.Is(err, markdown.ErrNoModels) {
		t.Fatalf("expected ErrNoModels, got %v", err)
	}
}

func TestTextMissingSection(t *testing.T) {
	if _, err := (Text{}).Parse("# Pricing\n\nNothing here"); !errors.Is(err, markdown.ErrSectionNotFound) {
		t.Fatalf("expected ErrSectionNotFound, got %v", err)
	}
}

func TestTextFixture(t *testing.T) {
	doc := loadFixture(t)
	record, err := Text{}.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	gpt4o := record["gpt-4o"]
	if *gpt4o.Input != 2.5 || *gpt4o.CachedInput != 1.25 || *gpt4o.Output != 10 {
		t.Fatalf("gpt-4o should keep standard prices, got %+v", gpt4o)
	}
	if record["gpt-4o-2024-05-13"].CachedInput != nil {
		t.Fatalf("dash cell must be absent, got %v", *record["gpt-4o-2024-05-13"].CachedInput)
	}
	// Only listed under Batch, so the batch row is the best available.
	if got := *record["gpt-4-turbo"].Input; got != 5 {
		t.Fatalf("gpt-4-turbo input = %v, want 5", got)
	}
	realtime := record["gpt-4o-realtime-preview"]
	if realtime.Category != "Audio tokens" || *realtime.AudioInput != 40 || *realtime.AudioCachedInput != 2.5 {
		t.Fatalf("unexpected audio entry %+v", realtime)
	}
	if got := *record["gpt-4.1-mini"].FineTuning; got != 5 {
		t.Fatalf("gpt-4.1-mini fine-tuning = %v, want 5", got)
	}
	if got := *record["gpt-4.1-mini"].Input; got != 0.4 {
		t.Fatalf("fine-tuning must not overwrite text input, got %v", got)
	}
	ft := record["gpt-4o-2024-08-06"]
	if ft.Category != "Fine-tuning" || *ft.FineTuning != 25 || *ft.Input != 3.75 {
		t.Fatalf("unexpected fine-tuning entry %+v", ft)
	}

	again, err := Text{}.Parse(doc)
	if err != nil {
		t.Fatalf("second Parse error: %v", err)
	}
	if !reflect.DeepEqual(record, again) {
		t.Fatalf("parsing the same fixture twice gave different records")
	}
}

func TestImagesFixture(t *testing.T) {
	record, err := Images{}.Parse(loadFixture(t))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	hd := record["dall-e-3"]["hd-1024x1792"]
	want := pricing.ImagePrice{Price: 0.12, Category: "Image generation", Provider: "OpenAI", Unit: "perImage"}
	if hd != want {
		t.Fatalf("dall-e-3 hd = %+v, want %+v", hd, want)
	}
	if got := record["dall-e-2"]["standard-256x256"].Price; got != 0.016 {
		t.Fatalf("dall-e-2 256 = %v, want 0.016", got)
	}
	if len(record["dall-e-3"]) != 6 {
		t.Fatalf("expected 6 dall-e-3 prices, got %d", len(record["dall-e-3"]))
	}
}

func TestEmbeddingsFixture(t *testing.T) {
	record, err := Embeddings{}.Parse(loadFixture(t))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	small := record["text-embedding-3-small"]
	if small.Price != 0.02 || small.Unit != "per1MTokens" || small.Category != "Embeddings" {
		t.Fatalf("unexpected small entry %+v", small)
	}
	if small.Context == nil || *small.Context != 8000 {
		t.Fatalf("expected 8k context, got %v", small.Context)
	}
	if len(record) != 3 {
		t.Fatalf("expected 3 embedding models, got %d", len(record))
	}
}

func TestAudioFixture(t *testing.T) {
	record, err := Audio{}.Parse(loadFixture(t))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	whisper := record["whisper"]
	if whisper.Price != 0.006 || whisper.Unit != "perMinute" || whisper.Category != "Transcription" {
		t.Fatalf("unexpected whisper entry %+v", whisper)
	}
	if got := record["tts-hd"]; got.Price != 30 || got.Unit != "per1MCharacters" {
		t.Fatalf("unexpected tts-hd entry %+v", got)
	}
}

func TestMarkersMatchFixture(t *testing.T) {
	doc := loadFixture(t)
	for _, marker := range []string{Text{}.Marker(), Images{}.Marker(), Embeddings{}.Marker(), Audio{}.Marker()} {
		if !containsLine(doc, marker) {
			t.Errorf("fixture lacks marker %q", marker)
		}
	}
}

func containsLine(doc, marker string) bool {
	for _, line := range markdown.Lines(doc) {
		if line == marker {
			return true
		}
	}
	return false
}

func TestImagesTierPriority(t *testing.T) {
	doc := "### Image generation\n\n#### Batch\n\n| Model | Quality | 1024x1024 |\n| --- | --- | --- |\n| DALL·E 3 | Standard | $0.02 |\n| DALL·E 2 | Standard | $0.01 |\n\n" +
		"#### Standard\n\n| Model | Quality | 1024x1024 |\n| --- | --- | --- |\n| DALL·E 3 | Standard | $0.04 |\n"
	record, err := Images{}.Parse(doc)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := record["dall-e-3"]["standard-1024x1024"].Price; got != 0.04 {
		t.Fatalf("dall-e-3 = %v, want standard 0.04", got)
	}
	// Only listed under Batch, so the batch price is kept.
	if got := record["dall-e-2"]["standard-1024x1024"].Price; got != 0.01 {
		t.Fatalf("dall-e-2 = %v, want batch 0.01", got)
	}
}
