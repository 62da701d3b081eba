package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCountTokens(t *testing.T) {
	if got := CountTokens(""); got != 0 {
		t.Fatalf("expected 0 for empty text, got %d", got)
	}
	if got := CountTokens("| gpt-4o | $2.50 | $1.25 | $10.00 |"); got == 0 {
		t.Fatalf("expected token count > 0")
	}
}

func TestEstimateTokensByChars(t *testing.T) {
	if got := estimateTokensByChars("abcde"); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestProviderContext(t *testing.T) {
	ctx := WithProvider(context.Background(), "openai")
	if got := ProviderFrom(ctx); got != "openai" {
		t.Fatalf("ProviderFrom = %q, want openai", got)
	}
	if got := ProviderFrom(context.Background()); got != "" {
		t.Fatalf("untagged context should have no provider, got %q", got)
	}
}

func TestInstrumentedTransportPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewInstrumentedTransport(nil)}
	req, err := http.NewRequestWithContext(WithProvider(context.Background(), "cohere"), http.MethodGet, srv.URL, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusTeapot {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTeapot)
	}
}
