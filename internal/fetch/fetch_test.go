package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"pricing-ingest/internal/config"
	"pricing-ingest/internal/pricing"
	"pricing-ingest/internal/providers/openai"
)

const fixturePath = "../../fixtures/openai.md"

const remoteDoc = "### Text tokens\n\n| Model | Input | Output |\n| --- | --- | --- |\n| remote-model | $1.00 | $2.00 |\n"

func newServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func baselineRecord() pricing.TextRecord {
	return pricing.TextRecord{"old-model": {Provider: "OpenAI", Category: "Text tokens", Input: pricing.Float(9)}}
}

func source(url, fixture string) config.Source {
	return config.Source{Provider: pricing.OpenAI, Document: "openai", URL: url, FixturePath: fixture}
}

func TestResolveRemote(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "pricing-test" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(remoteDoc))
	})
	c := NewClient(time.Second, "pricing-test")
	got := Resolve(context.Background(), c, source(srv.URL, fixturePath), openai.Text{}, baselineRecord)
	if _, ok := got["remote-model"]; !ok || len(got) != 1 {
		t.Fatalf("expected the remote record, got %v", got)
	}
}

func TestResolveServerErrorUsesFixture(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := NewClient(time.Second, "pricing-test")
	got := Resolve(context.Background(), c, source(srv.URL, fixturePath), openai.Text{}, baselineRecord)

	want, err := openai.Text{}.Parse(mustRead(t, fixturePath))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected the fixture record")
	}
}

func TestResolveTotalFailureKeepsBaseline(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	c := NewClient(time.Second, "pricing-test")
	missing := filepath.Join(t.TempDir(), "missing.md")
	got := Resolve(context.Background(), c, source(srv.URL, missing), openai.Text{}, baselineRecord)
	if !reflect.DeepEqual(got, baselineRecord()) {
		t.Fatalf("expected the baseline record unchanged, got %v", got)
	}
}

func TestResolveMarkerMissingFallsBack(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>Just a moment...</html>"))
	})
	c := NewClient(time.Second, "pricing-test")
	_, err := c.Get(context.Background(), pricing.OpenAI, srv.URL, openai.Text{}.Marker())
	if !errors.Is(err, ErrMarkerMissing) {
		t.Fatalf("expected ErrMarkerMissing, got %v", err)
	}
	got := Resolve(context.Background(), c, source(srv.URL, fixturePath), openai.Text{}, baselineRecord)
	if _, ok := got["gpt-4o"]; !ok {
		t.Fatalf("expected the fixture record, got %d models", len(got))
	}
}

func TestResolveRemoteParseErrorRetriesFixture(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("### Text tokens\n\nTable moved.\n"))
	})
	c := NewClient(time.Second, "pricing-test")
	got := Resolve(context.Background(), c, source(srv.URL, fixturePath), openai.Text{}, baselineRecord)
	if _, ok := got["gpt-4o"]; !ok {
		t.Fatalf("expected the fixture record, got %d models", len(got))
	}
}

func TestResolveTimeout(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
		w.Write([]byte(remoteDoc))
	})
	c := NewClient(20*time.Millisecond, "pricing-test")
	got := Resolve(context.Background(), c, source(srv.URL, fixturePath), openai.Text{}, baselineRecord)
	if _, ok := got["remote-model"]; ok {
		t.Fatal("a timed-out request must not be used")
	}
	if _, ok := got["gpt-4o"]; !ok {
		t.Fatal("expected the fixture record after a timeout")
	}
}

func TestResolveForceFixtureSkipsRemote(t *testing.T) {
	srv, hits := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(remoteDoc))
	})
	c := NewClient(time.Second, "pricing-test")
	src := source(srv.URL, fixturePath)
	src.ForceFixture = true
	got := Resolve(context.Background(), c, src, openai.Text{}, baselineRecord)
	if hits.Load() != 0 {
		t.Fatalf("remote should not be requested, got %d hits", hits.Load())
	}
	if _, ok := got["gpt-4o"]; !ok {
		t.Fatal("expected the fixture record")
	}
}

func TestClientFetchesEachURLOnce(t *testing.T) {
	doc := mustRead(t, fixturePath)
	srv, hits := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(doc))
	})
	c := NewClient(time.Second, "pricing-test")
	ctx := context.Background()
	text := Resolve(ctx, c, source(srv.URL, ""), openai.Text{}, baselineRecord)
	images := Resolve(ctx, c, source(srv.URL, ""), openai.Images{}, func() pricing.ImageRecord { return nil })
	if len(text) == 0 || len(images) == 0 {
		t.Fatalf("expected both records from the shared document")
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one request for the shared document, got %d", hits.Load())
	}
}

type emptyParser struct{}

func (emptyParser) Marker() string { return "" }
func (emptyParser) Parse(string) (pricing.FlatRecord, error) {
	return pricing.FlatRecord{}, nil
}

func TestResolveEmptyRecordIsFailure(t *testing.T) {
	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("anything"))
	})
	c := NewClient(time.Second, "pricing-test")
	prev := pricing.FlatRecord{"whisper": {Price: 0.006, Category: "Audio", Provider: "OpenAI"}}
	got := Resolve(context.Background(), c, source(srv.URL, fixturePath), emptyParser{}, func() pricing.FlatRecord { return prev })
	if !reflect.DeepEqual(got, prev) {
		t.Fatalf("empty parses should fall back to the baseline, got %v", got)
	}
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	doc, err := readFixture(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return doc
}

func TestGetRejectsOversizedDocument(t *testing.T) {
	prev := maxDocumentBytes
	maxDocumentBytes = len(remoteDoc) - 1
	t.Cleanup(func() { maxDocumentBytes = prev })

	srv, _ := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(remoteDoc))
	})
	c := NewClient(time.Second, "pricing-test")
	if _, err := c.Get(context.Background(), pricing.OpenAI, srv.URL, "### Text tokens"); !errors.Is(err, ErrDocumentTooLarge) {
		t.Fatalf("expected ErrDocumentTooLarge, got %v", err)
	}

	maxDocumentBytes = len(remoteDoc)
	fresh := NewClient(time.Second, "pricing-test")
	if _, err := fresh.Get(context.Background(), pricing.OpenAI, srv.URL, "### Text tokens"); err != nil {
		t.Fatalf("a document at the limit should be accepted, got %v", err)
	}
}
