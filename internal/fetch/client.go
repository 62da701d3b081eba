// Package fetch obtains provider pricing documents and resolves each provider's
// record through the remote, fixture and baseline tiers.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"pricing-ingest/internal/telemetry"
)

// maxDocumentBytes caps a remote document read. A variable so tests can lower it.
var maxDocumentBytes = 8 << 20

var (
	// ErrMarkerMissing means the document lacks the parser's marker text,
	// usually because the vendor page moved or the reader returned an error page.
	ErrMarkerMissing = errors.New("document missing pricing marker")
	// ErrEmptyRecord means a parser returned no entries.
	ErrEmptyRecord = errors.New("parser returned no entries")
	// ErrDocumentTooLarge means the remote body exceeded maxDocumentBytes.
	ErrDocumentTooLarge = errors.New("document exceeds size limit")
)

// StatusError is a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Code)
}

type document struct {
	body string
	err  error
}

// Client fetches remote documents. Each URL is requested at most once per
// Client; concurrent and later callers share the first result.
type Client struct {
	http      *http.Client
	userAgent string
	timeout   time.Duration

	group singleflight.Group
	docs  sync.Map // url -> document
}

// NewClient returns a Client whose requests time out after timeout.
func NewClient(timeout time.Duration, userAgent string) *Client {
	return &Client{
		http:      &http.Client{Transport: telemetry.NewInstrumentedTransport(nil)},
		userAgent: userAgent,
		timeout:   timeout,
	}
}

// Get returns the document at url if it contains marker.
func (c *Client) Get(ctx context.Context, provider, url, marker string) (string, error) {
	body, err := c.document(ctx, provider, url)
	if err != nil {
		return "", err
	}
	if marker != "" && !strings.Contains(body, marker) {
		return "", fmt.Errorf("%s: %q: %w", url, marker, ErrMarkerMissing)
	}
	return body, nil
}

func (c *Client) document(ctx context.Context, provider, url string) (string, error) {
	if cached, ok := c.docs.Load(url); ok {
		d := cached.(document)
		return d.body, d.err
	}
	v, _, _ := c.group.Do(url, func() (any, error) {
		if cached, ok := c.docs.Load(url); ok {
			return cached, nil
		}
		body, err := c.fetch(ctx, provider, url)
		d := document{body: body, err: err}
		c.docs.Store(url, d)
		return d, nil
	})
	d := v.(document)
	return d.body, d.err
}

func (c *Client) fetch(ctx context.Context, provider, url string) (string, error) {
	ctx, cancel := context.WithTimeout(telemetry.WithProvider(ctx, provider), c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/markdown, text/plain;q=0.9, */*;q=0.1")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", &StatusError{URL: url, Code: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(maxDocumentBytes)+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	if len(data) > maxDocumentBytes {
		return "", fmt.Errorf("read %s: %w (limit %d bytes)", url, ErrDocumentTooLarge, maxDocumentBytes)
	}
	return string(data), nil
}
