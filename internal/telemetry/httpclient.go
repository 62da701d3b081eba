package telemetry

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type providerKey struct{}

// WithProvider tags ctx with the provider a request is made for.
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, providerKey{}, provider)
}

// ProviderFrom returns the provider tagged by WithProvider, or "".
func ProviderFrom(ctx context.Context) string {
	p, _ := ctx.Value(providerKey{}).(string)
	return p
}

type instrumentedTransport struct {
	base http.RoundTripper
}

// NewInstrumentedTransport wraps the provided RoundTripper with tracing and metrics.
func NewInstrumentedTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &instrumentedTransport{base: base}
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	providerName := ProviderFrom(ctx)

	ctx, span := StartSpan(ctx, "pricing.http",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("provider", providerName),
		),
	)
	start := time.Now()
	resp, err := t.base.RoundTrip(req.WithContext(ctx))
	latency := time.Since(start)

	status := 0
	result := "ok"
	if resp != nil {
		status = resp.StatusCode
	}
	if err != nil {
		result = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else if status >= http.StatusBadRequest {
		result = "http_error"
		span.SetStatus(codes.Error, http.StatusText(status))
	}
	span.SetAttributes(attribute.Int("http.status_code", status))

	ObserveFetchLatency(ctx, providerName, status, result, latency)
	span.End()
	return resp, err
}
