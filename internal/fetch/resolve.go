package fetch

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pricing-ingest/internal/config"
	"pricing-ingest/internal/providers"
	"pricing-ingest/internal/telemetry"
)

// Source tiers, in fallback order.
const (
	TierRemote   = "remote"
	TierFixture  = "fixture"
	TierBaseline = "baseline"
)

// Resolve returns the provider's record from the first tier that yields a
// non-empty parse: the remote document, then the local fixture, then the
// previous run's record. It never fails; every fallthrough is logged with
// the provider and tier.
func Resolve[R ~map[string]E, E any](
	ctx context.Context,
	c *Client,
	src config.Source,
	parser providers.Parser[R],
	baseline func() R,
) R {
	ctx, span := telemetry.StartSpan(ctx, "pricing.resolve",
		trace.WithAttributes(
			attribute.String("provider", src.Provider),
			attribute.String("document", src.Document),
		),
	)
	defer span.End()

	record, tier, ok := resolve(ctx, c, src, parser)
	if !ok {
		slog.Warn("all sources failed, keeping previous pricing",
			"provider", src.Provider,
			"tier", TierBaseline,
		)
		record, tier = baseline(), TierBaseline
		telemetry.RecordTierOutcome(ctx, src.Provider, TierBaseline, "ok")
	}
	span.SetAttributes(
		attribute.String("tier", tier),
		attribute.Int("models", len(record)),
	)
	slog.Info("pricing resolved",
		"provider", src.Provider,
		"document", src.Document,
		"tier", tier,
		"models", len(record),
	)
	return record
}

func resolve[R ~map[string]E, E any](ctx context.Context, c *Client, src config.Source, parser providers.Parser[R]) (R, string, bool) {
	if !src.ForceFixture {
		doc, err := c.Get(ctx, src.Provider, src.URL, parser.Marker())
		if err != nil {
			slog.Warn("remote pricing unavailable",
				"provider", src.Provider,
				"tier", TierRemote,
				"url", src.URL,
				"error", err,
			)
			telemetry.RecordTierOutcome(ctx, src.Provider, TierRemote, "unavailable")
		} else if record, err := parse(parser, doc); err != nil {
			slog.Warn("remote pricing failed to parse, retrying with fixture",
				"provider", src.Provider,
				"tier", TierRemote,
				"error", err,
			)
			telemetry.RecordTierOutcome(ctx, src.Provider, TierRemote, outcome(err))
		} else {
			observe(ctx, src.Provider, TierRemote, doc)
			return record, TierRemote, true
		}
	}

	doc, err := readFixture(src.FixturePath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		slog.Debug("no pricing fixture", "provider", src.Provider, "tier", TierFixture, "path", src.FixturePath)
		telemetry.RecordTierOutcome(ctx, src.Provider, TierFixture, "unavailable")
		return nil, "", false
	case err != nil:
		slog.Warn("pricing fixture unreadable",
			"provider", src.Provider,
			"tier", TierFixture,
			"path", src.FixturePath,
			"error", err,
		)
		telemetry.RecordTierOutcome(ctx, src.Provider, TierFixture, "unavailable")
		return nil, "", false
	}
	record, err := parse(parser, doc)
	if err != nil {
		slog.Warn("pricing fixture failed to parse",
			"provider", src.Provider,
			"tier", TierFixture,
			"path", src.FixturePath,
			"error", err,
		)
		telemetry.RecordTierOutcome(ctx, src.Provider, TierFixture, outcome(err))
		return nil, "", false
	}
	observe(ctx, src.Provider, TierFixture, doc)
	return record, TierFixture, true
}

// parse treats an empty record as a failure so it falls through.
func parse[R ~map[string]E, E any](parser providers.Parser[R], doc string) (R, error) {
	record, err := parser.Parse(doc)
	if err != nil {
		return nil, err
	}
	if len(record) == 0 {
		return nil, ErrEmptyRecord
	}
	return record, nil
}

func outcome(err error) string {
	if errors.Is(err, ErrEmptyRecord) {
		return "empty"
	}
	return "parse_error"
}

func observe(ctx context.Context, provider, tier, doc string) {
	tokens := telemetry.CountTokens(doc)
	telemetry.RecordTierOutcome(ctx, provider, tier, "ok")
	telemetry.RecordDocumentTokens(ctx, provider, tier, tokens)
	slog.Debug("pricing document parsed",
		"provider", provider,
		"tier", tier,
		"bytes", len(doc),
		"tokens", tokens,
	)
}

func readFixture(path string) (string, error) {
	if path == "" {
		return "", fs.ErrNotExist
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
