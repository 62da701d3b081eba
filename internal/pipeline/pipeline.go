// Package pipeline builds the pricing payload: it resolves every provider
// concurrently, diffs the result against the previous payload and persists it.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"pricing-ingest/internal/async"
	"pricing-ingest/internal/baseline"
	"pricing-ingest/internal/catalog"
	"pricing-ingest/internal/config"
	"pricing-ingest/internal/fetch"
	"pricing-ingest/internal/pricing"
	"pricing-ingest/internal/providers"
	"pricing-ingest/internal/providers/anthropic"
	"pricing-ingest/internal/providers/cohere"
	"pricing-ingest/internal/providers/gemini"
	"pricing-ingest/internal/providers/imagen"
	"pricing-ingest/internal/providers/openai"
	"pricing-ingest/internal/providers/perplexity"
	"pricing-ingest/internal/publish"
	"pricing-ingest/internal/schema"
	"pricing-ingest/internal/telemetry"
)

// Options control a single run.
type Options struct {
	// DryRun computes and prints the diff but writes nothing.
	DryRun bool
	// NoHistory skips the dated snapshot.
	NoHistory bool
	// Now is the run clock; it defaults to time.Now.
	Now func() time.Time
	// Out receives the run summary; it defaults to os.Stdout.
	Out io.Writer
}

// Result describes what a run produced.
type Result struct {
	Payload *pricing.Payload
	Diff    Diff
	// Issues is the number of strict schema violations in the new payload.
	Issues int
	// Written is false for dry runs.
	Written bool
	// SnapshotPath is set when a history snapshot was created.
	SnapshotPath string
}

// Pipeline holds the collaborators for a run.
type Pipeline struct {
	cfg       config.Config
	client    *fetch.Client
	baseline  *baseline.Store
	publisher *publish.Publisher
}

// New returns a Pipeline for cfg. publisher may be nil.
func New(cfg config.Config, publisher *publish.Publisher) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		client:    fetch.NewClient(cfg.FetchTimeout, cfg.UserAgent),
		baseline:  baseline.NewStore(cfg.OutputPath),
		publisher: publisher,
	}
}

// Run refreshes the payload. Provider failures never fail a run; only reading
// the previous payload or writing the new one can.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	ctx, span := telemetry.StartSpan(ctx, "pricing.run")
	defer span.End()

	prev, err := p.baseline.Load()
	if err != nil {
		return nil, err
	}
	if !p.baseline.Exists() {
		slog.Info("bootstrapping pricing payload", "path", p.cfg.OutputPath)
	}

	next := &pricing.Payload{
		LastUpdated:         opts.Now().UTC().Format(time.DateOnly),
		Providers:           p.resolveAll(ctx, prev.Providers),
		AdditionalProviders: p.additionalProviders(prev.AdditionalProviders),
	}
	next.Normalize()

	diff, err := Compare(prev.Providers, next.Providers)
	if err != nil {
		return nil, err
	}
	issues := schema.ValidatePayload(next)
	res := &Result{Payload: next, Diff: diff, Issues: len(issues)}

	diff.Print(opts.Out)
	if len(issues) > 0 {
		fmt.Fprintf(opts.Out, "Schema issues: %d\n", len(issues))
	}
	span.SetAttributes(
		attribute.Bool("dry_run", opts.DryRun),
		attribute.Int("schema_issues", len(issues)),
	)

	if opts.DryRun {
		slog.Info("dry run, nothing written", "changed", !diff.Empty())
		return res, nil
	}

	data, err := Encode(next)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(p.cfg.OutputPath, data); err != nil {
		return nil, err
	}
	res.Written = true
	slog.Info("pricing payload written", "path", p.cfg.OutputPath, "bytes", len(data))

	if !opts.NoHistory {
		path, created, err := writeSnapshot(p.cfg.HistoryDir, next.LastUpdated, data)
		if err != nil {
			return nil, err
		}
		if created {
			res.SnapshotPath = path
			slog.Info("history snapshot written", "path", path)
		} else {
			slog.Info("history snapshot already exists, skipping", "path", path)
		}
	}

	if err := p.publisher.Publish(ctx, next.LastUpdated, data); err != nil {
		slog.Warn("Redis publish failed", "error", err, "backend", p.publisher.Backend())
	}
	return res, nil
}

// resolveAll runs every provider through the fallback chain concurrently.
// Each task writes only its own field of out.
func (p *Pipeline) resolveAll(ctx context.Context, prev pricing.Providers) pricing.Providers {
	var out pricing.Providers
	src := p.cfg.Sources
	tasks := []func(context.Context){
		func(ctx context.Context) {
			out.OpenAI = resolve(ctx, p.client, src[pricing.OpenAI], openai.Text{}, prev.OpenAI, schema.ValidateText)
		},
		func(ctx context.Context) {
			out.Anthropic = resolve(ctx, p.client, src[pricing.Anthropic], anthropic.Parser{}, prev.Anthropic, schema.ValidateText)
		},
		func(ctx context.Context) {
			out.Gemini = resolve(ctx, p.client, src[pricing.Gemini], gemini.Parser{}, prev.Gemini, schema.ValidateGemini)
		},
		func(ctx context.Context) {
			out.DALLE = resolve(ctx, p.client, src[pricing.DALLE], openai.Images{}, prev.DALLE, schema.ValidateImage)
		},
		func(ctx context.Context) {
			out.Embedding = resolve(ctx, p.client, src[pricing.Embedding], openai.Embeddings{}, prev.Embedding, schema.ValidateFlat)
		},
		func(ctx context.Context) {
			out.Audio = resolve(ctx, p.client, src[pricing.Audio], openai.Audio{}, prev.Audio, schema.ValidateFlat)
		},
		func(ctx context.Context) {
			out.Cohere = resolve(ctx, p.client, src[pricing.Cohere], cohere.Parser{}, prev.Cohere, schema.ValidateText)
		},
		func(ctx context.Context) {
			out.Perplexity = resolve(ctx, p.client, src[pricing.Perplexity], perplexity.Parser{}, prev.Perplexity, schema.ValidateText)
		},
		func(ctx context.Context) {
			out.Imagen = resolve(ctx, p.client, src[pricing.Imagen], imagen.Parser{}, prev.Imagen, schema.ValidateImage)
		},
	}

	limit := p.cfg.Concurrency
	if limit <= 0 {
		limit = len(tasks)
	}
	grp := async.NewGroup(ctx, limit)
	for _, task := range tasks {
		grp.Go(func(ctx context.Context) error {
			task(ctx)
			return nil
		})
	}
	slog.Debug("provider tasks launched", "tasks", len(tasks), "limit", limit, "in_flight", grp.QueueDepth())
	grp.Wait()
	return out
}

func resolve[R ~map[string]E, E any](
	ctx context.Context,
	c *fetch.Client,
	src config.Source,
	parser providers.Parser[R],
	prev R,
	validate schema.Validator[R],
) R {
	record := fetch.Resolve(ctx, c, src, parser, func() R { return prev })
	return schema.Safe(src.Provider, record, validate)
}

// additionalProviders returns the curated catalog, or the previous one when
// the catalog fails validation.
func (p *Pipeline) additionalProviders(prev pricing.AdditionalProviderPayloads) pricing.AdditionalProviderPayloads {
	c, err := catalog.Load()
	if err != nil {
		slog.Warn("curated catalog rejected, keeping previous", "error", err)
		return prev
	}
	return c
}
