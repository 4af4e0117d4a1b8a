package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// BatchRenderer renders several dataset files concurrently, for example
// when a report covers one file per region.
type BatchRenderer struct {
	// pipelineFactory creates a fresh pipeline for each file so no step
	// state leaks between renders.
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchRenderer.
type BatchOption func(*BatchRenderer)

// WithBatchLogger sets a custom logger for batch rendering.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchRenderer) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent renders.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchRenderer) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchRenderer creates a BatchRenderer. The default concurrency is
// the number of CPUs.
func NewBatchRenderer(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchRenderer {
	br := &BatchRenderer{
		pipelineFactory: pipelineFactory,
		concurrency:     runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(br)
	}
	if br.logger == nil {
		br.logger = slog.Default()
	}
	return br
}

// RenderAll renders every source with the same request. Dashboards are
// returned in source order. A failed render is recorded in its dashboard
// and does not stop the others; only cancellation returns an error.
func (br *BatchRenderer) RenderAll(ctx context.Context, sources []string, req Request) ([]*Dashboard, error) {
	start := time.Now()
	results := make([]*Dashboard, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(br.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			d := NewDashboard(source, req)
			results[i] = d
			if err := br.pipelineFactory().Execute(ctx, d); err != nil {
				br.logger.Warn("render failed",
					"source", source,
					"error", err,
				)
			}
			return nil
		})
	}

	err := g.Wait()
	br.logger.Debug("batch render complete",
		"sources", len(sources),
		"elapsed", time.Since(start),
	)
	return results, err
}
