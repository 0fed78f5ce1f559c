package pipeline

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/MeKo-Tech/scantext/internal/rasterizer"
	"github.com/MeKo-Tech/scantext/internal/scratch"
)

// ExtractText runs a full extraction with a background context.
func (p *Pipeline) ExtractText(pdfBytes []byte, opts Options) (*Result, error) {
	return p.ExtractTextContext(context.Background(), pdfBytes, opts)
}

// ExtractTextContext runs the full pipeline for one document:
// rasterize, fan out page workers, reorder by page index, join.
//
// The caller gets either a Result covering every rasterized page exactly
// once, in original order, or a single fatal error. Partial success is
// never signaled as an error and total failure never as truncated text.
// All scratch files created during the run are removed before returning,
// on every exit path including cancellation.
func (p *Pipeline) ExtractTextContext(ctx context.Context, pdfBytes []byte, opts Options) (*Result, error) {
	if p == nil || p.rasterizer == nil || p.recognizer == nil {
		return nil, errors.New("pipeline not initialized")
	}
	strategy, err := ParseStrategy(string(opts.Strategy))
	if err != nil {
		return nil, err
	}
	opts = p.withDefaults(opts)

	arena, err := scratch.NewArena(p.cfg.ScratchDir, p.cfg.RunPrefix)
	if err != nil {
		return nil, &PipelineError{Err: err}
	}
	defer arena.Close()

	pages, err := p.rasterizer.Rasterize(ctx, pdfBytes, arena, rasterizer.Options{DPI: opts.DPI})
	if err != nil {
		return nil, err
	}

	opts.Progress.OnStart(len(pages))

	var outcomes []PageOutcome
	if strategy.concurrent() {
		outcomes, err = p.fanOut(ctx, pages, arena, strategy, opts)
	} else {
		outcomes, err = p.runSequential(ctx, pages, arena, strategy, opts)
	}
	if err != nil {
		return nil, err
	}

	opts.Progress.OnComplete()

	sortOutcomes(outcomes)
	result := &Result{
		Text:        joinOutcomes(outcomes),
		Outcome:     OutcomeComplete,
		PageCount:   len(outcomes),
		FailedPages: failedPages(outcomes),
	}
	if len(result.FailedPages) > 0 {
		result.Outcome = OutcomePartial
	}
	return result, nil
}

// withDefaults fills zero-valued options from the pipeline config.
func (p *Pipeline) withDefaults(opts Options) Options {
	if opts.Language == "" {
		opts.Language = p.cfg.Language
	}
	if opts.DPI <= 0 {
		opts.DPI = p.cfg.DPI
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = p.cfg.MaxWorkers
	}
	if opts.Progress == nil {
		opts.Progress = NoOpProgress{}
	}
	return opts
}

// fanOut processes pages concurrently on a bounded pool and degrades
// failed pages to empty text. Completion order is not meaningful; the
// caller reorders by page index.
func (p *Pipeline) fanOut(ctx context.Context, pages []rasterizer.RasterPage, arena *scratch.Arena,
	strategy Strategy, opts Options,
) ([]PageOutcome, error) {
	outcomes := make([]PageOutcome, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.MaxWorkers)

	for i, page := range pages {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := p.processPage(gctx, page, arena, strategy.enhances(), opts.Language)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.logger.Warn("page degraded to empty text",
					"page_index", page.PageIndex, "error", err)
			}
			outcomes[i] = outcome
			opts.Progress.OnPage(outcome)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// Only cancellation escapes the workers; page-level failures are
		// absorbed as degraded outcomes above.
		return nil, fmt.Errorf("page fan-out aborted: %w", err)
	}
	return outcomes, nil
}

// runSequential processes pages one at a time in document order and
// aborts the run on the first page failure.
func (p *Pipeline) runSequential(ctx context.Context, pages []rasterizer.RasterPage, arena *scratch.Arena,
	strategy Strategy, opts Options,
) ([]PageOutcome, error) {
	outcomes := make([]PageOutcome, 0, len(pages))
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		outcome, err := p.processPage(ctx, page, arena, strategy.enhances(), opts.Language)
		if err != nil {
			return nil, wrapFatal(err)
		}
		outcomes = append(outcomes, outcome)
		opts.Progress.OnPage(outcome)
	}
	return outcomes, nil
}

// wrapFatal keeps taxonomy errors intact and wraps anything else so the
// caller always sees a known error type for a failed run.
func wrapFatal(err error) error {
	var pipelineErr *PipelineError
	if isTaxonomyError(err) || errors.As(err, &pipelineErr) {
		return err
	}
	return &PipelineError{Err: err}
}
