package pipeline

import (
	"context"
	"fmt"

	"github.com/MeKo-Tech/scantext/internal/rasterizer"
	"github.com/MeKo-Tech/scantext/internal/scratch"
)

// Strategy selects preprocessing, concurrency and failure policy for a run.
type Strategy string

const (
	// StrategyEnhanced preprocesses every page image and degrades failed
	// pages to empty text instead of aborting.
	StrategyEnhanced Strategy = "enhanced"
	// StrategyStandard processes pages sequentially without preprocessing
	// and aborts the whole run on the first page failure.
	StrategyStandard Strategy = "standard"
	// StrategyAlternative is StrategyEnhanced without the preprocessing
	// step.
	StrategyAlternative Strategy = "alternative"
)

// ParseStrategy maps a user-supplied name to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyEnhanced, StrategyStandard, StrategyAlternative:
		return Strategy(s), nil
	case "":
		return StrategyEnhanced, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (want enhanced, standard or alternative)", s)
	}
}

// enhances reports whether the strategy runs the image enhancer.
func (s Strategy) enhances() bool { return s == StrategyEnhanced }

// concurrent reports whether pages are fanned out to a worker pool.
func (s Strategy) concurrent() bool { return s != StrategyStandard }

// failFast reports whether the first page failure aborts the run.
func (s Strategy) failFast() bool { return s == StrategyStandard }

// Outcome tags how complete an extraction result is.
type Outcome string

const (
	// OutcomeComplete means every page produced text.
	OutcomeComplete Outcome = "complete"
	// OutcomePartial means at least one page degraded to empty text.
	OutcomePartial Outcome = "partial"
)

// PageOutcome is the per-page result. One is always produced for every
// rasterized page so ordering can be reconstructed even for failed pages.
type PageOutcome struct {
	PageIndex int    `json:"page_index"`
	Text      string `json:"text"`
	Succeeded bool   `json:"succeeded"`
}

// Result is a non-fatal extraction outcome: the reordered, joined text of
// all pages plus enough detail for the caller to distinguish a clean run
// from a degraded one.
type Result struct {
	Text        string  `json:"text"`
	Outcome     Outcome `json:"outcome"`
	PageCount   int     `json:"page_count"`
	FailedPages []int   `json:"failed_pages,omitempty"`
}

// Options are per-call tuning parameters. Zero values fall back to the
// pipeline's configured defaults.
type Options struct {
	Strategy   Strategy
	Language   string // recognition language profile, e.g. "eng+vie"
	DPI        int    // raster resolution
	MaxWorkers int    // page-level concurrency cap for concurrent strategies
	Progress   ProgressCallback
}

// PipelineError wraps an unexpected failure from the fan-out stage that
// is not part of the taxonomy the caller branches on.
type PipelineError struct {
	Err error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("extraction pipeline failed: %v", e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Rasterizer renders a PDF into per-page raster files inside an arena.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfBytes []byte, arena *scratch.Arena, opts rasterizer.Options) ([]rasterizer.RasterPage, error)
}

// Enhancer is an opaque bytes-to-bytes page image transform.
type Enhancer interface {
	Enhance(imageBytes []byte) ([]byte, error)
}

// Recognizer extracts text from one page image file.
type Recognizer interface {
	Recognize(ctx context.Context, path, language string) (string, error)
}
