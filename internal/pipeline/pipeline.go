// Package pipeline turns scanned PDF documents into machine-readable text.
//
// A run rasterizes the document into a per-run scratch arena, fans page
// workers out over a bounded pool (or sequentially, depending on the
// strategy), reorders the per-page results by page index, joins them into
// a single text stream, and removes the arena on every exit path.
package pipeline

import (
	"log/slog"
	"runtime"

	"github.com/MeKo-Tech/scantext/internal/enhancer"
	"github.com/MeKo-Tech/scantext/internal/rasterizer"
	"github.com/MeKo-Tech/scantext/internal/recognizer"
)

// Config holds defaults for a Pipeline. Per-call Options override the
// tunable parts.
type Config struct {
	ScratchDir string // base directory for run arenas ("" = system temp)
	RunPrefix  string // arena directory prefix
	Language   string // default recognition language profile
	DPI        int    // default raster resolution
	MaxWorkers int    // default page concurrency (0 = NumCPU)
	Enhancer   enhancer.Config
	Recognizer recognizer.Config
}

// DefaultConfig returns pipeline defaults.
func DefaultConfig() Config {
	return Config{
		RunPrefix:  "scantext",
		Language:   recognizer.DefaultLanguage,
		DPI:        rasterizer.DefaultDPI,
		MaxWorkers: runtime.NumCPU(),
		Enhancer:   enhancer.DefaultConfig(),
		Recognizer: recognizer.DefaultConfig(),
	}
}

// Pipeline orchestrates extraction runs. It is safe for concurrent use;
// all per-run state lives in the run's arena and stack.
type Pipeline struct {
	cfg        Config
	rasterizer Rasterizer
	enhancer   Enhancer
	recognizer Recognizer
	logger     *slog.Logger
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg        Config
	rasterizer Rasterizer
	enhancer   Enhancer
	recognizer Recognizer
}

// NewBuilder creates a pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// FromConfig creates a pipeline builder seeded with a complete
// configuration, typically produced by the config package.
func FromConfig(cfg Config) *Builder {
	b := &Builder{cfg: cfg}
	if b.cfg.RunPrefix == "" {
		b.cfg.RunPrefix = DefaultConfig().RunPrefix
	}
	return b
}

// WithScratchDir sets the base directory for run arenas.
func (b *Builder) WithScratchDir(dir string) *Builder {
	if dir != "" {
		b.cfg.ScratchDir = dir
	}
	return b
}

// WithLanguage sets the default recognition language profile.
func (b *Builder) WithLanguage(lang string) *Builder {
	if lang != "" {
		b.cfg.Language = lang
		b.cfg.Recognizer.Language = lang
	}
	return b
}

// WithDPI sets the default raster resolution.
func (b *Builder) WithDPI(dpi int) *Builder {
	if dpi > 0 {
		b.cfg.DPI = dpi
	}
	return b
}

// WithMaxWorkers caps page-level concurrency for concurrent strategies.
func (b *Builder) WithMaxWorkers(n int) *Builder {
	if n > 0 {
		b.cfg.MaxWorkers = n
	}
	return b
}

// WithRasterizer overrides the rasterizer implementation.
func (b *Builder) WithRasterizer(r Rasterizer) *Builder {
	if r != nil {
		b.rasterizer = r
	}
	return b
}

// WithEnhancer overrides the image enhancer implementation.
func (b *Builder) WithEnhancer(e Enhancer) *Builder {
	if e != nil {
		b.enhancer = e
	}
	return b
}

// WithRecognizer overrides the recognition engine implementation.
func (b *Builder) WithRecognizer(r Recognizer) *Builder {
	if r != nil {
		b.recognizer = r
	}
	return b
}

// Config returns a copy of the builder's current configuration.
func (b *Builder) Config() Config { return b.cfg }

// Build assembles the pipeline, filling in the production collaborators
// for anything not overridden.
func (b *Builder) Build() (*Pipeline, error) {
	p := &Pipeline{
		cfg:        b.cfg,
		rasterizer: b.rasterizer,
		enhancer:   b.enhancer,
		recognizer: b.recognizer,
		logger:     slog.Default(),
	}
	if p.rasterizer == nil {
		p.rasterizer = rasterizer.New()
	}
	if p.enhancer == nil {
		p.enhancer = enhancer.New(b.cfg.Enhancer)
	}
	if p.recognizer == nil {
		p.recognizer = recognizer.New(b.cfg.Recognizer)
	}
	if p.cfg.MaxWorkers <= 0 {
		p.cfg.MaxWorkers = runtime.NumCPU()
	}
	return p, nil
}
