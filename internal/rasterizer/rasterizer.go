// Package rasterizer renders PDF pages to on-disk raster images.
//
// Input PDFs are structurally validated with pdfcpu before rendering;
// the actual rasterization is done by MuPDF via go-fitz. Each page is
// written as a PNG into the caller's scratch arena, and ownership of the
// files passes to the caller as soon as they are created.
package rasterizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"os"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/MeKo-Tech/scantext/internal/scratch"
)

// DefaultDPI is the render resolution used for recognition-grade rasters.
// 300 DPI yields roughly 2480x3508 pixels for an A4 page.
const DefaultDPI = 300

// RasterizationError reports a document that could not be rasterized at
// all: unparseable input or zero renderable pages. It is fatal for the
// document and not retryable.
type RasterizationError struct {
	Err error
}

func (e *RasterizationError) Error() string {
	return fmt.Sprintf("pdf rasterization failed: %v", e.Err)
}

func (e *RasterizationError) Unwrap() error { return e.Err }

// RasterPage is one rendered page. The file at Path lives in the scratch
// arena the page was rendered into and is deleted with it.
type RasterPage struct {
	PageIndex int // zero-based position in the original PDF
	Path      string
	Width     int
	Height    int
	DPI       int
}

// Options control the render pass.
type Options struct {
	DPI int // render resolution, DefaultDPI when zero
}

// Rasterizer renders PDFs page by page.
type Rasterizer struct {
	logger *slog.Logger
}

// New creates a Rasterizer.
func New() *Rasterizer {
	return &Rasterizer{logger: slog.Default()}
}

// Rasterize renders every page of pdfBytes into arena and returns the
// pages in original document order. Individual pages that fail to render
// or persist are skipped with a warning; they are tolerated, not errors.
// A document that yields no pages at all fails with *RasterizationError.
func (r *Rasterizer) Rasterize(ctx context.Context, pdfBytes []byte, arena *scratch.Arena, opts Options) ([]RasterPage, error) {
	if len(pdfBytes) == 0 {
		return nil, &RasterizationError{Err: errors.New("empty input")}
	}
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}

	if err := api.Validate(bytes.NewReader(pdfBytes), nil); err != nil {
		return nil, &RasterizationError{Err: fmt.Errorf("invalid pdf: %w", err)}
	}

	doc, err := fitz.NewFromMemory(pdfBytes)
	if err != nil {
		return nil, &RasterizationError{Err: fmt.Errorf("open pdf: %w", err)}
	}
	defer func() { _ = doc.Close() }()

	pageCount := doc.NumPage()
	if pageCount == 0 {
		return nil, &RasterizationError{Err: errors.New("document has no pages")}
	}

	pages := make([]RasterPage, 0, pageCount)
	for i := range pageCount {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := r.renderPage(doc, arena, i, dpi)
		if err != nil {
			r.logger.Warn("skipping page that failed to rasterize",
				"page_index", i, "error", err)
			continue
		}
		pages = append(pages, page)
	}

	if len(pages) == 0 {
		return nil, &RasterizationError{Err: fmt.Errorf("no pages rendered out of %d", pageCount)}
	}

	return pages, nil
}

func (r *Rasterizer) renderPage(doc *fitz.Document, arena *scratch.Arena, pageIndex, dpi int) (RasterPage, error) {
	img, err := doc.ImageDPI(pageIndex, float64(dpi))
	if err != nil {
		return RasterPage{}, fmt.Errorf("render page %d: %w", pageIndex, err)
	}

	path := arena.PagePath(pageIndex, "raster", "png")
	f, err := os.Create(path) //nolint:gosec // G304: path is arena-generated
	if err != nil {
		return RasterPage{}, fmt.Errorf("create raster file for page %d: %w", pageIndex, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return RasterPage{}, fmt.Errorf("encode page %d: %w", pageIndex, err)
	}
	if err := f.Close(); err != nil {
		return RasterPage{}, fmt.Errorf("close raster file for page %d: %w", pageIndex, err)
	}

	bounds := img.Bounds()
	return RasterPage{
		PageIndex: pageIndex,
		Path:      path,
		Width:     bounds.Dx(),
		Height:    bounds.Dy(),
		DPI:       dpi,
	}, nil
}
