package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/MeKo-Tech/scantext/internal/rasterizer"
	"github.com/MeKo-Tech/scantext/internal/scratch"
)

// processPage is the unit of per-page work: read the raster file,
// optionally enhance it into a second arena file, recognize whichever
// file is current, and emit the page's outcome.
//
// Every file touched here lives in the run's arena, so cleanup does not
// depend on how far the worker got before failing. On error the returned
// outcome is the degraded form (empty text, Succeeded=false); the caller
// decides whether that aborts the run.
func (p *Pipeline) processPage(ctx context.Context, page rasterizer.RasterPage, arena *scratch.Arena,
	enhance bool, language string,
) (PageOutcome, error) {
	failed := PageOutcome{PageIndex: page.PageIndex}

	target := page.Path
	if enhance {
		enhancedPath, err := p.enhancePage(page, arena)
		if err != nil {
			return failed, err
		}
		target = enhancedPath
	}

	text, err := p.recognizer.Recognize(ctx, target, language)
	if err != nil {
		return failed, err
	}

	return PageOutcome{
		PageIndex: page.PageIndex,
		Text:      text,
		Succeeded: true,
	}, nil
}

// enhancePage runs the image enhancer over the raster file and persists
// the result as a sibling artifact in the same arena.
func (p *Pipeline) enhancePage(page rasterizer.RasterPage, arena *scratch.Arena) (string, error) {
	raw, err := os.ReadFile(page.Path)
	if err != nil {
		return "", fmt.Errorf("read raster page %d: %w", page.PageIndex, err)
	}

	enhanced, err := p.enhancer.Enhance(raw)
	if err != nil {
		return "", err
	}

	path := arena.PagePath(page.PageIndex, "enhanced", "png")
	if err := os.WriteFile(path, enhanced, 0o600); err != nil {
		return "", fmt.Errorf("persist enhanced page %d: %w", page.PageIndex, err)
	}
	return path, nil
}
