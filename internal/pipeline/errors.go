package pipeline

import (
	"errors"

	"github.com/MeKo-Tech/scantext/internal/enhancer"
	"github.com/MeKo-Tech/scantext/internal/rasterizer"
	"github.com/MeKo-Tech/scantext/internal/recognizer"
)

// isTaxonomyError reports whether err already carries one of the typed
// errors callers branch on.
func isTaxonomyError(err error) bool {
	var rasterErr *rasterizer.RasterizationError
	var recErr *recognizer.RecognitionError
	var enhErr *enhancer.EnhanceError
	return errors.As(err, &rasterErr) || errors.As(err, &recErr) || errors.As(err, &enhErr)
}

// IsFatalInput reports whether err means the document itself is unusable
// (malformed PDF, zero pages) rather than a processing failure. Callers
// use this to distinguish "bad upload" from "try again later".
func IsFatalInput(err error) bool {
	var rasterErr *rasterizer.RasterizationError
	return errors.As(err, &rasterErr)
}
