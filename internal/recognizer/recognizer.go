// Package recognizer runs optical text recognition on page images.
//
// Recognition is delegated to the Tesseract engine via gosseract. The
// engine client is not safe for concurrent use, so each Recognize call
// owns a short-lived client; concurrency is the caller's concern.
package recognizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is the combined recognition profile used for scanned
// study material: English plus Vietnamese.
const DefaultLanguage = "eng+vie"

// RecognitionError reports a failed recognition pass for one page image.
// Path identifies the image file for diagnostics.
type RecognitionError struct {
	Path string
	Err  error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("text recognition failed for %s: %v", e.Path, e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }

// Config holds recognition engine settings.
type Config struct {
	// Language is a Tesseract language profile, multiple languages
	// joined by "+" (e.g. "eng+vie").
	Language string
	// TessdataPrefix optionally points at a custom tessdata directory.
	TessdataPrefix string
	// PageSegMode controls Tesseract layout analysis. The zero value is
	// gosseract's PSM_OSD_ONLY, so DefaultConfig sets PSM_AUTO explicitly.
	PageSegMode gosseract.PageSegMode
}

// DefaultConfig returns recognition defaults.
func DefaultConfig() Config {
	return Config{
		Language:    DefaultLanguage,
		PageSegMode: gosseract.PSM_AUTO,
	}
}

// Recognizer wraps the Tesseract engine.
type Recognizer struct {
	cfg Config
}

// New creates a Recognizer with the given config.
func New(cfg Config) *Recognizer {
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	return &Recognizer{cfg: cfg}
}

// Recognize extracts text from the image at path using the given language
// profile, falling back to the configured one when language is empty. The
// call is synchronous and may be long-running; ctx is checked before the
// engine starts but an in-flight Tesseract pass cannot be interrupted.
func (r *Recognizer) Recognize(ctx context.Context, path, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &RecognitionError{Path: path, Err: err}
	}
	if language == "" {
		language = r.cfg.Language
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if r.cfg.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(r.cfg.TessdataPrefix); err != nil {
			return "", &RecognitionError{Path: path, Err: fmt.Errorf("set tessdata prefix: %w", err)}
		}
	}
	if err := client.SetLanguage(strings.Split(language, "+")...); err != nil {
		return "", &RecognitionError{Path: path, Err: fmt.Errorf("set language %q: %w", language, err)}
	}
	if err := client.SetPageSegMode(r.cfg.PageSegMode); err != nil {
		return "", &RecognitionError{Path: path, Err: fmt.Errorf("set page segmentation mode: %w", err)}
	}
	if err := client.SetImage(path); err != nil {
		return "", &RecognitionError{Path: path, Err: fmt.Errorf("set image: %w", err)}
	}

	text, err := client.Text()
	if err != nil {
		return "", &RecognitionError{Path: path, Err: err}
	}

	return PostProcessText(text, DefaultCleanOptions()), nil
}
