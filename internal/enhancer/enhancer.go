// Package enhancer improves scanned page images before recognition.
//
// The enhancer is a pure bytes-in/bytes-out transform: decode, apply a
// fixed preprocessing chain (grayscale, contrast normalization, mild
// denoise, sharpen), re-encode as PNG. It keeps no state between calls.
package enhancer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// EnhanceError reports a failed enhancement of one page image.
type EnhanceError struct {
	Err error
}

func (e *EnhanceError) Error() string {
	return fmt.Sprintf("image enhancement failed: %v", e.Err)
}

func (e *EnhanceError) Unwrap() error { return e.Err }

// Config tunes the preprocessing chain.
type Config struct {
	Contrast     float64 // percentage passed to contrast adjustment (-100..100)
	DenoiseSigma float64 // gaussian blur sigma, 0 disables denoising
	SharpenSigma float64 // sharpening sigma, 0 disables sharpening
}

// DefaultConfig returns the preprocessing defaults used for scanned pages.
func DefaultConfig() Config {
	return Config{
		Contrast:     15,
		DenoiseSigma: 0.5,
		SharpenSigma: 0.8,
	}
}

// Enhancer applies the preprocessing chain to raw page images.
type Enhancer struct {
	cfg Config
}

// New creates an Enhancer with the given config.
func New(cfg Config) *Enhancer {
	return &Enhancer{cfg: cfg}
}

// Enhance decodes imageBytes, runs the preprocessing chain and returns
// the result encoded as PNG.
func (e *Enhancer) Enhance(imageBytes []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, &EnhanceError{Err: fmt.Errorf("decode image: %w", err)}
	}

	out := imaging.Grayscale(img)
	if e.cfg.Contrast != 0 {
		out = imaging.AdjustContrast(out, e.cfg.Contrast)
	}
	if e.cfg.DenoiseSigma > 0 {
		out = imaging.Blur(out, e.cfg.DenoiseSigma)
	}
	if e.cfg.SharpenSigma > 0 {
		out = imaging.Sharpen(out, e.cfg.SharpenSigma)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, &EnhanceError{Err: fmt.Errorf("encode image: %w", err)}
	}
	return buf.Bytes(), nil
}
