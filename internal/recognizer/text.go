package recognizer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// CleanOptions controls text post-processing behavior.
type CleanOptions struct {
	NormalizeNFC       bool // apply Unicode NFC normalization
	CollapseSpaces     bool // collapse runs of spaces/tabs within lines
	Trim               bool // trim leading/trailing whitespace
	RemoveControlChars bool // remove non-printable control characters
	RemoveZeroWidth    bool // remove zero-width spaces/joiners
}

// DefaultCleanOptions returns sensible defaults for OCR text. NFC matters
// for Vietnamese output, where Tesseract tends to emit decomposed
// diacritics.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{
		NormalizeNFC:       true,
		CollapseSpaces:     true,
		Trim:               true,
		RemoveControlChars: true,
		RemoveZeroWidth:    true,
	}
}

// PostProcessText applies normalization and cleaning to OCR text. Line
// structure is preserved; only horizontal whitespace is collapsed.
func PostProcessText(s string, opts CleanOptions) string {
	if s == "" {
		return s
	}

	if opts.NormalizeNFC {
		s = norm.NFC.String(s)
	}
	if opts.RemoveZeroWidth {
		s = removeZeroWidth(s)
	}
	if opts.RemoveControlChars {
		s = removeControlChars(s)
	}
	if opts.CollapseSpaces {
		s = collapseSpaces(s)
	}
	if opts.Trim {
		s = strings.TrimSpace(s)
	}

	return s
}

func removeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var hspaceRe = regexp.MustCompile(`[ \t]+`)

func collapseSpaces(s string) string { return hspaceRe.ReplaceAllString(s, " ") }

// removeZeroWidth removes common zero-width characters seen in OCR noise.
func removeZeroWidth(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\u200b', // zero width space
			'\u200c', // zero width non-joiner
			'\u200d', // zero width joiner
			'\ufeff': // zero width no-break space (BOM)
			// skip
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
