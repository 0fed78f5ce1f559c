package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/scantext/internal/enhancer"
	"github.com/MeKo-Tech/scantext/internal/rasterizer"
	"github.com/MeKo-Tech/scantext/internal/recognizer"
	"github.com/MeKo-Tech/scantext/internal/scratch"
)

// skipPage marks a page the fake rasterizer silently drops, mimicking a
// page whose render produced no file.
const skipPage = "\x00skip"

// failText makes the fake recognizer fail for that page.
const failText = "\x00fail"

// fakeRasterizer writes each page's text as the raster file's content so
// the fake recognizer can echo it back.
type fakeRasterizer struct {
	pageTexts []string
	err       error
}

func (f *fakeRasterizer) Rasterize(_ context.Context, _ []byte, arena *scratch.Arena,
	opts rasterizer.Options,
) ([]rasterizer.RasterPage, error) {
	if f.err != nil {
		return nil, f.err
	}
	var pages []rasterizer.RasterPage
	for i, text := range f.pageTexts {
		if text == skipPage {
			continue
		}
		path := arena.PagePath(i, "raster", "png")
		if err := os.WriteFile(path, []byte(text), 0o600); err != nil {
			return nil, err
		}
		pages = append(pages, rasterizer.RasterPage{
			PageIndex: i,
			Path:      path,
			Width:     2480,
			Height:    3508,
			DPI:       opts.DPI,
		})
	}
	if len(pages) == 0 {
		return nil, &rasterizer.RasterizationError{Err: errors.New("document has no pages")}
	}
	return pages, nil
}

// fakeRecognizer returns the file content as the recognized text and
// records call order. Optional random latency shuffles completion order
// under concurrency.
type fakeRecognizer struct {
	maxDelay time.Duration

	mu    sync.Mutex
	calls []string
}

func (f *fakeRecognizer) Recognize(_ context.Context, path, _ string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	f.mu.Unlock()

	if f.maxDelay > 0 {
		time.Sleep(time.Duration(rand.Int63n(int64(f.maxDelay)))) //nolint:gosec
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &recognizer.RecognitionError{Path: path, Err: err}
	}
	if strings.Contains(string(data), failText) {
		return "", &recognizer.RecognitionError{Path: path, Err: errors.New("engine rejected image")}
	}
	return string(data), nil
}

// fakeEnhancer passes bytes through unchanged and fails when the input
// contains failOn.
type fakeEnhancer struct {
	failOn string
}

func (f *fakeEnhancer) Enhance(imageBytes []byte) ([]byte, error) {
	if f.failOn != "" && strings.Contains(string(imageBytes), f.failOn) {
		return nil, &enhancer.EnhanceError{Err: errors.New("enhancement rejected image")}
	}
	return imageBytes, nil
}

type fixture struct {
	pipeline   *Pipeline
	scratchDir string
	recognizer *fakeRecognizer
}

func newFixture(t *testing.T, rast *fakeRasterizer, enh *fakeEnhancer, rec *fakeRecognizer) fixture {
	t.Helper()
	scratchDir := t.TempDir()
	if enh == nil {
		enh = &fakeEnhancer{}
	}
	if rec == nil {
		rec = &fakeRecognizer{}
	}
	p, err := NewBuilder().
		WithScratchDir(scratchDir).
		WithMaxWorkers(4).
		WithRasterizer(rast).
		WithEnhancer(enh).
		WithRecognizer(rec).
		Build()
	require.NoError(t, err)
	return fixture{pipeline: p, scratchDir: scratchDir, recognizer: rec}
}

func assertNoLeakedFiles(t *testing.T, scratchDir string) {
	t.Helper()
	entries, err := os.ReadDir(scratchDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "scratch directory should hold no files after the run")
}

func pageTexts(n int) []string {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = fmt.Sprintf("text of page %d", i)
	}
	return texts
}

func TestExtractText_SinglePageEnhanced(t *testing.T) {
	fx := newFixture(t, &fakeRasterizer{pageTexts: []string{"scanned page"}}, nil, nil)

	result, err := fx.pipeline.ExtractText([]byte("%PDF"), Options{Strategy: StrategyEnhanced})
	require.NoError(t, err)

	assert.Equal(t, "scanned page", result.Text)
	assert.Equal(t, OutcomeComplete, result.Outcome)
	assert.Equal(t, 1, result.PageCount)
	assert.Empty(t, result.FailedPages)
	assertNoLeakedFiles(t, fx.scratchDir)
}

func TestExtractText_OrderingUnderConcurrency(t *testing.T) {
	const pages = 16
	for _, strategy := range []Strategy{StrategyEnhanced, StrategyAlternative} {
		t.Run(string(strategy), func(t *testing.T) {
			rec := &fakeRecognizer{maxDelay: 20 * time.Millisecond}
			fx := newFixture(t, &fakeRasterizer{pageTexts: pageTexts(pages)}, nil, rec)

			result, err := fx.pipeline.ExtractText([]byte("%PDF"), Options{Strategy: strategy})
			require.NoError(t, err)

			expected := strings.Join(pageTexts(pages), "\n")
			assert.Equal(t, expected, result.Text,
				"segments must follow page index order regardless of completion order")
		})
	}
}

func TestExtractText_FailFastVsBestEffort(t *testing.T) {
	texts := []string{"text of page 0", failText, "text of page 2"}

	t.Run("standard aborts on page failure", func(t *testing.T) {
		fx := newFixture(t, &fakeRasterizer{pageTexts: texts}, nil, nil)

		result, err := fx.pipeline.ExtractText([]byte("%PDF"), Options{Strategy: StrategyStandard})
		require.Error(t, err)
		assert.Nil(t, result)

		var recErr *recognizer.RecognitionError
		assert.True(t, errors.As(err, &recErr))
		assertNoLeakedFiles(t, fx.scratchDir)
	})

	for _, strategy := range []Strategy{StrategyEnhanced, StrategyAlternative} {
		t.Run(string(strategy)+" degrades failed page", func(t *testing.T) {
			fx := newFixture(t, &fakeRasterizer{pageTexts: texts}, nil, nil)

			result, err := fx.pipeline.ExtractText([]byte("%PDF"), Options{Strategy: strategy})
			require.NoError(t, err)

			assert.Equal(t, "text of page 0\n\ntext of page 2", result.Text)
			assert.Equal(t, OutcomePartial, result.Outcome)
			assert.Equal(t, []int{1}, result.FailedPages)
			assert.Equal(t, 3, result.PageCount)
			assertNoLeakedFiles(t, fx.scratchDir)
		})
	}
}

func TestExtractText_ZeroPagesIsFatal(t *testing.T) {
	for _, strategy := range []Strategy{StrategyEnhanced, StrategyStandard, StrategyAlternative} {
		t.Run(string(strategy), func(t *testing.T) {
			fx := newFixture(t, &fakeRasterizer{pageTexts: nil}, nil, nil)

			result, err := fx.pipeline.ExtractText([]byte("%PDF"), Options{Strategy: strategy})
			require.Error(t, err)
			assert.Nil(t, result)

			var rasterErr *rasterizer.RasterizationError
			assert.True(t, errors.As(err, &rasterErr))
			assertNoLeakedFiles(t, fx.scratchDir)
		})
	}
}

func TestExtractText_MalformedDocumentIsFatal(t *testing.T) {
	rast := &fakeRasterizer{err: &rasterizer.RasterizationError{Err: errors.New("invalid pdf")}}
	for _, strategy := range []Strategy{StrategyEnhanced, StrategyStandard, StrategyAlternative} {
		t.Run(string(strategy), func(t *testing.T) {
			fx := newFixture(t, rast, nil, nil)

			_, err := fx.pipeline.ExtractText([]byte("garbage"), Options{Strategy: strategy})
			require.Error(t, err)
			assert.True(t, IsFatalInput(err))
			assertNoLeakedFiles(t, fx.scratchDir)
		})
	}
}

func TestExtractText_EnhancerFailureDegradesPage(t *testing.T) {
	texts := pageTexts(5)
	enh := &fakeEnhancer{failOn: "text of page 2"}

	t.Run("enhanced degrades the page", func(t *testing.T) {
		fx := newFixture(t, &fakeRasterizer{pageTexts: texts}, enh, nil)

		result, err := fx.pipeline.ExtractText([]byte("%PDF"), Options{Strategy: StrategyEnhanced})
		require.NoError(t, err)

		assert.Equal(t, OutcomePartial, result.Outcome)
		assert.Equal(t, []int{2}, result.FailedPages)
		segments := strings.Split(result.Text, "\n")
		require.Len(t, segments, 5)
		assert.Empty(t, segments[2])
		assert.Equal(t, "text of page 0", segments[0])
		assert.Equal(t, "text of page 4", segments[4])
		assertNoLeakedFiles(t, fx.scratchDir)
	})

	t.Run("alternative skips enhancement entirely", func(t *testing.T) {
		fx := newFixture(t, &fakeRasterizer{pageTexts: texts}, enh, nil)

		result, err := fx.pipeline.ExtractText([]byte("%PDF"), Options{Strategy: StrategyAlternative})
		require.NoError(t, err)
		assert.Equal(t, OutcomeComplete, result.Outcome)
		assert.Empty(t, result.FailedPages)
	})
}

func TestExtractText_SkippedRasterPagesAreExcluded(t *testing.T) {
	texts := []string{"text of page 0", skipPage, "text of page 2"}
	fx := newFixture(t, &fakeRasterizer{pageTexts: texts}, nil, nil)

	result, err := fx.pipeline.ExtractText([]byte("%PDF"), Options{Strategy: StrategyAlternative})
	require.NoError(t, err)

	assert.Equal(t, 2, result.PageCount)
	assert.Equal(t, "text of page 0\ntext of page 2", result.Text)
	assert.Equal(t, OutcomeComplete, result.Outcome)
}

func TestExtractText_StandardProcessesInOrder(t *testing.T) {
	rec := &fakeRecognizer{}
	fx := newFixture(t, &fakeRasterizer{pageTexts: pageTexts(6)}, nil, rec)

	_, err := fx.pipeline.ExtractText([]byte("%PDF"), Options{Strategy: StrategyStandard})
	require.NoError(t, err)

	require.Len(t, rec.calls, 6)
	for i, path := range rec.calls {
		assert.Contains(t, path, fmt.Sprintf("raster-page-%d.png", i))
	}
}

func TestExtractText_ContextCancellation(t *testing.T) {
	fx := newFixture(t, &fakeRasterizer{pageTexts: pageTexts(8)}, nil,
		&fakeRecognizer{maxDelay: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := fx.pipeline.ExtractTextContext(ctx, []byte("%PDF"), Options{Strategy: StrategyEnhanced})
	require.Error(t, err)
	assert.Nil(t, result)
	assertNoLeakedFiles(t, fx.scratchDir)
}

func TestExtractText_UnknownStrategy(t *testing.T) {
	fx := newFixture(t, &fakeRasterizer{pageTexts: pageTexts(1)}, nil, nil)

	_, err := fx.pipeline.ExtractText([]byte("%PDF"), Options{Strategy: "turbo"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strategy")
}

func TestExtractText_ProgressEvents(t *testing.T) {
	progress := &recordingProgress{}
	fx := newFixture(t, &fakeRasterizer{pageTexts: pageTexts(4)}, nil, nil)

	_, err := fx.pipeline.ExtractText([]byte("%PDF"), Options{
		Strategy: StrategyAlternative,
		Progress: progress,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, progress.total)
	assert.Equal(t, 4, progress.pages)
	assert.True(t, progress.completed)
}

type recordingProgress struct {
	mu        sync.Mutex
	total     int
	pages     int
	completed bool
}

func (r *recordingProgress) OnStart(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total = total
}

func (r *recordingProgress) OnPage(PageOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages++
}

func (r *recordingProgress) OnComplete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = true
}

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"enhanced", StrategyEnhanced, false},
		{"standard", StrategyStandard, false},
		{"alternative", StrategyAlternative, false},
		{"", StrategyEnhanced, false},
		{"Enhanced", "", true},
		{"fast", "", true},
	}
	for _, tt := range tests {
		t.Run("in="+tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
