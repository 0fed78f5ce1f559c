package pipeline

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressCallback receives page-level events during a run. OnPage is
// called from worker goroutines and implementations must be safe for
// concurrent use.
type ProgressCallback interface {
	// OnStart is called once rasterization finished, with the number of
	// pages that will be processed.
	OnStart(total int)

	// OnPage is called as each page completes, in completion order.
	OnPage(outcome PageOutcome)

	// OnComplete is called after all pages finished.
	OnComplete()
}

// NoOpProgress implements ProgressCallback and does nothing.
type NoOpProgress struct{}

func (NoOpProgress) OnStart(total int)          {}
func (NoOpProgress) OnPage(outcome PageOutcome) {}
func (NoOpProgress) OnComplete()                {}

// ConsoleProgress renders a simple progress bar, used by the CLI.
type ConsoleProgress struct {
	writer    io.Writer
	width     int
	mu        sync.Mutex
	total     int
	done      int
	failed    int
	startTime time.Time
}

// NewConsoleProgress creates a console progress reporter. A nil writer
// defaults to stderr.
func NewConsoleProgress(writer io.Writer) *ConsoleProgress {
	if writer == nil {
		writer = os.Stderr
	}
	return &ConsoleProgress{writer: writer, width: 40}
}

func (c *ConsoleProgress) OnStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = total
	c.done = 0
	c.failed = 0
	c.startTime = time.Now()
	c.draw()
}

func (c *ConsoleProgress) OnPage(outcome PageOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done++
	if !outcome.Succeeded {
		c.failed++
	}
	c.draw()
}

func (c *ConsoleProgress) OnComplete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	elapsed := time.Since(c.startTime).Round(time.Millisecond)
	_, _ = fmt.Fprintf(c.writer, "\ndone in %v (%d pages, %d failed)\n", elapsed, c.done, c.failed)
}

func (c *ConsoleProgress) draw() {
	if c.total == 0 {
		return
	}
	filled := c.width * c.done / c.total
	bar := strings.Repeat("█", filled) + strings.Repeat("░", c.width-filled)
	_, _ = fmt.Fprintf(c.writer, "\r[%s] %d/%d", bar, c.done, c.total)
}

// LogProgress logs page events through slog, used by the server.
type LogProgress struct {
	Logger *slog.Logger
}

func (l LogProgress) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func (l LogProgress) OnStart(total int) {
	l.logger().Debug("extraction started", "pages", total)
}

func (l LogProgress) OnPage(outcome PageOutcome) {
	l.logger().Debug("page processed",
		"page_index", outcome.PageIndex, "succeeded", outcome.Succeeded)
}

func (l LogProgress) OnComplete() {
	l.logger().Debug("extraction finished")
}
