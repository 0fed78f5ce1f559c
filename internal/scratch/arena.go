// Package scratch manages run-scoped temporary file arenas.
//
// Every extraction run gets its own uniquely named subdirectory under a
// shared scratch root. Files for different runs can never collide, and
// releasing a run means removing a single directory tree, regardless of
// how many artifacts the run created or whether it failed halfway.
package scratch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Arena is a per-run scratch directory. It is created once, handed out
// collision-free file paths during the run, and removed as a whole when
// the run ends. An Arena is safe for concurrent Path calls.
type Arena struct {
	dir    string
	prefix string
	logger *slog.Logger
}

// NewArena creates a fresh arena under baseDir. When baseDir is empty the
// system temp directory is used. The directory name combines the given
// prefix with a random run ID so concurrent runs stay disjoint.
func NewArena(baseDir, prefix string) (*Arena, error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if prefix == "" {
		prefix = "scantext"
	}

	dir := filepath.Join(baseDir, fmt.Sprintf("%s-%s", prefix, uuid.NewString()))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create scratch arena: %w", err)
	}

	return &Arena{
		dir:    dir,
		prefix: prefix,
		logger: slog.Default(),
	}, nil
}

// Dir returns the arena's directory.
func (a *Arena) Dir() string {
	return a.dir
}

// Path returns a path inside the arena for the given stem. The name
// carries the run prefix, a timestamp and the stem, matching the naming
// scheme used for page artifacts.
func (a *Arena) Path(stem string) string {
	return filepath.Join(a.dir, fmt.Sprintf("%s-%d-%s", a.prefix, time.Now().UnixNano(), stem))
}

// PagePath returns the canonical path for a page artifact.
func (a *Arena) PagePath(pageIndex int, kind, ext string) string {
	return a.Path(fmt.Sprintf("%s-page-%d.%s", kind, pageIndex, ext))
}

// Close removes the arena directory and everything in it. Removal
// failures are logged and swallowed; cleanup must never replace the
// run's primary result or error.
func (a *Arena) Close() {
	if a == nil || a.dir == "" {
		return
	}
	if err := os.RemoveAll(a.dir); err != nil {
		a.logger.Warn("failed to remove scratch arena", "dir", a.dir, "error", err)
	}
	a.dir = ""
}
