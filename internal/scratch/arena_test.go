package scratch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewArena_CreatesDirectory(t *testing.T) {
	base := t.TempDir()

	a, err := NewArena(base, "testrun")
	require.NoError(t, err)
	defer a.Close()

	info, err := os.Stat(a.Dir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.True(t, strings.HasPrefix(filepath.Base(a.Dir()), "testrun-"))
}

func TestNewArena_DisjointDirectories(t *testing.T) {
	base := t.TempDir()

	a, err := NewArena(base, "run")
	require.NoError(t, err)
	defer a.Close()

	b, err := NewArena(base, "run")
	require.NoError(t, err)
	defer b.Close()

	assert.NotEqual(t, a.Dir(), b.Dir())
}

func TestArena_PathInsideArena(t *testing.T) {
	a, err := NewArena(t.TempDir(), "run")
	require.NoError(t, err)
	defer a.Close()

	p := a.PagePath(3, "raster", "png")
	assert.Equal(t, a.Dir(), filepath.Dir(p))
	assert.Contains(t, filepath.Base(p), "raster-page-3.png")
}

func TestArena_CloseRemovesEverything(t *testing.T) {
	a, err := NewArena(t.TempDir(), "run")
	require.NoError(t, err)

	dir := a.Dir()
	for i := range 5 {
		require.NoError(t, os.WriteFile(a.PagePath(i, "raster", "png"), []byte("x"), 0o600))
	}

	a.Close()

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestArena_CloseIsIdempotent(t *testing.T) {
	a, err := NewArena(t.TempDir(), "run")
	require.NoError(t, err)

	a.Close()
	a.Close() // must not panic or recreate anything
}
