package resources

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trackedHandle counts its releases so tests can verify exactly-once
// disposal.
type trackedHandle struct {
	name     string
	path     string
	releases int
}

func (h *trackedHandle) Dispose() error {
	h.releases++
	if h.releases > 1 {
		return fmt.Errorf("handle '%s' released %d times", h.name, h.releases)
	}
	return nil
}

// testStrategy builds handles from file content and fails on demand.
type testStrategy struct {
	constructed int
	postLoads   []string
	evictions   []string
}

func (s *testStrategy) strategy(subfolder string) Strategy[*trackedHandle] {
	return Strategy[*trackedHandle]{
		Subfolder: subfolder,
		Synthetic: func(name string) bool {
			return strings.HasPrefix(name, "__")
		},
		Load: func(ctx *LoadContext, path string) (*trackedHandle, error) {
			s.constructed++
			if !strings.HasPrefix(filepath.Base(path), "__") {
				if _, err := os.ReadFile(path); err != nil {
					return nil, err
				}
			}
			if strings.Contains(path, "corrupt") {
				return nil, fmt.Errorf("malformed file '%s'", path)
			}
			if strings.Contains(path, "explode") {
				panic("parser blew up")
			}
			if _, ok := ctx.Params.(string); ctx.Params != nil && !ok {
				return nil, fmt.Errorf("unexpected params %T", ctx.Params)
			}
			return &trackedHandle{name: ctx.Name, path: path}, nil
		},
		PostLoad: func(name string, handle *trackedHandle) {
			s.postLoads = append(s.postLoads, name)
		},
		Evict: func(name string, handle *trackedHandle) {
			s.evictions = append(s.evictions, name)
			if handle.releases > 0 {
				s.evictions = append(s.evictions, name+" (already released)")
			}
		},
	}
}

func newTestLoader(t *testing.T) (*Loader[*trackedHandle], *testStrategy, string) {
	t.Helper()
	root := t.TempDir()
	s := &testStrategy{}
	loader := NewLoader(NewSearchPaths(root), s.strategy(SubfolderTexture))
	return loader, s, root
}

func TestLoadCachesByName(t *testing.T) {
	loader, s, root := newTestLoader(t)
	writeFile(t, filepath.Join(root, SubfolderTexture, "x.png"), []byte("pixels"))

	first, err := loader.Load("x.png")
	require.NoError(t, err)
	second, err := loader.Load("x.png")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, s.constructed, "second load must be a cache hit")
	assert.Equal(t, 1, loader.Len())
}

func TestForcedReloadReplacesHandle(t *testing.T) {
	loader, _, root := newTestLoader(t)
	writeFile(t, filepath.Join(root, SubfolderTexture, "x.png"), []byte("pixels"))

	first, err := loader.Load("x.png")
	require.NoError(t, err)

	second, err := loader.Load("x.png", WithForceReload())
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 1, first.releases, "old handle must be disposed exactly once")
	assert.Equal(t, 0, second.releases)

	third, err := loader.Load("x.png")
	require.NoError(t, err)
	assert.Same(t, second, third, "cache must hold the replacement")
}

func TestFailedForcedReloadUnmapsName(t *testing.T) {
	loader, _, root := newTestLoader(t)
	path := filepath.Join(root, SubfolderTexture, "x.png")
	writeFile(t, path, []byte("pixels"))

	first, err := loader.Load("x.png")
	require.NoError(t, err)

	// The file vanishing between loads makes the reconstruction fail.
	require.NoError(t, os.Remove(path))

	_, err = loader.Load("x.png", WithForceReload())
	require.Error(t, err)

	assert.Equal(t, 1, first.releases, "old handle is gone either way")
	assert.False(t, loader.Cached("x.png"), "a failed reload maps the name to nothing")
}

func TestLiteralPathFallback(t *testing.T) {
	loader, _, _ := newTestLoader(t)

	outside := filepath.Join(t.TempDir(), "loose.png")
	writeFile(t, outside, []byte("pixels"))

	handle, err := loader.Load(outside)
	require.NoError(t, err)
	assert.Equal(t, outside, handle.path)
	assert.True(t, loader.Cached(outside))
}

func TestSyntheticNamesSkipResolution(t *testing.T) {
	// Roots deliberately point at nothing; a synthetic name must not care.
	loader := NewLoader(NewSearchPaths("/nonexistent/assets"), (&testStrategy{}).strategy(SubfolderMesh))

	handle, err := loader.Load("__builtin__")
	require.NoError(t, err)
	assert.Equal(t, "__builtin__", handle.path)
}

func TestConstructionFailureIsIsolated(t *testing.T) {
	loader, _, root := newTestLoader(t)
	writeFile(t, filepath.Join(root, SubfolderTexture, "corrupt.png"), []byte("junk"))
	writeFile(t, filepath.Join(root, SubfolderTexture, "good.png"), []byte("pixels"))

	_, err := loader.Load("corrupt.png")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoadFailed)
	assert.False(t, loader.Cached("corrupt.png"))

	good, err := loader.Load("good.png")
	require.NoError(t, err)
	assert.NotNil(t, good)
}

func TestPanickingConstructionBecomesError(t *testing.T) {
	loader, _, root := newTestLoader(t)
	writeFile(t, filepath.Join(root, SubfolderTexture, "explode.png"), []byte("junk"))

	require.NotPanics(t, func() {
		_, err := loader.Load("explode.png")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrLoadFailed)
	})
	assert.False(t, loader.Cached("explode.png"))
}

func TestMissingNameFails(t *testing.T) {
	loader, _, _ := newTestLoader(t)

	_, err := loader.Load("never_written.png")
	require.Error(t, err, "unresolved and not a readable literal path")
	assert.Equal(t, 0, loader.Len())
}

func TestPostLoadRunsOncePerConstruction(t *testing.T) {
	loader, s, root := newTestLoader(t)
	writeFile(t, filepath.Join(root, SubfolderTexture, "x.png"), []byte("pixels"))

	_, err := loader.Load("x.png")
	require.NoError(t, err)
	_, err = loader.Load("x.png")
	require.NoError(t, err)
	_, err = loader.Load("x.png", WithForceReload())
	require.NoError(t, err)

	assert.Equal(t, []string{"x.png", "x.png"}, s.postLoads)
}

func TestParamsReachTheLoadContext(t *testing.T) {
	loader, _, root := newTestLoader(t)
	writeFile(t, filepath.Join(root, SubfolderTexture, "x.png"), []byte("pixels"))

	_, err := loader.Load("x.png", WithParams(42))
	require.Error(t, err, "strategy rejects params of the wrong type")

	_, err = loader.Load("x.png", WithParams("hint"))
	require.NoError(t, err)
}

func TestEvictHookRunsOnReplacementAndDisposal(t *testing.T) {
	loader, s, root := newTestLoader(t)
	writeFile(t, filepath.Join(root, SubfolderTexture, "x.png"), []byte("pixels"))
	writeFile(t, filepath.Join(root, SubfolderTexture, "y.png"), []byte("pixels"))

	_, err := loader.Load("x.png")
	require.NoError(t, err)
	_, err = loader.Load("y.png")
	require.NoError(t, err)
	assert.Empty(t, s.evictions, "plain loads evict nothing")

	_, err = loader.Load("x.png", WithForceReload())
	require.NoError(t, err)
	assert.Equal(t, []string{"x.png"}, s.evictions, "eviction runs before release")

	require.NoError(t, loader.Dispose())
	assert.ElementsMatch(t, []string{"x.png", "x.png", "y.png"}, s.evictions,
		"every cached entry is evicted exactly once on disposal")
}

func TestDisposeReleasesEverythingExactlyOnce(t *testing.T) {
	loader, _, root := newTestLoader(t)
	names := []string{"a.png", "b.png", "c.png"}
	handles := make([]*trackedHandle, 0, len(names))
	for _, name := range names {
		writeFile(t, filepath.Join(root, SubfolderTexture, name), []byte("pixels"))
		h, err := loader.Load(name)
		require.NoError(t, err)
		handles = append(handles, h)
	}

	require.NoError(t, loader.Dispose())
	for _, h := range handles {
		assert.Equal(t, 1, h.releases)
	}

	// Disposing again is a no-op, not a double free.
	require.NoError(t, loader.Dispose())
	for _, h := range handles {
		assert.Equal(t, 1, h.releases)
	}

	_, err := loader.Load("a.png")
	assert.True(t, errors.Is(err, ErrDisposed))
}
