package resources

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsWrites(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, SubfolderMaterial), 0o755))

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.WatchRoot(root))

	path := filepath.Join(root, SubfolderMaterial, "m.toml")
	writeFile(t, path, []byte("name = \"m\"\n"))

	var drained []string
	require.Eventually(t, func() bool {
		drained = append(drained, w.Drain()...)
		return len(drained) > 0
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, drained, path)
}

func TestWatcherDrainIsEmptyWithoutChanges(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.WatchRoot(t.TempDir()))

	assert.Empty(t, w.Drain())
}

func TestWatchRootSkipsMissingDirectories(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Close()

	assert.NoError(t, w.WatchRoot(filepath.Join(t.TempDir(), "does_not_exist")))
}
