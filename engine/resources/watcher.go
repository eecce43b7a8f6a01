package resources

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/prismengine/prism/engine/core"
)

var watchedSubfolders = []string{
	SubfolderTexture,
	SubfolderMesh,
	SubfolderSkinnedMesh,
	SubfolderMaterial,
	SubfolderFont,
	SubfolderShader,
}

// Watcher turns filesystem changes under the search roots into reload
// requests. Changed paths are queued on a channel and drained by the manager
// on the loop thread; the watcher never touches a cache itself.
type Watcher struct {
	fsnotify *fsnotify.Watcher
	pending  chan string
	done     chan struct{}
}

func NewWatcher() (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsnotify: fsWatch,
		pending:  make(chan string, 256),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// WatchRoot starts watching a search root's kind subfolders. Subfolders that
// do not exist yet are skipped; they are picked up when the root is re-added.
func (w *Watcher) WatchRoot(root string) error {
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		core.LogWarn("asset watcher: skipping missing root '%s'", root)
		return nil
	}
	if err := w.fsnotify.Add(root); err != nil {
		return err
	}
	for _, subfolder := range watchedSubfolders {
		dir := filepath.Join(root, subfolder)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := w.fsnotify.Add(dir); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) run() {
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			select {
			case w.pending <- e.Name:
			default:
				core.LogWarn("asset watcher: reload queue full, dropping '%s'", e.Name)
			}
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("asset watcher: %s", err)
		case <-w.done:
			return
		}
	}
}

// Drain returns the changed paths reported since the last call.
func (w *Watcher) Drain() []string {
	var paths []string
	for {
		select {
		case p := <-w.pending:
			paths = append(paths, p)
		default:
			return paths
		}
	}
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.fsnotify.Close()
}
