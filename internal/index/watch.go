package index

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"prism/internal/logging"
)

// Watcher keeps the index in sync with filesystem changes. Create and
// write events re-index the file; remove and rename events drop it.
type Watcher struct {
	ix *Indexer
	fw *fsnotify.Watcher
}

// NewWatcher creates a watcher over the indexer's workspace.
func NewWatcher(ix *Indexer) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{ix: ix, fw: fw}, nil
}

// Run watches the workspace until ctx is done. Directories are watched
// recursively; new directories are added as they appear.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.addRecursive(w.ix.Workspace()); err != nil {
		return err
	}
	logging.Watch("watching %s", w.ix.Workspace())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, event)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			logging.WatchError("watch error: %v", err)
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event) {
	path := event.Name

	switch {
	case event.Op.Has(fsnotify.Create):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.skippable(path) {
				if err := w.addRecursive(path); err != nil {
					logging.WatchError("failed to watch %s: %v", path, err)
				}
			}
			return
		}
		w.reindex(ctx, path)

	case event.Op.Has(fsnotify.Write):
		w.reindex(ctx, path)

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		if !w.ix.Supported(path) {
			return
		}
		logging.WatchDebug("removing %s", path)
		if err := w.ix.Remove(ctx, path); err != nil {
			logging.WatchError("failed to remove %s: %v", path, err)
		}
	}
}

func (w *Watcher) reindex(ctx context.Context, path string) {
	if !w.ix.Supported(path) || w.skippable(path) {
		return
	}
	logging.WatchDebug("re-indexing %s", path)
	if err := w.ix.IndexFile(ctx, path); err != nil {
		logging.WatchError("failed to index %s: %v", path, err)
	}
}

// skippable reports whether any path segment below the workspace is an
// ignored directory.
func (w *Watcher) skippable(path string) bool {
	rel, err := filepath.Rel(w.ix.Workspace(), path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if part == "." || part == ".." {
			continue
		}
		if w.ix.skipDir(part, filepath.Join(w.ix.Workspace(), part)) {
			return true
		}
	}
	return false
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && w.ix.skipDir(info.Name(), path) {
			return filepath.SkipDir
		}
		return w.fw.Add(path)
	})
}
