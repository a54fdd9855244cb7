package boundary

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce is how long to wait after the last write before reloading.
const reloadDebounce = 500 * time.Millisecond

// Reloader watches a boundaries YAML file and hot-reloads it into a Store.
type Reloader struct {
	watcher *fsnotify.Watcher
	store   *Store
	path    string
}

// NewReloader creates a file watcher for the given boundaries file.
// The file must exist at watch time.
func NewReloader(store *Store, path string) (*Reloader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("boundary: cannot watch %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("boundary: create file watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("boundary: watch %q: %w", path, err)
	}

	return &Reloader{watcher: watcher, store: store, path: path}, nil
}

// Run watches for file changes and reloads boundaries. Blocks until ctx is
// cancelled. A file that fails to parse leaves the current tree untouched.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(reloadDebounce, r.reload)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "boundary watcher error: %v\n", err)
		}
	}
}

func (r *Reloader) reload() {
	next, err := Load(r.path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "boundary hot-reload failed: %v\n", err)
		return
	}
	r.store.Replace(next)
	fmt.Fprintf(os.Stderr, "boundary hot-reload: %s reloaded\n", r.path)
}
