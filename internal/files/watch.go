package files

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/goliatone/go-directive/internal/logging"
	"github.com/goliatone/go-directive/pkg/interfaces"
)

// DefaultDebounce is the quiet period Watch waits for before reporting a
// changed file.
const DefaultDebounce = 100 * time.Millisecond

// WatchOptions tunes Watch.
type WatchOptions struct {
	Include  []string
	Exclude  []string
	Debounce time.Duration
	Logger   interfaces.Logger
}

// Watch reports every matching file under root that is created or written
// until ctx is done. fn receives the path relative to root in slash form and
// runs on the calling goroutine, one path at a time. Directories created
// while watching are picked up.
func Watch(ctx context.Context, root string, opts WatchOptions, fn func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	if err := addTree(watcher, root); err != nil {
		return err
	}
	logger.Info("files.watch.started", "root", root)

	ready := make(chan string, 16)
	var mu sync.Mutex
	timers := map[string]*time.Timer{}
	defer func() {
		mu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		mu.Unlock()
	}()

	schedule := func(rel string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := timers[rel]; ok {
			t.Reset(debounce)
			return
		}
		timers[rel] = time.AfterFunc(debounce, func() {
			mu.Lock()
			delete(timers, rel)
			mu.Unlock()
			select {
			case ready <- rel:
			case <-ctx.Done():
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			logger.Info("files.watch.stopped", "root", root)
			return nil
		case rel := <-ready:
			fn(rel)
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						logger.Warn("files.watch.add_failed", "path", event.Name, "error", err)
					}
					continue
				}
			}
			rel, err := filepath.Rel(root, event.Name)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if strings.HasPrefix(rel, "../") || !Match(rel, opts.Include, opts.Exclude) {
				continue
			}
			logging.WithFileContext(logger, rel, event.Op.String()).Debug("files.watch.event")
			schedule(rel)
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			logger.Error("files.watch.error", "error", err)
		}
	}
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %q: %w", path, err)
		}
		return nil
	})
}
