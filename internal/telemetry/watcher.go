package telemetry

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/samber/lo"

	"github.com/janekbaraniewski/usagescan/internal/core"
	"github.com/janekbaraniewski/usagescan/internal/providers/shared"
)

const (
	defaultDebounce     = 500 * time.Millisecond
	defaultPollInterval = 30 * time.Second
)

// Watcher triggers incremental scans when log directories change. fsnotify
// events are debounced; a polling ticker always runs as a safety net for
// filesystems that do not deliver events.
type Watcher struct {
	coord    *Coordinator
	roots    []string
	debounce time.Duration
	poll     time.Duration
}

func NewWatcher(coord *Coordinator, debounce, poll time.Duration) *Watcher {
	if debounce < 0 {
		debounce = defaultDebounce
	}
	if poll <= 0 {
		poll = defaultPollInterval
	}
	return &Watcher{
		coord:    coord,
		roots:    watchRoots(coord),
		debounce: debounce,
		poll:     poll,
	}
}

// Roots returns the directories the watcher subscribes to.
func (w *Watcher) Roots() []string {
	return w.roots
}

// Run blocks until ctx is done, calling onScan with the entries of every
// incremental scan that found something new.
func (w *Watcher) Run(ctx context.Context, onScan func([]core.UsageEntry)) error {
	runScan := func() {
		entries := w.coord.ScanIncremental()
		if len(entries) > 0 && onScan != nil {
			onScan(entries)
		}
	}

	var events <-chan fsnotify.Event
	var errs <-chan error
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("telemetry: fsnotify unavailable, polling only: %v", err)
	} else {
		defer fsw.Close()
		for _, root := range w.roots {
			addTree(fsw, root)
		}
		events = fsw.Events
		errs = fsw.Errors
	}

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	debounce := time.NewTimer(time.Hour)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					addTree(fsw, event.Name)
				}
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				debounce.Reset(w.debounce)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Printf("telemetry: watch error: %v", err)
		case <-debounce.C:
			runScan()
		case <-ticker.C:
			runScan()
		}
	}
}

// watchRoots derives the fixed directory prefix of every glob pattern and
// the directory of every database, keeping only those that exist.
func watchRoots(coord *Coordinator) []string {
	var roots []string
	for _, b := range coord.Bindings() {
		for _, pattern := range b.Patterns {
			if root, ok := shared.WatchRoot(pattern); ok {
				roots = append(roots, root)
			}
		}
		if b.Database != nil && b.DBPath != "" {
			if path, ok := shared.ExpandHome(b.DBPath); ok {
				roots = append(roots, filepath.Dir(path))
			}
		}
	}
	return lo.Filter(lo.Uniq(roots), func(root string, _ int) bool {
		info, err := os.Stat(root)
		return err == nil && info.IsDir()
	})
}

func addTree(fsw *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := fsw.Add(path); err != nil {
				log.Printf("telemetry: watch %s: %v", path, err)
			}
		}
		return nil
	})
}
