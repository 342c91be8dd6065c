// Package watch reports changed bridge sources using OS-native file
// notifications. Bursts of events are coalesced into one batch.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Op describes a set of file operations.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

func toOp(op fsnotify.Op) Op {
	var out Op
	if op&fsnotify.Create != 0 {
		out |= OpCreate
	}
	if op&fsnotify.Write != 0 {
		out |= OpWrite
	}
	if op&fsnotify.Remove != 0 {
		out |= OpRemove
	}
	if op&fsnotify.Rename != 0 {
		out |= OpRename
	}
	if op&fsnotify.Chmod != 0 {
		out |= OpChmod
	}
	return out
}

// Options configures a Watcher.
type Options struct {
	// Extensions limits batches to matching files, e.g. ".rs".
	Extensions []string
	// Debounce is how long the watcher waits for more events before
	// delivering a batch.
	Debounce time.Duration
	Logger   *zap.Logger
}

// Watcher watches directory trees and delivers batches of changed files.
type Watcher struct {
	w          *fsnotify.Watcher
	extensions []string
	debounce   time.Duration
	logger     *zap.Logger

	changes chan []string
	errs    chan error
	done    chan struct{}

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New starts a watcher. Close must be called to release it.
func New(opts Options) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if opts.Debounce <= 0 {
		opts.Debounce = 100 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	w := &Watcher{
		w:          fw,
		extensions: opts.Extensions,
		debounce:   opts.Debounce,
		logger:     opts.Logger,
		changes:    make(chan []string, 16),
		errs:       make(chan error, 1),
		done:       make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// Changes delivers sorted, de-duplicated batches of changed paths.
func (w *Watcher) Changes() <-chan []string { return w.changes }

// Errors delivers watcher errors. Errors are dropped while one is pending.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Add watches each root. Directories are watched recursively, skipping
// hidden ones; a file root watches its directory.
func (w *Watcher) Add(roots ...string) error {
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			if err := w.w.Add(filepath.Dir(root)); err != nil {
				return err
			}
			continue
		}
		if err := w.addTree(root); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) addTree(root string) error {
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
		w.logger.Debug("watching directory", zap.String("dir", path))
		return w.w.Add(path)
	})
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.w.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	pending := make(map[string]Op)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			op := toOp(ev.Op)

			// New directories are not covered by existing watches.
			if op&OpCreate != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						w.report(err)
					}
					continue
				}
			}
			if op == OpChmod || !w.matches(ev.Name) {
				continue
			}

			pending[ev.Name] |= op
			timer.Reset(w.debounce)

		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.report(err)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			batch := make([]string, 0, len(pending))
			for path := range pending {
				batch = append(batch, path)
			}
			sort.Strings(batch)
			pending = make(map[string]Op)

			w.logger.Debug("changes detected", zap.Strings("files", batch))

			select {
			case w.changes <- batch:
			case <-w.done:
				return
			}
		}
	}
}

func (w *Watcher) report(err error) {
	select {
	case w.errs <- err:
	default:
		w.logger.Warn("dropping watcher error", zap.Error(err))
	}
}

func (w *Watcher) matches(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := filepath.Ext(path)
	for _, want := range w.extensions {
		if !strings.HasPrefix(want, ".") {
			want = "." + want
		}
		if ext == want {
			return true
		}
	}
	return false
}

// Run calls fn for every batch until ctx is done. Watcher errors are
// passed to onError when it is non-nil.
func (w *Watcher) Run(ctx context.Context, fn func([]string), onError func(error)) error {
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-w.done:
			return nil
		case batch := <-w.changes:
			fn(batch)
		case err := <-w.errs:
			if onError != nil {
				onError(err)
			}
		}
	}
}
