// Package fsnotify implements ports.Watcher using github.com/fsnotify/fsnotify.
// It recursively watches an Assets tree, skips what Unity's importer skips
// (hidden and "~" folders, editor swap files) and delivers events in
// debounced batches so a rename's remove and create halves arrive together.
package fsnotify

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/corey/unitylens/internal/domain/unity"
	"github.com/corey/unitylens/internal/ports"
)

// DefaultDebounce is the quiet period that closes a batch.
const DefaultDebounce = 100 * time.Millisecond

// File suffixes that never belong to an asset.
var ignoreSuffixes = []string{
	".swp",
	".swx",
	".tmp",
	".DS_Store",
}

// Watcher implements ports.Watcher using fsnotify.
type Watcher struct {
	fw       *fsnotify.Watcher
	root     string
	debounce time.Duration
	logger   *zap.Logger

	changes chan ports.FileChange
	done    chan struct{}
	wg      sync.WaitGroup
	stopped bool
	mu      sync.Mutex
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the batch quiet period. Non-positive values keep the
// default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewWatcher creates a new file system watcher.
func NewWatcher(opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fw:       fw,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
		changes:  make(chan ports.FileChange, 1024),
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// Watch starts monitoring root recursively. onBatch runs on a single
// goroutine; it must not call Stop.
func (w *Watcher) Watch(root string, onBatch func([]ports.FileChange)) error {
	absPath, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "watch", Path: absPath, Err: fs.ErrInvalid}
	}
	w.root = absPath
	if err := w.addTree(absPath, true, nil); err != nil {
		return err
	}

	w.wg.Add(2)
	go w.processEvents()
	go w.debounceLoop(onBatch)
	return nil
}

// addTree adds root and every non-ignored directory below it. found, when
// set, receives every entry below root; a directory is watched before its
// entries are listed, so nothing moved in after the walk goes unreported.
func (w *Watcher) addTree(root string, strict bool, found func(path string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if strict && path == root {
				return err
			}
			return nil // skip inaccessible paths
		}
		if path != root && shouldIgnorePath(w.root, path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path != root && found != nil {
			found(path)
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fw.Add(path); err != nil && strict {
			return err
		}
		return nil
	})
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()
	for {
		select {
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if shouldIgnorePath(w.root, event.Name) {
				continue
			}

			op, ok := convertOp(event.Op)
			if !ok {
				continue
			}
			if !w.emit(event.Name, op) {
				return
			}

			// New directories (including ones moved in) are watched together
			// with everything already inside them. fsnotify reports nothing
			// for entries that arrived before the watch was added, so they
			// are reported as creates here.
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					open := true
					err := w.addTree(event.Name, false, func(path string) {
						if open {
							open = w.emit(path, ports.FileOpCreate)
						}
					})
					if err != nil {
						w.logger.Debug("watch new directory", zap.String("path", event.Name), zap.Error(err))
					}
					if !open {
						return
					}
				}
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", zap.Error(err))

		case <-w.done:
			return
		}
	}
}

// emit queues one change. It returns false once the watcher is stopping.
func (w *Watcher) emit(path string, op ports.FileOp) bool {
	select {
	case w.changes <- ports.FileChange{Path: path, Op: op, Time: time.Now()}:
		return true
	case <-w.done:
		return false
	}
}

func convertOp(op fsnotify.Op) (ports.FileOp, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return ports.FileOpCreate, true
	case op.Has(fsnotify.Rename):
		return ports.FileOpRename, true
	case op.Has(fsnotify.Remove):
		return ports.FileOpRemove, true
	case op.Has(fsnotify.Write):
		return ports.FileOpWrite, true
	default:
		return 0, false // chmod
	}
}

// debounceLoop collects changes until the stream is quiet for the debounce
// window, then hands the batch over. Pending changes are flushed on Stop.
func (w *Watcher) debounceLoop(onBatch func([]ports.FileChange)) {
	defer w.wg.Done()

	var (
		batch  []ports.FileChange
		timer  *time.Timer
		timerC <-chan time.Time
	)
	flush := func() {
		if len(batch) > 0 && onBatch != nil {
			onBatch(compact(batch))
		}
		batch = nil
		if timer != nil {
			timer.Stop()
			timer, timerC = nil, nil
		}
	}

	for {
		select {
		case c := <-w.changes:
			batch = append(batch, c)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerC:
			timer, timerC = nil, nil
			flush()
		case <-w.done:
			// Drain what processEvents already queued.
			for {
				select {
				case c := <-w.changes:
					batch = append(batch, c)
				default:
					flush()
					return
				}
			}
		}
	}
}

// compact drops consecutive duplicates of the same path and op, which
// editors produce for a single save.
func compact(batch []ports.FileChange) []ports.FileChange {
	out := make([]ports.FileChange, 0, len(batch))
	for _, c := range batch {
		if n := len(out); n > 0 && out[n-1].Path == c.Path && out[n-1].Op == c.Op {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Stop ends monitoring and releases all resources. Pending changes are
// delivered before Stop returns. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	close(w.done)
	w.mu.Unlock()

	err := w.fw.Close()
	w.wg.Wait()
	return err
}

// shouldIgnorePath returns true if the path should not produce a change.
// Only components below root are considered.
func shouldIgnorePath(root, path string) bool {
	base := filepath.Base(path)
	for _, suf := range ignoreSuffixes {
		if strings.HasSuffix(base, suf) {
			return true
		}
	}
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if part != "." && unity.Hidden(part) {
			return true
		}
	}
	return false
}
