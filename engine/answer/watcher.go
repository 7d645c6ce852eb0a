package answer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/romdo/go-debounce"

	"github.com/preseedhq/preseed/engine/workflow"
	"github.com/preseedhq/preseed/pkg/logger"
)

const (
	defaultWatchDebounce = 300 * time.Millisecond
	defaultWatchMaxWait  = 2 * time.Second
)

// Watcher reloads the answer store when a watched answer file changes on
// disk. Change bursts are debounced so an editor save triggers one reload,
// not one per write syscall. A reload failure is logged and dropped; the
// next file change starts fresh.
type Watcher struct {
	store     *AnswerStore
	workflow  *workflow.Config
	wait      time.Duration
	maxWait   time.Duration
	watcher   *fsnotify.Watcher
	callbacks []func()
	mu        sync.RWMutex
	// watched maps absolute file paths to their reload state. Entries are
	// removed when the per-call context is canceled or the watcher closes.
	watched map[string]*watchedFile
	// dirRefs counts watched files per parent directory. The fsnotify watch
	// is on the directory, not the file, and is removed when the last file
	// in it stops being watched.
	dirRefs   map[string]int
	stopCh    chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

type watchedFile struct {
	ctx       context.Context
	debounced func()
	cancel    func()
}

type WatcherOption func(*Watcher)

// WithWorkflow makes every reload translate the loaded answers against the
// workflow's dialogs, so typed values reach components without a separate
// translation pass.
func WithWorkflow(wf *workflow.Config) WatcherOption {
	return func(w *Watcher) {
		w.workflow = wf
	}
}

// WithDebounce overrides the reload coalescing windows. Reloads run at most
// once per wait of quiet time and at least once per maxWait under sustained
// writes.
func WithDebounce(wait, maxWait time.Duration) WatcherOption {
	return func(w *Watcher) {
		if wait > 0 {
			w.wait = wait
		}
		if maxWait > 0 {
			w.maxWait = maxWait
		}
	}
}

// NewWatcher creates an answer file watcher feeding the given store.
func NewWatcher(store *AnswerStore, opts ...WatcherOption) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{
		store:   store,
		wait:    defaultWatchDebounce,
		maxWait: defaultWatchMaxWait,
		watcher: fsWatcher,
		watched: make(map[string]*watchedFile),
		dirRefs: make(map[string]int),
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch starts watching path and reloads the store on changes until ctx is
// canceled or the watcher is closed. The file does not have to exist yet;
// its creation counts as a change.
func (w *Watcher) Watch(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	debounced, cancel := debounce.NewWithMaxWait(w.wait, w.maxWait, func() {
		w.reload(ctx, absPath)
	})
	if err := w.watchDir(absPath); err != nil {
		cancel()
		return err
	}
	w.mu.Lock()
	w.watched[absPath] = &watchedFile{ctx: ctx, debounced: debounced, cancel: cancel}
	w.mu.Unlock()
	if done := ctx.Done(); done != nil {
		go func(p string, done <-chan struct{}) {
			select {
			case <-done:
			case <-w.stopCh:
			}
			w.forget(p)
		}(absPath, done)
	}
	w.startOnce.Do(func() {
		go w.handleEvents()
	})
	return nil
}

// watchDir watches the file's parent directory, reusing an existing watch
// when another file in the same directory is already covered.
func (w *Watcher) watchDir(absPath string) error {
	dir := filepath.Dir(absPath)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dirRefs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch file: %w", err)
		}
	}
	w.dirRefs[dir]++
	return nil
}

// forget drops a watched file, removing the directory watch once no other
// watched file shares the directory.
func (w *Watcher) forget(absPath string) {
	dir := filepath.Dir(absPath)
	w.mu.Lock()
	wf, ok := w.watched[absPath]
	delete(w.watched, absPath)
	removeDir := false
	if ok {
		w.dirRefs[dir]--
		if w.dirRefs[dir] <= 0 {
			delete(w.dirRefs, dir)
			removeDir = true
		}
	}
	w.mu.Unlock()
	if !ok {
		return
	}
	wf.cancel()
	if removeDir {
		if err := w.watcher.Remove(dir); err != nil && !errors.Is(err, fsnotify.ErrClosed) {
			logger.FromContext(wf.ctx).Warn("failed to remove directory watch", "dir", dir, "error", err)
		}
	}
}

// OnReload registers a callback invoked after each successful reload.
func (w *Watcher) OnReload(callback func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, callback)
}

// handleEvents processes file system events until the watcher is closed.
// The watch is on the file's directory, so replace-by-rename saves keep
// triggering events after the original inode is gone.
func (w *Watcher) handleEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.mu.RLock()
			wf, stillWatched := w.watched[event.Name]
			w.mu.RUnlock()
			if !stillWatched {
				continue
			}
			if wf.ctx != nil && wf.ctx.Err() != nil {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				wf.debounced()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				logger.FromContext(context.Background()).Warn("answer file watch error", "error", err)
			}
		}
	}
}

// reload replaces the stored answers from the file, translating them when a
// workflow is bound. Failures are logged, never retried.
func (w *Watcher) reload(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	log := logger.FromContext(ctx)
	var err error
	if w.workflow != nil {
		err = w.store.LoadAndTranslateForWorkflow(ctx, path, w.workflow)
	} else {
		err = w.store.Load(ctx, path)
	}
	if err != nil {
		log.Error("answer file reload failed", "path", path, "error", err)
		return
	}
	log.Info("answer file reloaded", "path", path)
	w.notifyCallbacks()
}

// notifyCallbacks invokes all registered callbacks.
func (w *Watcher) notifyCallbacks() {
	w.mu.RLock()
	callbacks := make([]func(), len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.RUnlock()
	for _, callback := range callbacks {
		if callback != nil {
			callback()
		}
	}
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	var closeErr error
	w.closeOnce.Do(func() {
		close(w.stopCh)
		w.mu.Lock()
		for path, wf := range w.watched {
			wf.cancel()
			delete(w.watched, path)
		}
		clear(w.dirRefs)
		w.mu.Unlock()
		if err := w.watcher.Close(); err != nil {
			closeErr = fmt.Errorf("failed to close watcher: %w", err)
		}
	})
	return closeErr
}
