package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mvp-joe/docmeta/internal/logging"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 500 * time.Millisecond

// Options configures a FileWatcher.
type Options struct {
	// Filter decides which changed paths are reported. Nil reports every file.
	Filter func(path string) bool

	// Debounce is the quiet period before the callback fires.
	Debounce time.Duration

	// Logger receives watch errors. Nil discards them.
	Logger *slog.Logger
}

// batchWatcher reports batch files that were written or moved into the
// watched trees. All pending state is owned by the loop goroutine; Pause and
// Resume reach it through pauseCh.
type batchWatcher struct {
	fsw      *fsnotify.Watcher
	filter   func(path string) bool
	logger   *slog.Logger
	debounce time.Duration

	pauseCh  chan bool
	cancel   context.CancelFunc
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewFileWatcher watches every directory under dirs, including directories
// created later.
func NewFileWatcher(dirs []string, opts Options) (FileWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &batchWatcher{
		fsw:      fsw,
		filter:   opts.Filter,
		logger:   opts.Logger,
		debounce: opts.Debounce,
		pauseCh:  make(chan bool),
		doneCh:   make(chan struct{}),
	}
	if w.debounce <= 0 {
		w.debounce = DefaultDebounce
	}
	if w.logger == nil {
		w.logger = logging.Discard()
	}

	for _, dir := range dirs {
		if err := w.watchTree(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	return w, nil
}

// Start runs the event loop until ctx is cancelled or Stop is called.
// callback runs on the loop goroutine with the sorted batch files that
// changed since the previous call.
func (w *batchWatcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}

	ctx, w.cancel = context.WithCancel(ctx)
	go w.loop(ctx, callback)
	return nil
}

// Stop ends the event loop and releases the underlying watcher. Safe to
// call more than once and from several goroutines.
func (w *batchWatcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.fsw.Close()
	})
	return err
}

func (w *batchWatcher) Pause()  { w.setPaused(true) }
func (w *batchWatcher) Resume() { w.setPaused(false) }

// setPaused is a no-op once the loop has exited.
func (w *batchWatcher) setPaused(paused bool) {
	select {
	case w.pauseCh <- paused:
	case <-w.doneCh:
	}
}

func (w *batchWatcher) loop(ctx context.Context, callback func(files []string)) {
	defer close(w.doneCh)

	pending := make(map[string]struct{})
	paused := false

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	flush := func() {
		files := existingFiles(pending)
		clear(pending)
		if len(files) > 0 {
			callback(files)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case paused = <-w.pauseCh:
			if !paused && len(pending) > 0 {
				timer.Stop()
				flush()
			}

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if path, ok := w.changedBatch(event); ok {
				pending[path] = struct{}{}
				timer.Reset(w.debounce)
			}

		case <-timer.C:
			if !paused {
				flush()
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", slog.Any("error", err))
		}
	}
}

// changedBatch maps an event to the batch file it touched. A created
// directory is added to the watch instead. Removals and renames report the
// old name, which has nothing left to transform; the new name of a rename
// arrives as its own Create.
func (w *batchWatcher) changedBatch(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return "", false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.watchTree(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", slog.String("dir", event.Name), slog.Any("error", err))
			}
		}
		return "", false
	}

	if w.filter != nil && !w.filter(event.Name) {
		return "", false
	}
	return event.Name, true
}

// existingFiles returns the pending paths that are still regular files, in
// lexical order. A batch written and then deleted within one debounce
// window is dropped.
func existingFiles(pending map[string]struct{}) []string {
	files := slices.Sorted(maps.Keys(pending))
	return slices.DeleteFunc(files, func(path string) bool {
		info, err := os.Stat(path)
		return err != nil || !info.Mode().IsRegular()
	})
}

// watchTree adds root and every directory below it. Only an unreadable root
// is an error; problems further down are logged and skipped.
func (w *batchWatcher) watchTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			w.logger.Warn("error accessing path", slog.String("path", path), slog.Any("error", err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", slog.String("dir", path), slog.Any("error", err))
		}
		return nil
	})
}
