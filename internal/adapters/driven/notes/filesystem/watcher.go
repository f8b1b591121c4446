package filesystem

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

	"github.com/noteward/noteward/internal/core/ports/driven"
	"github.com/noteward/noteward/internal/logger"
)

// Ensure Watcher implements the interface.
var _ driven.NoteWatcher = (*Watcher)(nil)

// debounceWindow coalesces bursts of events for the same note. Editors
// commonly emit several writes (and a rename) per save.
const debounceWindow = 300 * time.Millisecond

// Watcher streams note changes under a root directory using fsnotify.
// New subdirectories are added to the watch set as they appear.
type Watcher struct {
	root string

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	closed  bool
}

// NewWatcher creates a watcher for the given notes root.
func NewWatcher(root string) *Watcher {
	return &Watcher{root: filepath.Clean(root)}
}

// Watch starts watching and returns the event stream. Events are
// debounced per note path; the streams close when ctx is cancelled or
// the watcher fails.
func (w *Watcher) Watch(ctx context.Context) (<-chan driven.NoteEvent, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, nil, fmt.Errorf("watcher is closed")
	}
	if w.watcher != nil {
		return nil, nil, fmt.Errorf("watcher already started")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := w.addRecursive(fsw, w.root); err != nil {
		fsw.Close()
		return nil, nil, err
	}
	w.watcher = fsw

	events := make(chan driven.NoteEvent, 16)
	errs := make(chan error, 1)

	go w.run(ctx, fsw, events, errs)

	return events, errs, nil
}

// run is the event pump. It owns the debounce state and is the only
// writer to the output channels.
func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher, events chan<- driven.NoteEvent, errs chan<- error) {
	defer close(events)
	defer close(errs)

	pending := make(map[string]driven.NoteEvent)
	var flush <-chan time.Time
	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			ne := w.translate(fsw, ev)
			if ne == nil {
				continue
			}
			pending[ne.Path] = *ne
			timer.Reset(debounceWindow)
			flush = timer.C

		case <-flush:
			for _, ne := range pending {
				select {
				case events <- ne:
				case <-ctx.Done():
					return
				}
			}
			pending = make(map[string]driven.NoteEvent)
			flush = nil

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			select {
			case errs <- fmt.Errorf("watch notes: %w", err):
			default:
			}
			return
		}
	}
}

// translate maps a raw fsnotify event onto a note event, or nil when
// the event is irrelevant (directories, hidden files, non-markdown).
func (w *Watcher) translate(fsw *fsnotify.Watcher, ev fsnotify.Event) *driven.NoteEvent {
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") {
		return nil
	}

	// A new directory extends the watch set but is not itself a note.
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(fsw, ev.Name); err != nil {
				logger.Warn("Failed to watch new directory %s: %v", ev.Name, err)
			}
			return nil
		}
	}

	if !isMarkdown(name) {
		return nil
	}

	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil {
		return nil
	}
	rel = filepath.ToSlash(rel)

	switch {
	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write):
		return &driven.NoteEvent{Path: rel, Op: driven.NoteWritten}
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		return &driven.NoteEvent{Path: rel, Op: driven.NoteRemoved}
	default:
		return nil
	}
}

// addRecursive registers a directory and all non-hidden subdirectories.
func (w *Watcher) addRecursive(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch directory %s: %w", path, err)
		}
		return nil
	})
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	if w.watcher == nil {
		return nil
	}
	err := w.watcher.Close()
	w.watcher = nil
	return err
}
