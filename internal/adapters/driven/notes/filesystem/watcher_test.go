package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noteward/noteward/internal/core/ports/driven"
)

func TestTranslate(t *testing.T) {
	root := t.TempDir()
	w := NewWatcher(root)
	fsw, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer fsw.Close()

	abs := func(rel string) string { return filepath.Join(root, rel) }

	tests := []struct {
		name string
		ev   fsnotify.Event
		want *driven.NoteEvent
	}{
		{
			name: "write",
			ev:   fsnotify.Event{Name: abs("plan.md"), Op: fsnotify.Write},
			want: &driven.NoteEvent{Path: "plan.md", Op: driven.NoteWritten},
		},
		{
			name: "create",
			ev:   fsnotify.Event{Name: abs("work/new.md"), Op: fsnotify.Create},
			want: &driven.NoteEvent{Path: "work/new.md", Op: driven.NoteWritten},
		},
		{
			name: "remove",
			ev:   fsnotify.Event{Name: abs("plan.md"), Op: fsnotify.Remove},
			want: &driven.NoteEvent{Path: "plan.md", Op: driven.NoteRemoved},
		},
		{
			name: "rename",
			ev:   fsnotify.Event{Name: abs("plan.md"), Op: fsnotify.Rename},
			want: &driven.NoteEvent{Path: "plan.md", Op: driven.NoteRemoved},
		},
		{
			name: "chmod ignored",
			ev:   fsnotify.Event{Name: abs("plan.md"), Op: fsnotify.Chmod},
			want: nil,
		},
		{
			name: "hidden file ignored",
			ev:   fsnotify.Event{Name: abs(".plan.md.swp"), Op: fsnotify.Write},
			want: nil,
		},
		{
			name: "non markdown ignored",
			ev:   fsnotify.Event{Name: abs("image.png"), Op: fsnotify.Write},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.translate(fsw, tt.ev)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslate_NewDirectoryIsWatchedNotReported(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "projects"), 0o755))

	w := NewWatcher(root)
	fsw, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer fsw.Close()

	got := w.translate(fsw, fsnotify.Event{
		Name: filepath.Join(root, "projects"),
		Op:   fsnotify.Create,
	})
	assert.Nil(t, got)
	assert.Contains(t, fsw.WatchList(), filepath.Join(root, "projects"))
}

func waitForEvent(t *testing.T, events <-chan driven.NoteEvent) driven.NoteEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "event stream closed")
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for note event")
		return driven.NoteEvent{}
	}
}

func TestWatch_WriteAndRemove(t *testing.T) {
	root := t.TempDir()
	w := NewWatcher(root)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := w.Watch(ctx)
	require.NoError(t, err)

	path := filepath.Join(root, "plan.md")
	require.NoError(t, os.WriteFile(path, []byte("# Plan\n"), 0o644))

	ev := waitForEvent(t, events)
	assert.Equal(t, driven.NoteEvent{Path: "plan.md", Op: driven.NoteWritten}, ev)

	require.NoError(t, os.Remove(path))
	ev = waitForEvent(t, events)
	assert.Equal(t, driven.NoteEvent{Path: "plan.md", Op: driven.NoteRemoved}, ev)
}

func TestWatch_DebouncesBursts(t *testing.T) {
	root := t.TempDir()
	w := NewWatcher(root)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _, err := w.Watch(ctx)
	require.NoError(t, err)

	// A burst of writes within the debounce window collapses into one
	// event.
	path := filepath.Join(root, "plan.md")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("# Plan\n"), 0o644))
	}

	ev := waitForEvent(t, events)
	assert.Equal(t, "plan.md", ev.Path)

	select {
	case extra := <-events:
		t.Fatalf("unexpected second event: %+v", extra)
	case <-time.After(2 * debounceWindow):
	}
}

func TestWatch_AfterClose(t *testing.T) {
	w := NewWatcher(t.TempDir())
	require.NoError(t, w.Close())

	_, _, err := w.Watch(context.Background())
	assert.Error(t, err)
}
