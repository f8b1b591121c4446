package driven

import (
	"context"

	"github.com/noteward/noteward/internal/core/domain"
)

// NoteSource is the document store collaborator: a flat view over the
// markdown corpus on disk.
type NoteSource interface {
	// List enumerates every markdown note under the root.
	List(ctx context.Context) ([]domain.NoteInfo, error)

	// Read loads a note by its relative path.
	Read(ctx context.Context, path string) (domain.Document, error)

	// Write creates or replaces a note.
	Write(ctx context.Context, path, content string) error

	// Delete removes a note.
	Delete(ctx context.Context, path string) error
}

// NoteEventOp describes a corpus change observed by a watcher.
type NoteEventOp string

const (
	// NoteWritten fires when a note is created or its content changes.
	NoteWritten NoteEventOp = "written"

	// NoteRemoved fires when a note is deleted or renamed away.
	NoteRemoved NoteEventOp = "removed"
)

// NoteEvent is a single observed corpus change.
type NoteEvent struct {
	// Path is the note path relative to the notes root.
	Path string

	// Op is the kind of change.
	Op NoteEventOp
}

// NoteWatcher streams corpus changes until the context is cancelled.
// Events are delivered on the returned channel; watcher failures close
// it after sending a final error on the error channel.
type NoteWatcher interface {
	// Watch starts watching and returns the event stream.
	Watch(ctx context.Context) (<-chan NoteEvent, <-chan error, error)

	// Close stops the watcher and releases resources.
	Close() error
}
