package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/noteward/noteward/internal/core/domain"
	"github.com/noteward/noteward/internal/core/ports/driven"
	"github.com/noteward/noteward/internal/core/ports/driving"
	"github.com/noteward/noteward/internal/logger"
	"github.com/noteward/noteward/internal/segment"
)

// Ensure Indexer implements the interface.
var _ driving.IndexOrchestrator = (*Indexer)(nil)

// rebuildRetryDelay paces the coalescing loop while a cancelled
// rebuild winds down and releases the index.
const rebuildRetryDelay = 50 * time.Millisecond

// Indexer keeps the vector index coherent with the notes corpus: it
// loads the persisted index at startup, applies single-document
// refreshes, and runs full rebuilds with cancel-and-coalesce semantics.
type Indexer struct {
	notes driven.NoteSource
	index driven.VectorIndex

	mu      sync.Mutex
	rebuild *rebuildRun
	ready   bool
}

// rebuildRun identifies one in-flight rebuild so a superseded run can
// tell whether the current state is still its own to clean up.
type rebuildRun struct {
	cancel context.CancelFunc
}

// NewIndexer creates a new index orchestrator.
func NewIndexer(notes driven.NoteSource, index driven.VectorIndex) *Indexer {
	return &Indexer{
		notes: notes,
		index: index,
	}
}

// MarkReady records that the index holds a usable state, e.g. after a
// successful LoadPersisted at startup.
func (o *Indexer) MarkReady() {
	o.mu.Lock()
	o.ready = true
	o.mu.Unlock()
}

// RefreshDocument re-segments and re-embeds one note.
func (o *Indexer) RefreshDocument(ctx context.Context, path string) error {
	doc, err := o.notes.Read(ctx, path)
	if err != nil {
		return fmt.Errorf("read note %s: %w", path, err)
	}

	chunks, _ := segment.Segment(doc.ID, doc.Content)
	if err := o.index.Upsert(ctx, doc, chunks); err != nil {
		return fmt.Errorf("index note %s: %w", path, err)
	}

	logger.Debug("Refreshed %s: %d chunks", path, len(chunks))
	return nil
}

// RemoveDocument drops a deleted note's entries from the index.
func (o *Indexer) RemoveDocument(ctx context.Context, path string) error {
	if err := o.index.Remove(ctx, path); err != nil {
		return fmt.Errorf("remove note %s from index: %w", path, err)
	}
	logger.Debug("Removed %s from index", path)
	return nil
}

// RebuildAll re-embeds the whole corpus. A rebuild already in flight
// is cancelled and superseded rather than queued behind.
func (o *Indexer) RebuildAll(ctx context.Context) error {
	// Take over from any running rebuild.
	o.mu.Lock()
	if o.rebuild != nil {
		logger.Debug("Cancelling in-flight rebuild")
		o.rebuild.cancel()
	}
	rctx, cancel := context.WithCancel(ctx)
	run := &rebuildRun{cancel: cancel}
	o.rebuild = run
	o.mu.Unlock()

	defer func() {
		cancel()
		o.mu.Lock()
		if o.rebuild == run {
			o.rebuild = nil
		}
		o.mu.Unlock()
	}()

	docs, err := o.loadCorpus(ctx)
	if err != nil {
		return err
	}

	// The cancelled predecessor may still hold the index's rebuild
	// lock for a moment; retry until it lets go.
	for {
		err := o.index.Rebuild(rctx, docs)
		switch {
		case err == nil:
			o.mu.Lock()
			o.ready = true
			o.mu.Unlock()
			return nil
		case errors.Is(err, domain.ErrRebuildInProgress):
			select {
			case <-rctx.Done():
				return rctx.Err()
			case <-time.After(rebuildRetryDelay):
			}
		default:
			return err
		}
	}
}

// Analyze segments a single note and returns its chunks without
// touching the index.
func (o *Indexer) Analyze(ctx context.Context, path string) ([]domain.Chunk, error) {
	doc, err := o.notes.Read(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read note %s: %w", path, err)
	}

	chunks, _ := segment.Segment(doc.ID, doc.Content)
	return chunks, nil
}

// Status reports readiness and entry counts.
func (o *Indexer) Status(ctx context.Context) (*driving.IndexStatus, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	entries := o.index.Len()
	return &driving.IndexStatus{
		Ready:      o.ready || entries > 0,
		Entries:    entries,
		Rebuilding: o.rebuild != nil,
	}, nil
}

// Serve consumes watcher events and keeps the index fresh until the
// context is cancelled or the watcher fails.
func (o *Indexer) Serve(ctx context.Context, watcher driven.NoteWatcher) error {
	events, errs, err := watcher.Watch(ctx)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	logger.Info("Watching notes for changes")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			o.handleEvent(ctx, ev)

		case werr, ok := <-errs:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher failed: %w", werr)
		}
	}
}

func (o *Indexer) handleEvent(ctx context.Context, ev driven.NoteEvent) {
	var err error
	switch ev.Op {
	case driven.NoteWritten:
		err = o.RefreshDocument(ctx, ev.Path)
	case driven.NoteRemoved:
		err = o.RemoveDocument(ctx, ev.Path)
	}
	if err != nil {
		logger.Warn("Index update for %s failed: %v", ev.Path, err)
	}
}

// loadCorpus reads every note into memory for a rebuild.
func (o *Indexer) loadCorpus(ctx context.Context) ([]domain.Document, error) {
	notes, err := o.notes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	docs := make([]domain.Document, 0, len(notes))
	for _, note := range notes {
		doc, err := o.notes.Read(ctx, note.Path)
		if err != nil {
			logger.Warn("Skipping unreadable note %s: %v", note.Path, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
