// Package index provides the in-memory vector index behind the
// driven.VectorIndex port.
//
// The index is a set of immutable snapshots behind a single atomic
// pointer. Writers build a replacement snapshot off to the side and
// swap the pointer; readers load the pointer once and work on a
// consistent view for the whole search. A rebuild therefore never
// exposes a partially built index.
package index

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/noteward/noteward/internal/core/domain"
	"github.com/noteward/noteward/internal/core/ports/driven"
	"github.com/noteward/noteward/internal/logger"
	"github.com/noteward/noteward/internal/segment"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// entry is one indexed chunk vector. Vectors are stored L2-normalised
// so the dot product equals cosine similarity.
type entry struct {
	id   string
	meta domain.ChunkMeta
	text string
	vec  []float32
}

// snapshot is an immutable view of the whole index.
type snapshot struct {
	entries []entry
}

// Index is a brute-force cosine similarity index over chunk embeddings.
// Suitable for a personal corpus: exact, ordered, and trivially
// swappable.
type Index struct {
	embedder driven.EmbeddingService
	store    driven.IndexStore // optional persistence, may be nil

	writeMu   sync.Mutex // serialises upsert/remove/swap
	rebuildMu sync.Mutex // at most one rebuild at a time
	current   atomic.Pointer[snapshot]
}

// New creates an index that embeds via the given service and, when
// store is non-nil, mirrors entries to it for fast startup.
func New(embedder driven.EmbeddingService, store driven.IndexStore) *Index {
	return &Index{embedder: embedder, store: store}
}

// LoadPersisted populates the index from the persisted entries, if a
// store is configured. Called once at startup before serving searches.
func (x *Index) LoadPersisted(ctx context.Context) error {
	if x.store == nil {
		return nil
	}
	persisted, err := x.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load persisted index: %w", err)
	}
	if len(persisted) == 0 {
		return nil
	}

	entries := make([]entry, 0, len(persisted))
	for _, e := range persisted {
		entries = append(entries, entry{
			id:   e.ChunkID,
			meta: e.Meta,
			text: e.Text,
			vec:  normalise(e.Vector),
		})
	}

	x.writeMu.Lock()
	defer x.writeMu.Unlock()
	x.current.Store(&snapshot{entries: entries})
	logger.Info("Index loaded from disk: %d entries", len(entries))
	return nil
}

// Upsert embeds the chunks and replaces all entries for the document.
func (x *Index) Upsert(ctx context.Context, doc domain.Document, chunks []domain.Chunk) error {
	fresh, err := x.embedChunks(ctx, doc, chunks)
	if err != nil {
		return err
	}

	x.writeMu.Lock()
	defer x.writeMu.Unlock()

	next := x.withoutDoc(doc.ID)
	next.entries = append(next.entries, fresh...)
	x.current.Store(next)

	if x.store != nil {
		if err := x.store.SaveEntries(ctx, doc.ID, toIndexEntries(fresh)); err != nil {
			logger.Warn("Persist index entries for %s: %v", doc.ID, err)
		}
	}
	return nil
}

// Remove deletes all entries for the document.
func (x *Index) Remove(ctx context.Context, docID string) error {
	x.writeMu.Lock()
	defer x.writeMu.Unlock()

	x.current.Store(x.withoutDoc(docID))

	if x.store != nil {
		if err := x.store.DeleteEntries(ctx, docID); err != nil {
			logger.Warn("Delete persisted entries for %s: %v", docID, err)
		}
	}
	return nil
}

// Search returns the k nearest entries matching the filter.
func (x *Index) Search(_ context.Context, query []float32, k int, filter domain.ChunkFilter) ([]driven.VectorHit, error) {
	snap := x.current.Load()
	if snap == nil {
		return nil, domain.ErrIndexNotReady
	}
	if k <= 0 {
		k = 10
	}

	q := normalise(query)
	hits := make([]driven.VectorHit, 0, k)
	for i := range snap.entries {
		e := &snap.entries[i]
		if !filter.IsZero() && !filter.Matches(e.meta) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			ChunkID: e.id,
			Meta:    e.meta,
			Text:    e.text,
			Score:   float64(dot(q, e.vec)),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Rebuild re-embeds the whole corpus into a fresh snapshot and swaps
// it in. Readers keep the old snapshot until the swap completes.
func (x *Index) Rebuild(ctx context.Context, docs []domain.Document) error {
	if !x.rebuildMu.TryLock() {
		return domain.ErrRebuildInProgress
	}
	defer x.rebuildMu.Unlock()

	logger.Section("Index Rebuild")
	var entries []entry
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunks, _ := segment.Segment(doc.ID, doc.Content)
		fresh, err := x.embedChunks(ctx, doc, chunks)
		if err != nil {
			return fmt.Errorf("rebuild %s: %w", doc.ID, err)
		}
		entries = append(entries, fresh...)
	}

	x.writeMu.Lock()
	x.current.Store(&snapshot{entries: entries})
	x.writeMu.Unlock()
	logger.Info("Index rebuilt: %d entries from %d notes", len(entries), len(docs))

	if x.store != nil {
		all := make([]driven.IndexEntry, 0, len(entries))
		for i := range entries {
			all = append(all, driven.IndexEntry{
				ChunkID: entries[i].id,
				Meta:    entries[i].meta,
				Text:    entries[i].text,
				Vector:  entries[i].vec,
			})
		}
		if err := x.store.ReplaceAll(ctx, all); err != nil {
			logger.Warn("Persist rebuilt index: %v", err)
		}
	}
	return nil
}

// Len reports the number of indexed entries.
func (x *Index) Len() int {
	snap := x.current.Load()
	if snap == nil {
		return 0
	}
	return len(snap.entries)
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

// embedChunks embeds header text for header chunks and body text for
// content chunks, producing ready-to-insert entries.
func (x *Index) embedChunks(ctx context.Context, doc domain.Document, chunks []domain.Chunk) ([]entry, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := x.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	entries := make([]entry, len(chunks))
	for i, c := range chunks {
		entries[i] = entry{
			id:   c.ID(),
			meta: c.Meta(doc.Folder),
			text: c.Text,
			vec:  normalise(vectors[i]),
		}
	}
	return entries, nil
}

// withoutDoc clones the current snapshot minus one document's entries.
// Caller must hold writeMu.
func (x *Index) withoutDoc(docID string) *snapshot {
	cur := x.current.Load()
	if cur == nil {
		return &snapshot{}
	}
	next := &snapshot{entries: make([]entry, 0, len(cur.entries))}
	for i := range cur.entries {
		if cur.entries[i].meta.DocID != docID {
			next.entries = append(next.entries, cur.entries[i])
		}
	}
	return next
}

func toIndexEntries(entries []entry) []driven.IndexEntry {
	out := make([]driven.IndexEntry, len(entries))
	for i := range entries {
		out[i] = driven.IndexEntry{
			ChunkID: entries[i].id,
			Meta:    entries[i].meta,
			Text:    entries[i].text,
			Vector:  entries[i].vec,
		}
	}
	return out
}

// normalise returns the L2-normalised copy of v. A zero vector is
// returned unchanged.
func normalise(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	if sum == 0 {
		return v
	}
	inv := 1.0 / math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(float64(f) * inv)
	}
	return out
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
