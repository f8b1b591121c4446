package driven

import (
	"context"

	"github.com/noteward/noteward/internal/core/domain"
)

// VectorIndex provides similarity search over chunk embeddings.
//
// Implementations must guarantee that a Search always observes either
// the state before or after any concurrent Rebuild or Upsert, never a
// mix: rebuilds construct a fresh index off to the side and swap it in
// atomically.
type VectorIndex interface {
	// Upsert embeds the given chunks (header text for header chunks,
	// body text for content chunks) and replaces all existing entries
	// for the document.
	Upsert(ctx context.Context, doc domain.Document, chunks []domain.Chunk) error

	// Remove deletes all entries for the document.
	Remove(ctx context.Context, docID string) error

	// Search returns the k nearest chunks to the query vector, filtered
	// by the optional metadata predicate. Returns
	// domain.ErrIndexNotReady before the first build.
	Search(ctx context.Context, query []float32, k int, filter domain.ChunkFilter) ([]VectorHit, error)

	// Rebuild re-embeds the whole corpus into a fresh index and swaps
	// it in on completion. Readers continue to see the old index until
	// the swap. At most one rebuild runs at a time.
	Rebuild(ctx context.Context, docs []domain.Document) error

	// Len reports the number of indexed entries.
	Len() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk's stable identity.
	ChunkID string

	// Meta mirrors the chunk's structural metadata.
	Meta domain.ChunkMeta

	// Text is the indexed chunk text.
	Text string

	// Score is the cosine similarity (0-1).
	Score float64
}

// IndexStore persists index entries for fast startup. The index is
// always rebuildable from source documents; persistence is an
// optimisation, not a durability requirement.
type IndexStore interface {
	// SaveEntries replaces the persisted entries for a document.
	SaveEntries(ctx context.Context, docID string, entries []IndexEntry) error

	// DeleteEntries removes all persisted entries for a document.
	DeleteEntries(ctx context.Context, docID string) error

	// ReplaceAll atomically replaces the whole persisted index.
	ReplaceAll(ctx context.Context, entries []IndexEntry) error

	// LoadAll returns every persisted entry.
	LoadAll(ctx context.Context) ([]IndexEntry, error)
}

// IndexEntry is a persisted chunk vector with its metadata.
type IndexEntry struct {
	ChunkID string
	Meta    domain.ChunkMeta
	Text    string
	Vector  []float32
}
