package driving

import (
	"context"

	"github.com/noteward/noteward/internal/core/domain"
)

// IndexStatus reports the orchestrator's view of the index.
type IndexStatus struct {
	// Ready is true once the index has been built or loaded.
	Ready bool

	// Entries is the number of indexed chunk vectors.
	Entries int

	// Rebuilding is true while a full rebuild is running.
	Rebuilding bool
}

// IndexOrchestrator keeps the vector index coherent with the corpus.
type IndexOrchestrator interface {
	// RefreshDocument re-segments and re-embeds one note.
	RefreshDocument(ctx context.Context, path string) error

	// RemoveDocument drops a deleted note's entries from the index.
	RemoveDocument(ctx context.Context, path string) error

	// RebuildAll re-embeds the whole corpus. A rebuild already in
	// flight is coalesced: the running build is cancelled and a fresh
	// one started, rather than queueing duplicates.
	RebuildAll(ctx context.Context) error

	// Analyze segments a single note and returns its chunks without
	// touching the index. Debug/visualisation support.
	Analyze(ctx context.Context, path string) ([]domain.Chunk, error)

	// Status reports readiness and entry counts.
	Status(ctx context.Context) (*IndexStatus, error)
}
