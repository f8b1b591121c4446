package driven

import (
	"context"

	"github.com/noteward/noteward/internal/core/domain"
)

// TaskStore persists task items. It is the durable owner of task state
// across process restarts; the extraction engine owns the merge logic.
type TaskStore interface {
	// Save creates or replaces a task by ID.
	Save(ctx context.Context, task domain.TaskItem) error

	// SaveAll creates or replaces many tasks in one transaction.
	SaveAll(ctx context.Context, tasks []domain.TaskItem) error

	// Get retrieves a task by ID. Returns domain.ErrNotFound when absent.
	Get(ctx context.Context, id string) (*domain.TaskItem, error)

	// List returns all tasks, optionally filtered by status.
	// An empty status returns everything.
	List(ctx context.Context, status domain.TaskStatus) ([]domain.TaskItem, error)

	// Delete removes a task. Returns domain.ErrNotFound when absent.
	Delete(ctx context.Context, id string) error
}

// DigestStore persists daily digest records keyed by date.
type DigestStore interface {
	// Save stores a digest record. Digests are immutable once written.
	Save(ctx context.Context, digest domain.Digest) error

	// Latest returns the most recent digest, or domain.ErrNotFound when
	// none has been written yet.
	Latest(ctx context.Context) (*domain.Digest, error)

	// Get retrieves the digest for a calendar day.
	Get(ctx context.Context, day string) (*domain.Digest, error)

	// List returns the most recent digests, newest first.
	List(ctx context.Context, limit int) ([]domain.Digest, error)
}
