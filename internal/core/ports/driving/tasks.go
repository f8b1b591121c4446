package driving

import (
	"context"
	"time"

	"github.com/noteward/noteward/internal/core/domain"
)

// ExtractOptions configures a corpus extraction run.
type ExtractOptions struct {
	// Prune removes previously extracted tasks whose source text no
	// longer appears anywhere in the corpus. Off by default:
	// re-extraction is additive and merging, never destructive.
	Prune bool

	// ModifiedSince limits the scan to notes modified after the given
	// time. Zero scans everything.
	ModifiedSince time.Time
}

// ExtractReport summarises a reconciliation run.
type ExtractReport struct {
	// Scanned is the number of notes segmented.
	Scanned int

	// Found is the number of task markers recognised.
	Found int

	// Added is the number of newly inserted tasks.
	Added int

	// Refreshed is the number of existing tasks whose source text
	// changed (updated_at refreshed, user edits preserved).
	Refreshed int

	// Pruned is the number of tasks removed (only when Prune was set).
	Pruned int
}

// TaskService manages task extraction, reconciliation and manual edits.
type TaskService interface {
	// Extract scans the corpus for task markers and reconciles them
	// against the store. Idempotent: re-running on an unchanged corpus
	// changes nothing.
	Extract(ctx context.Context, opts ExtractOptions) (*ExtractReport, error)

	// List returns tasks in presentation order, optionally filtered by
	// status.
	List(ctx context.Context, status domain.TaskStatus) ([]domain.TaskItem, error)

	// Add inserts a manual task. Manual tasks are never touched by
	// re-extraction.
	Add(ctx context.Context, content string, priority domain.TaskPriority, due *string) (*domain.TaskItem, error)

	// Update applies a partial edit to a task.
	Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.TaskItem, error)

	// Delete removes a task.
	Delete(ctx context.Context, id string) error

	// Overdue returns unfinished tasks whose due date has passed.
	Overdue(ctx context.Context) ([]domain.TaskItem, error)
}
