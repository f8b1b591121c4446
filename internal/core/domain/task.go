package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	// TaskStatusPending marks a task that is not started.
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusInProgress marks a task being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"

	// TaskStatusCompleted marks a finished task.
	TaskStatusCompleted TaskStatus = "completed"
)

// IsValid reports whether the status is a known value.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// TaskPriority orders tasks by urgency.
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// IsValid reports whether the priority is a known value.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// Rank returns a sortable weight, higher is more urgent.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityHigh:
		return 2
	case TaskPriorityMedium:
		return 1
	default:
		return 0
	}
}

// ManualSource is the synthetic source_file recorded for tasks added
// directly rather than extracted from a note. Manual tasks are never
// touched by re-extraction merge logic.
const ManualSource = "manual"

// TaskItem is an actionable item, either extracted from note text or
// added manually.
type TaskItem struct {
	// ID is stable across re-extraction of unchanged text. For extracted
	// tasks it is derived from (SourceFile, SourceSection, normalized
	// content); for manual tasks it is random.
	ID string

	// Content is the task text with marker syntax stripped.
	Content string

	Status   TaskStatus
	Priority TaskPriority

	// DueDate is the resolved absolute due date, if any.
	DueDate *time.Time

	// Tags are optional free-form labels.
	Tags []string

	// SourceFile is the originating note path, or ManualSource.
	SourceFile string

	// SourceSection is the heading text of the originating section.
	SourceSection string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsManual reports whether the task was added by hand rather than extracted.
func (t TaskItem) IsManual() bool {
	return t.SourceFile == ManualSource
}

// TaskPatch carries partial updates for a task. Nil fields are left
// untouched; ClearDueDate removes an existing due date.
type TaskPatch struct {
	Content      *string
	Status       *TaskStatus
	Priority     *TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
	Tags         []string
}

// TaskID derives the deterministic identity for an extracted task.
// Re-extraction of semantically unchanged text yields the same ID.
func TaskID(sourceFile, sourceSection, normalizedContent string) string {
	h := sha256.Sum256([]byte(sourceFile + "\x00" + sourceSection + "\x00" + normalizedContent))
	return hex.EncodeToString(h[:8])
}

// NormalizeTaskContent reduces task text to its identity-relevant form:
// marker syntax and priority cues removed, whitespace collapsed,
// case folded.
func NormalizeTaskContent(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"- [ ]", "* [ ]", "- [x]", "* [x]"} {
		if strings.HasPrefix(s, prefix) {
			s = s[len(prefix):]
			break
		}
	}

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if strings.HasPrefix(f, "!") {
			continue
		}
		kept = append(kept, f)
	}
	return strings.ToLower(strings.Join(kept, " "))
}

// SortTasksForDisplay orders tasks for presentation: pending before
// completed; within pending higher priority first, then earlier due
// date (no due date last); within completed most recently updated
// first. The ordering is presentational only, not a storage invariant.
func SortTasksForDisplay(tasks []TaskItem) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]

		ad, bd := a.Status == TaskStatusCompleted, b.Status == TaskStatusCompleted
		if ad != bd {
			return !ad
		}
		if ad {
			return a.UpdatedAt.After(b.UpdatedAt)
		}

		if a.Priority.Rank() != b.Priority.Rank() {
			return a.Priority.Rank() > b.Priority.Rank()
		}
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return false
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		default:
			return a.DueDate.Before(*b.DueDate)
		}
	})
}
