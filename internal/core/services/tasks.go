package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noteward/noteward/internal/core/domain"
	"github.com/noteward/noteward/internal/core/ports/driven"
	"github.com/noteward/noteward/internal/core/ports/driving"
	"github.com/noteward/noteward/internal/logger"
	"github.com/noteward/noteward/internal/segment"
)

// Ensure TaskService implements the interface.
var _ driving.TaskService = (*TaskService)(nil)

// minTaskLength drops fragments too short to be actionable.
const minTaskLength = 4

var (
	checkedBoxRe   = regexp.MustCompile(`^\s*[-*]\s+\[[xX]\]\s+`)
	uncheckedBoxRe = regexp.MustCompile(`^\s*[-*]\s+\[ \]\s+`)
	keywordMarkRe  = regexp.MustCompile(`^\s*(?:TODO|FIXME)\s*:?\s+`)
)

// TaskService extracts tasks from note text and reconciles them with
// the store. All writes are serialized by a single mutex: extraction
// and manual edits never interleave.
type TaskService struct {
	notes driven.NoteSource
	store driven.TaskStore

	mu  sync.Mutex
	now func() time.Time
}

// NewTaskService creates a new task service.
func NewTaskService(notes driven.NoteSource, store driven.TaskStore) *TaskService {
	return &TaskService{
		notes: notes,
		store: store,
		now:   time.Now,
	}
}

// extracted is a task candidate parsed from a marker line.
type extracted struct {
	task      domain.TaskItem
	completed bool // source checkbox is checked
}

// Extract scans the corpus for task markers and reconciles them
// against the store. Idempotent: re-running on an unchanged corpus
// changes nothing.
func (s *TaskService) Extract(ctx context.Context, opts driving.ExtractOptions) (*driving.ExtractReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger.Section("Task Extraction")

	notes, err := s.notes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	report := &driving.ExtractReport{}
	now := s.now()

	candidates := make(map[string]extracted)
	scannedFiles := make(map[string]bool)
	liveFiles := make(map[string]bool)

	for _, note := range notes {
		liveFiles[note.Path] = true
		if !opts.ModifiedSince.IsZero() && !note.Modified.After(opts.ModifiedSince) {
			continue
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		doc, err := s.notes.Read(ctx, note.Path)
		if err != nil {
			logger.Warn("Skipping unreadable note %s: %v", note.Path, err)
			continue
		}
		scannedFiles[note.Path] = true
		report.Scanned++

		_, markers := segment.Segment(doc.ID, doc.Content)
		for _, marker := range markers {
			report.Found++
			cand, ok := parseMarker(doc.ID, marker, now)
			if !ok {
				continue
			}
			s.admit(candidates, cand)
		}
	}

	existing, err := s.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	byID := make(map[string]domain.TaskItem, len(existing))
	for _, t := range existing {
		byID[t.ID] = t
	}

	var toSave []domain.TaskItem
	for id, cand := range candidates {
		prev, known := byID[id]
		if !known {
			report.Added++
			toSave = append(toSave, cand.task)
			continue
		}

		// User edits win: status, priority, due date, and content stay
		// as stored. A checked box in the source completes a still
		// pending task; the display content refresh only bumps
		// updated_at when the source text actually changed.
		changed := false
		if cand.completed && prev.Status == domain.TaskStatusPending {
			prev.Status = domain.TaskStatusCompleted
			changed = true
		}
		if prev.Content != cand.task.Content && prev.Content != "" {
			// Raw text changed without changing identity (case,
			// whitespace, cue edits).
			changed = true
		}
		if changed {
			prev.UpdatedAt = now
			report.Refreshed++
			toSave = append(toSave, prev)
		}
	}

	if err := s.store.SaveAll(ctx, toSave); err != nil {
		return nil, fmt.Errorf("save tasks: %w", err)
	}

	// Extracted tasks whose source text is gone are retained unless
	// pruning was requested. Pruning only considers files this run
	// actually observed: markers in unscanned files are not "gone".
	if opts.Prune {
		for _, t := range existing {
			if t.IsManual() {
				continue
			}
			if _, still := candidates[t.ID]; still {
				continue
			}
			if !scannedFiles[t.SourceFile] && liveFiles[t.SourceFile] {
				continue
			}
			if err := s.store.Delete(ctx, t.ID); err != nil {
				logger.Warn("Failed to prune task %s: %v", t.ID, err)
				continue
			}
			report.Pruned++
		}
	}

	logger.Info("Extraction: scanned=%d found=%d added=%d refreshed=%d pruned=%d",
		report.Scanned, report.Found, report.Added, report.Refreshed, report.Pruned)
	return report, nil
}

// admit adds a candidate to the run's set, deduplicating identical ids
// and disambiguating genuine hash collisions with an ordinal suffix.
func (s *TaskService) admit(candidates map[string]extracted, cand extracted) {
	id := cand.task.ID
	for ordinal := 2; ; ordinal++ {
		prev, taken := candidates[id]
		if !taken {
			cand.task.ID = id
			candidates[id] = cand
			return
		}
		if prev.task.Content == cand.task.Content &&
			prev.task.SourceFile == cand.task.SourceFile &&
			prev.task.SourceSection == cand.task.SourceSection {
			// Same marker seen twice in one run.
			return
		}
		logger.Warn("Task id collision for %q in %s, disambiguating", cand.task.Content, cand.task.SourceFile)
		id = fmt.Sprintf("%s-%d", cand.task.ID, ordinal)
	}
}

// parseMarker turns a raw marker line into a task candidate.
func parseMarker(docID string, marker domain.TaskMarker, now time.Time) (extracted, bool) {
	line := marker.Line
	completed := checkedBoxRe.MatchString(line)

	content := line
	switch {
	case checkedBoxRe.MatchString(content):
		content = checkedBoxRe.ReplaceAllString(content, "")
	case uncheckedBoxRe.MatchString(content):
		content = uncheckedBoxRe.ReplaceAllString(content, "")
	case keywordMarkRe.MatchString(content):
		content = keywordMarkRe.ReplaceAllString(content, "")
	}

	content, priority := parsePriority(content)
	content = strings.TrimSpace(content)
	if len(content) < minTaskLength {
		return extracted{}, false
	}

	due := findDueDate(content, now)

	status := domain.TaskStatusPending
	if completed {
		status = domain.TaskStatusCompleted
	}

	task := domain.TaskItem{
		ID:            domain.TaskID(docID, marker.Header, domain.NormalizeTaskContent(content)),
		Content:       content,
		Status:        status,
		Priority:      priority,
		DueDate:       due,
		SourceFile:    docID,
		SourceSection: marker.Header,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	return extracted{task: task, completed: completed}, true
}

// parsePriority resolves inline priority cues. Bang cues (!high, !low)
// are stripped from the content; keyword cues (urgent, asap, later,
// someday) are part of the text and stay.
func parsePriority(content string) (string, domain.TaskPriority) {
	priority := domain.TaskPriorityMedium

	fields := strings.Fields(content)
	kept := fields[:0]
	for _, f := range fields {
		switch strings.ToLower(f) {
		case "!high":
			priority = domain.TaskPriorityHigh
		case "!low":
			priority = domain.TaskPriorityLow
		case "!medium":
			// explicit default
		default:
			kept = append(kept, f)
			continue
		}
	}
	content = strings.Join(kept, " ")

	if priority == domain.TaskPriorityMedium {
		lower := strings.ToLower(content)
		switch {
		case strings.Contains(lower, "urgent"), strings.Contains(lower, "asap"):
			priority = domain.TaskPriorityHigh
		case strings.Contains(lower, "later"), strings.Contains(lower, "someday"):
			priority = domain.TaskPriorityLow
		}
	}

	return content, priority
}

// List returns tasks in presentation order, optionally filtered by status.
func (s *TaskService) List(ctx context.Context, status domain.TaskStatus) ([]domain.TaskItem, error) {
	if status != "" && !status.IsValid() {
		return nil, fmt.Errorf("status %q: %w", status, domain.ErrInvalidInput)
	}

	tasks, err := s.store.List(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	domain.SortTasksForDisplay(tasks)
	return tasks, nil
}

// Add inserts a manual task. Manual tasks carry a random id and are
// never touched by re-extraction.
func (s *TaskService) Add(ctx context.Context, content string, priority domain.TaskPriority, due *string) (*domain.TaskItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty task content: %w", domain.ErrInvalidInput)
	}
	if priority == "" {
		priority = domain.TaskPriorityMedium
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("priority %q: %w", priority, domain.ErrInvalidInput)
	}

	now := s.now()

	var dueDate *time.Time
	if due != nil {
		t, err := ParseDueDate(*due, now)
		if err != nil {
			return nil, err
		}
		dueDate = &t
	}

	task := domain.TaskItem{
		ID:            uuid.NewString(),
		Content:       content,
		Status:        domain.TaskStatusPending,
		Priority:      priority,
		DueDate:       dueDate,
		SourceFile:    domain.ManualSource,
		SourceSection: domain.ManualSource,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}
	return &task, nil
}

// Update applies a partial edit to a task.
func (s *TaskService) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.TaskItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Content != nil {
		content := strings.TrimSpace(*patch.Content)
		if content == "" {
			return nil, fmt.Errorf("empty task content: %w", domain.ErrInvalidInput)
		}
		task.Content = content
	}
	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return nil, fmt.Errorf("status %q: %w", *patch.Status, domain.ErrInvalidInput)
		}
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		if !patch.Priority.IsValid() {
			return nil, fmt.Errorf("priority %q: %w", *patch.Priority, domain.ErrInvalidInput)
		}
		task.Priority = *patch.Priority
	}
	if patch.ClearDueDate {
		task.DueDate = nil
	} else if patch.DueDate != nil {
		task.DueDate = patch.DueDate
	}
	if patch.Tags != nil {
		task.Tags = patch.Tags
	}

	task.UpdatedAt = s.now()
	if err := s.store.Save(ctx, *task); err != nil {
		return nil, fmt.Errorf("save task: %w", err)
	}
	return task, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.Delete(ctx, id)
}

// Overdue returns unfinished tasks whose due date has passed.
func (s *TaskService) Overdue(ctx context.Context) ([]domain.TaskItem, error) {
	tasks, err := s.store.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	today := domain.Day(s.now())
	var overdue []domain.TaskItem
	for _, t := range tasks {
		if t.Status == domain.TaskStatusCompleted || t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(today) {
			overdue = append(overdue, t)
		}
	}

	domain.SortTasksForDisplay(overdue)
	return overdue, nil
}
