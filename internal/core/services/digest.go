package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noteward/noteward/internal/core/domain"
	"github.com/noteward/noteward/internal/core/ports/driven"
	"github.com/noteward/noteward/internal/core/ports/driving"
	"github.com/noteward/noteward/internal/logger"
)

// Ensure DigestService implements the interface.
var _ driving.DigestService = (*DigestService)(nil)

// DigestService produces a daily summary of corpus changes and open
// tasks. The scheduler loop fires once per day at a configured local
// hour; a day missed while the process was down is made up once at
// startup.
type DigestService struct {
	tasks    driving.TaskService
	notes    driven.NoteSource
	llm      driven.LLMService
	store    driven.DigestStore
	settings domain.DigestSettings

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	now     func() time.Time
}

// NewDigestService creates a new digest service.
func NewDigestService(
	tasks driving.TaskService,
	notes driven.NoteSource,
	llm driven.LLMService,
	store driven.DigestStore,
	settings domain.DigestSettings,
) *DigestService {
	return &DigestService{
		tasks:    tasks,
		notes:    notes,
		llm:      llm,
		store:    store,
		settings: settings,
		now:      time.Now,
	}
}

// digestPrompt turns the collected facts into a short readable summary.
const digestPrompt = `Write a short daily digest of someone's personal notes.
Summarise what changed and what needs attention. Be concrete, skip filler.

Notes changed since the last digest:
%s

Pending tasks:
%s

Overdue tasks:
%s

Digest:`

// RunOnce produces a digest for today immediately, regardless of the
// schedule. The record supersedes any earlier digest for the same day.
func (s *DigestService) RunOnce(ctx context.Context) (*domain.Digest, error) {
	logger.Section("Daily Digest")
	now := s.now()

	// Changes are measured against the previous digest run.
	var since time.Time
	if latest, err := s.store.Latest(ctx); err == nil {
		since = latest.CreatedAt
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load latest digest: %w", err)
	}

	if _, err := s.tasks.Extract(ctx, driving.ExtractOptions{ModifiedSince: since}); err != nil {
		logger.Warn("Digest extraction pass failed: %v", err)
	}

	changed, err := s.changedNotes(ctx, since)
	if err != nil {
		return nil, err
	}

	all, err := s.tasks.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	var pending []domain.TaskItem
	var pendingIDs []string
	for _, t := range all {
		if t.Status != domain.TaskStatusCompleted {
			pending = append(pending, t)
			pendingIDs = append(pendingIDs, t.ID)
		}
	}

	overdue, err := s.tasks.Overdue(ctx)
	if err != nil {
		return nil, fmt.Errorf("list overdue tasks: %w", err)
	}

	if s.llm == nil {
		return nil, fmt.Errorf("digest summary: %w", domain.ErrGenerationUnavailable)
	}

	prompt := fmt.Sprintf(digestPrompt,
		renderNoteList(changed), renderTaskList(pending), renderTaskList(overdue))
	summary, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: 0.3})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}

	digest := domain.Digest{
		ID:             uuid.NewString(),
		Date:           domain.Day(now),
		SummaryText:    strings.TrimSpace(summary),
		PendingTaskIDs: pendingIDs,
		CreatedAt:      now,
	}

	if err := s.store.Save(ctx, digest); err != nil {
		return nil, fmt.Errorf("save digest: %w", err)
	}

	logger.Info("Digest saved: %d pending, %d overdue, %d notes changed",
		len(pendingIDs), len(overdue), len(changed))
	return &digest, nil
}

// Latest returns the most recent digest.
func (s *DigestService) Latest(ctx context.Context) (*domain.Digest, error) {
	return s.store.Latest(ctx)
}

// Start begins the scheduler loop. This method blocks until Stop is
// called or the context is cancelled.
func (s *DigestService) Start(ctx context.Context) error {
	if !s.settings.Enabled {
		logger.Debug("Digest scheduler disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	// Make up a run missed while the process was down.
	if s.missedRun(ctx) {
		s.runScheduled(ctx)
	}

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			if s.dueNow(ctx) {
				s.runScheduled(ctx)
			}
		}
	}
}

// Stop gracefully shuts down the scheduler and waits for a running job.
func (s *DigestService) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// runScheduled executes one digest run, logging instead of failing the
// loop; a failed run stays due and the next tick retries it.
func (s *DigestService) runScheduled(ctx context.Context) {
	s.wg.Add(1)
	defer s.wg.Done()

	if _, err := s.RunOnce(ctx); err != nil {
		logger.Warn("Scheduled digest failed: %v", err)
	}
}

// missedRun reports whether the newest digest predates today.
func (s *DigestService) missedRun(ctx context.Context) bool {
	latest, err := s.store.Latest(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		return true
	}
	if err != nil {
		logger.Warn("Digest lookup failed: %v", err)
		return false
	}
	return latest.Date.Before(domain.Day(s.now()))
}

// dueNow reports whether the configured hour has been reached and
// today's digest has not run yet.
func (s *DigestService) dueNow(ctx context.Context) bool {
	return s.now().Hour() >= s.settings.Hour && s.missedRun(ctx)
}

// changedNotes lists notes modified after the given time.
func (s *DigestService) changedNotes(ctx context.Context, since time.Time) ([]domain.NoteInfo, error) {
	notes, err := s.notes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	if since.IsZero() {
		return notes, nil
	}

	var changed []domain.NoteInfo
	for _, n := range notes {
		if n.Modified.After(since) {
			changed = append(changed, n)
		}
	}
	return changed, nil
}

func renderNoteList(notes []domain.NoteInfo) string {
	if len(notes) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, n := range notes {
		fmt.Fprintf(&b, "- %s\n", n.Path)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderTaskList(tasks []domain.TaskItem) string {
	if len(tasks) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, t := range tasks {
		line := fmt.Sprintf("- [%s] %s", t.Priority, t.Content)
		if t.DueDate != nil {
			line += fmt.Sprintf(" (due %s)", t.DueDate.Format("2006-01-02"))
		}
		fmt.Fprintf(&b, "%s\n", line)
	}
	return strings.TrimRight(b.String(), "\n")
}
