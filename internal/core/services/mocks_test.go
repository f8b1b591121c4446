package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noteward/noteward/internal/core/domain"
	"github.com/noteward/noteward/internal/core/ports/driven"
)

// fakeNote is one in-memory note.
type fakeNote struct {
	content  string
	modified time.Time
}

// fakeNoteSource serves notes from a map keyed by relative path.
type fakeNoteSource struct {
	mu    sync.Mutex
	notes map[string]fakeNote
	// listErr, when set, fails List.
	listErr error
}

func newFakeNoteSource() *fakeNoteSource {
	return &fakeNoteSource{notes: make(map[string]fakeNote)}
}

func (f *fakeNoteSource) put(path, content string, modified time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes[path] = fakeNote{content: content, modified: modified}
}

func (f *fakeNoteSource) remove(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.notes, path)
}

func (f *fakeNoteSource) List(_ context.Context) ([]domain.NoteInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var infos []domain.NoteInfo
	for path, n := range f.notes {
		infos = append(infos, domain.NoteInfo{
			Path:     path,
			Folder:   folderOf(path),
			Size:     int64(len(n.content)),
			Modified: n.modified,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos, nil
}

func (f *fakeNoteSource) Read(_ context.Context, path string) (domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.notes[path]
	if !ok {
		return domain.Document{}, domain.ErrNotFound
	}
	return domain.Document{
		ID:       path,
		Folder:   folderOf(path),
		Content:  n.content,
		Modified: n.modified,
	}, nil
}

func (f *fakeNoteSource) Write(_ context.Context, path, content string) error {
	f.put(path, content, time.Now())
	return nil
}

func (f *fakeNoteSource) Delete(_ context.Context, path string) error {
	f.remove(path)
	return nil
}

func folderOf(path string) string {
	if i := strings.Index(path, "/"); i >= 0 {
		return path[:i]
	}
	return ""
}

// fakeTaskStore keeps tasks in a map.
type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[string]domain.TaskItem
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[string]domain.TaskItem)}
}

func (f *fakeTaskStore) Save(_ context.Context, task domain.TaskItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[task.ID] = task
	return nil
}

func (f *fakeTaskStore) SaveAll(ctx context.Context, tasks []domain.TaskItem) error {
	for _, t := range tasks {
		if err := f.Save(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeTaskStore) Get(_ context.Context, id string) (*domain.TaskItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (f *fakeTaskStore) List(_ context.Context, status domain.TaskStatus) ([]domain.TaskItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.TaskItem
	for _, t := range f.tasks {
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTaskStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tasks[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.tasks, id)
	return nil
}

// fakeDigestStore keeps one digest per day, newest wins.
type fakeDigestStore struct {
	mu      sync.Mutex
	digests map[string]domain.Digest // keyed by day string
}

func newFakeDigestStore() *fakeDigestStore {
	return &fakeDigestStore{digests: make(map[string]domain.Digest)}
}

func (f *fakeDigestStore) Save(_ context.Context, digest domain.Digest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.digests[digest.Date.Format("2006-01-02")] = digest
	return nil
}

func (f *fakeDigestStore) Latest(_ context.Context) (*domain.Digest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.Digest
	for _, d := range f.digests {
		d := d
		if latest == nil || d.Date.After(latest.Date) {
			latest = &d
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	return latest, nil
}

func (f *fakeDigestStore) Get(_ context.Context, day string) (*domain.Digest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.digests[day]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &d, nil
}

func (f *fakeDigestStore) List(_ context.Context, limit int) ([]domain.Digest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Digest
	for _, d := range f.digests {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeLLM scripts generation and rewriting.
type fakeLLM struct {
	mu           sync.Mutex
	generateText string
	generateErr  error
	rewriteText  string
	rewriteErr   error
	prompts      []string
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.generateErr != nil {
		return "", f.generateErr
	}
	return f.generateText, nil
}

func (f *fakeLLM) RewriteQuery(_ context.Context, query, _ string) (string, error) {
	if f.rewriteErr != nil {
		return "", f.rewriteErr
	}
	if f.rewriteText != "" {
		return f.rewriteText, nil
	}
	return query, nil
}

func (f *fakeLLM) ModelName() string            { return "fake" }
func (f *fakeLLM) Ping(_ context.Context) error { return nil }
func (f *fakeLLM) Close() error                 { return nil }

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// fakeEmbedder records the texts it embedded.
type fakeEmbedder struct {
	mu    sync.Mutex
	err   error
	texts []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	f.mu.Lock()
	f.texts = append(f.texts, texts...)
	f.mu.Unlock()
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int              { return 3 }
func (f *fakeEmbedder) ModelName() string            { return "fake" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

func (f *fakeEmbedder) lastText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.texts) == 0 {
		return ""
	}
	return f.texts[len(f.texts)-1]
}

// fakeIndex scripts search results and records calls.
type fakeIndex struct {
	mu        sync.Mutex
	hits      []driven.VectorHit
	searchErr error
	// hitsForEmptyFilter, when set, is returned only for a zero filter;
	// filtered searches then return nothing.
	hitsForEmptyFilter []driven.VectorHit

	searches   []domain.ChunkFilter
	upserts    []string
	removes    []string
	rebuilds   int
	rebuildErr error
	rebuildFn  func(ctx context.Context, docs []domain.Document) error
}

func (f *fakeIndex) Upsert(_ context.Context, doc domain.Document, _ []domain.Chunk) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, doc.ID)
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, docID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removes = append(f.removes, docID)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ []float32, _ int, filter domain.ChunkFilter) ([]driven.VectorHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, filter)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if f.hitsForEmptyFilter != nil {
		if filter.IsZero() {
			return f.hitsForEmptyFilter, nil
		}
		return nil, nil
	}
	return f.hits, nil
}

func (f *fakeIndex) Rebuild(ctx context.Context, docs []domain.Document) error {
	f.mu.Lock()
	f.rebuilds++
	fn := f.rebuildFn
	f.mu.Unlock()
	if fn != nil {
		return fn(ctx, docs)
	}
	return f.rebuildErr
}

func (f *fakeIndex) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.hits)
}

func (f *fakeIndex) Close() error { return nil }

func (f *fakeIndex) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

func (f *fakeIndex) searchFilter(i int) domain.ChunkFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searches[i]
}

// fakeWatcher replays a scripted event stream.
type fakeWatcher struct {
	events chan driven.NoteEvent
	errs   chan error
}

func newFakeWatcher() *fakeWatcher {
	return &fakeWatcher{
		events: make(chan driven.NoteEvent, 16),
		errs:   make(chan error, 1),
	}
}

func (f *fakeWatcher) Watch(_ context.Context) (<-chan driven.NoteEvent, <-chan error, error) {
	return f.events, f.errs, nil
}

func (f *fakeWatcher) Close() error { return nil }
