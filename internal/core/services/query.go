package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/noteward/noteward/internal/core/domain"
	"github.com/noteward/noteward/internal/core/ports/driven"
	"github.com/noteward/noteward/internal/core/ports/driving"
	"github.com/noteward/noteward/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService runs the retrieval and answer pipeline.
type QueryService struct {
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	llm      driven.LLMService
	notes    driven.NoteSource
	settings domain.RetrievalSettings
}

// NewQueryService creates a new query service. The llm parameter is
// optional (can be nil); without it Query degrades to Retrieve and
// query rewriting is skipped.
func NewQueryService(
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	llm driven.LLMService,
	notes driven.NoteSource,
	settings domain.RetrievalSettings,
) *QueryService {
	if settings.TopK <= 0 {
		settings.TopK = 5
	}
	if settings.CandidateK <= 0 {
		settings.CandidateK = settings.TopK * 4
	}
	return &QueryService{
		index:    index,
		embedder: embedder,
		llm:      llm,
		notes:    notes,
		settings: settings,
	}
}

// answerPrompt grounds the generation on retrieved note excerpts.
const answerPrompt = `You are answering a question about someone's personal notes.
Use ONLY the excerpts below. If they do not contain the answer, say so.
Cite the note a fact came from by its path.

Excerpts:
%s

Question: %s

Answer:`

// Query runs the full pipeline: rewrite, filter, retrieve, assemble.
func (s *QueryService) Query(ctx context.Context, query string, opts domain.QueryOptions) (*domain.Answer, error) {
	sources, err := s.Retrieve(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	if len(sources) == 0 {
		logger.Debug("No relevant chunks retrieved, skipping generation")
		return &domain.Answer{Text: "No relevant notes found.", Sources: []domain.Source{}}, nil
	}

	if s.llm == nil {
		return nil, fmt.Errorf("answer assembly: %w", domain.ErrGenerationUnavailable)
	}

	prompt := fmt.Sprintf(answerPrompt, renderExcerpts(sources), strings.TrimSpace(query))
	logger.Debug("Answer prompt: %d chars, %d excerpts", len(prompt), len(sources))

	text, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{Temperature: 0.2})
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}

	return &domain.Answer{
		Text:    strings.TrimSpace(text),
		Sources: sources,
	}, nil
}

// Retrieve runs the pipeline up to ranking: rewrite the query, derive
// an advisory filter, search, merge and rank.
func (s *QueryService) Retrieve(ctx context.Context, query string, opts domain.QueryOptions) ([]domain.Source, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Source{}, nil
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = s.settings.TopK
	}
	candidateK := s.settings.CandidateK
	if candidateK < topK {
		candidateK = topK
	}

	// Best-effort rewrite: a failed or unavailable LLM falls back to
	// the raw query.
	retrievalQuery := s.rewrite(ctx, query, opts.Context)

	vector, err := s.embedder.Embed(ctx, retrievalQuery)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	filter, filterDerived := s.resolveFilter(ctx, query, opts.Filter)

	hits, err := s.index.Search(ctx, vector, candidateK, filter)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	// A derived filter is advisory: when it filters everything out,
	// retry the search unfiltered rather than answering from nothing.
	if len(hits) == 0 && filterDerived && !filter.IsZero() {
		logger.Debug("Derived filter matched nothing, retrying unfiltered")
		hits, err = s.index.Search(ctx, vector, candidateK, domain.ChunkFilter{})
		if err != nil {
			return nil, fmt.Errorf("vector search: %w", err)
		}
	}

	sources := rankSources(hits)
	if len(sources) > topK {
		sources = sources[:topK]
	}
	logger.Info("Retrieved %d sources", len(sources))

	return sources, nil
}

// rewrite asks the LLM to expand the query, falling back to the
// original text on any failure.
func (s *QueryService) rewrite(ctx context.Context, query, hint string) string {
	if s.llm == nil {
		return query
	}

	rewritten, err := s.llm.RewriteQuery(ctx, query, hint)
	if err != nil {
		logger.Warn("Query rewrite failed, using raw query: %v", err)
		return query
	}
	rewritten = strings.TrimSpace(rewritten)
	if rewritten == "" {
		return query
	}
	logger.Debug("Rewritten query: %q", rewritten)
	return rewritten
}

// resolveFilter returns the filter to search with and whether it was
// derived from query cues (and may therefore be relaxed on an empty
// result). An explicit filter in opts is authoritative.
func (s *QueryService) resolveFilter(ctx context.Context, query string, explicit *domain.ChunkFilter) (domain.ChunkFilter, bool) {
	if explicit != nil {
		return *explicit, false
	}
	if s.notes == nil {
		return domain.ChunkFilter{}, false
	}

	notes, err := s.notes.List(ctx)
	if err != nil {
		logger.Debug("Note listing failed, searching unfiltered: %v", err)
		return domain.ChunkFilter{}, false
	}

	words := map[string]bool{}
	for _, w := range strings.Fields(strings.ToLower(query)) {
		words[strings.Trim(w, `.,;:!?"'`)] = true
	}

	// A note path mentioned verbatim pins the search to that note.
	lowered := strings.ToLower(query)
	for _, n := range notes {
		if strings.Contains(lowered, strings.ToLower(n.Path)) {
			logger.Debug("Derived doc filter: %s", n.Path)
			return domain.ChunkFilter{DocID: n.Path}, true
		}
	}

	// A folder name appearing as a word scopes the search to it.
	for _, n := range notes {
		if n.Folder != "" && words[strings.ToLower(n.Folder)] {
			logger.Debug("Derived folder filter: %s", n.Folder)
			return domain.ChunkFilter{Folder: n.Folder}, true
		}
	}

	return domain.ChunkFilter{}, false
}

// rankSources orders hits by score descending; ties go to the
// shallower heading level, then the smaller section id.
func rankSources(hits []driven.VectorHit) []domain.Source {
	sources := make([]domain.Source, len(hits))
	for i, hit := range hits {
		sources[i] = domain.Source{
			Header:    hit.Meta.Header,
			Content:   hit.Text,
			DocID:     hit.Meta.DocID,
			SectionID: hit.Meta.SectionID,
			Level:     hit.Meta.Level,
			Type:      hit.Meta.Type,
			Score:     hit.Score,
		}
	}

	sort.SliceStable(sources, func(i, j int) bool {
		a, b := sources[i], sources[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Level != b.Level {
			return a.Level < b.Level
		}
		return a.SectionID < b.SectionID
	})

	return sources
}

// renderExcerpts formats sources as prompt context blocks.
func renderExcerpts(sources []domain.Source) string {
	var b strings.Builder
	for i, src := range sources {
		if i > 0 {
			b.WriteString("\n\n")
		}
		header := src.Header
		if header == "" {
			header = "(no heading)"
		}
		fmt.Fprintf(&b, "[%s — %s]\n%s", src.DocID, header, src.Content)
	}
	return b.String()
}
