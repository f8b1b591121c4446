package driving

import (
	"context"

	"github.com/noteward/noteward/internal/core/domain"
)

// QueryService answers natural-language questions against the corpus.
type QueryService interface {
	// Query runs the full pipeline: rewrite, filter, retrieve, assemble.
	// An answer with no sources means no relevant content was found,
	// which is not an error. Capability outages surface as
	// domain.ErrEmbeddingUnavailable / domain.ErrGenerationUnavailable.
	Query(ctx context.Context, query string, opts domain.QueryOptions) (*domain.Answer, error)

	// Retrieve runs the pipeline up to ranking and returns the raw
	// sources without calling the generation capability.
	Retrieve(ctx context.Context, query string, opts domain.QueryOptions) ([]domain.Source, error)
}
