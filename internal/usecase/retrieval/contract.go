package retrieval

import (
	"context"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
	"github.com/rshaham/job-hunt-buddy/internal/index"
)

// Embedder vectorizes query text. Ready reports whether the underlying
// pipeline can serve embeddings right now.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.Embedding, error)
	Ready() bool
}

// Searcher answers vector similarity queries.
type Searcher interface {
	Query(vec []float32, opts index.QueryOptions) []index.Scored
}

// ContentReader resolves hit IDs back to their source material and feeds the
// recency fallback.
type ContentReader interface {
	Stories(ctx context.Context) ([]domain.Story, error)
	Documents(ctx context.Context) ([]domain.Document, error)
}
