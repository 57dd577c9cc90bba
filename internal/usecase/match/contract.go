package match

import (
	"context"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
)

// ProfileSource yields the candidate profile embedding.
type ProfileSource interface {
	ProfileVector(ctx context.Context) ([]float32, error)
}

// Embedder vectorizes job text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.Embedding, error)
}
