package profile

import (
	"context"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
	"github.com/rshaham/job-hunt-buddy/internal/store"
)

// ContentReader supplies the profile's input texts.
type ContentReader interface {
	Settings(ctx context.Context) (store.Settings, error)
	Stories(ctx context.Context) ([]domain.Story, error)
	Documents(ctx context.Context) ([]domain.Document, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.Embedding, error)
}
