package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies embedding provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries a raw provider vector and token usage.
type EmbeddingResult struct {
	Vector       []float32
	PromptTokens int
	TotalTokens  int
}

// Embedding pairs a normalized vector with the content hash of the
// original, untruncated source text. The hash lets callers detect stale
// cached content without re-embedding.
type Embedding struct {
	Vector []float32
	Hash   string
}

// HashText computes the content fingerprint used for staleness detection.
func HashText(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
