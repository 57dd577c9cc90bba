// Package profile assembles and caches the candidate profile embedding.
//
// The cache is invalidated by recomputing a cheap fingerprint of the input
// text, not by subscribing to every input field; the content-store
// collaborator must call Invalidate whenever resume, context, stories, or
// documents change.
package profile

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
)

// affixLen is how many leading/trailing characters feed the fingerprint.
const affixLen = 64

// Service builds the candidate profile text and caches its embedding.
type Service struct {
	content ContentReader
	embed   Embedder
	logger  *zap.Logger

	mu         sync.Mutex
	cachedHash string
	cachedVec  []float32
}

// New creates a profile service.
func New(content ContentReader, embed Embedder, logger *zap.Logger) *Service {
	return &Service{content: content, embed: embed, logger: logger}
}

// BuildProfileText deterministically concatenates the profile inputs in a
// fixed field order: resume, additional context, stories, documents.
// Documents marked UseSummary contribute their summary instead of content.
func BuildProfileText(resume, additionalContext string, stories []domain.Story, documents []domain.Document) string {
	var b strings.Builder

	b.WriteString("Resume:\n")
	b.WriteString(resume)

	if additionalContext != "" {
		b.WriteString("\n\nAdditional Context:\n")
		b.WriteString(additionalContext)
	}

	for _, s := range stories {
		b.WriteString("\n\nStory:\n")
		b.WriteString(s.Text())
	}

	for _, d := range documents {
		b.WriteString("\n\nDocument (")
		b.WriteString(d.Name)
		b.WriteString("):\n")
		b.WriteString(d.Text())
	}

	return b.String()
}

// ProfileVector returns the embedding of the current profile text. Identical
// inputs are served from cache without touching the embedding pipeline; the
// (hash, vector) pair is replaced atomically so no reader sees a mismatch.
func (s *Service) ProfileVector(ctx context.Context) ([]float32, error) {
	settings, err := s.content.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if strings.TrimSpace(settings.ResumeText) == "" {
		return nil, domain.ErrProfileUnavailable
	}

	stories, err := s.content.Stories(ctx)
	if err != nil {
		return nil, fmt.Errorf("read stories: %w", err)
	}
	documents, err := s.content.Documents(ctx)
	if err != nil {
		return nil, fmt.Errorf("read documents: %w", err)
	}

	text := BuildProfileText(settings.ResumeText, settings.AdditionalContext, stories, documents)
	hash := fingerprint(text)

	s.mu.Lock()
	if hash == s.cachedHash && s.cachedVec != nil {
		vec := s.cachedVec
		s.mu.Unlock()
		return vec, nil
	}
	s.mu.Unlock()

	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed profile: %w", err)
	}

	s.mu.Lock()
	s.cachedHash = hash
	s.cachedVec = emb.Vector
	s.mu.Unlock()

	s.logger.Debug("Profile embedding refreshed", zap.Int("text_len", len(text)))
	return emb.Vector, nil
}

// Invalidate clears the cache. The content store must call this whenever
// resume, additional context, stories, or documents change.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cachedHash = ""
	s.cachedVec = nil
	s.mu.Unlock()
}

// fingerprint is a cheap change detector over the profile text: length plus
// leading and trailing affixes. It is not cryptographic; it only needs to
// catch realistic edits to any input field.
func fingerprint(text string) string {
	runes := []rune(text)
	n := len(runes)

	prefix := runes
	if n > affixLen {
		prefix = runes[:affixLen]
	}
	suffix := runes
	if n > affixLen {
		suffix = runes[n-affixLen:]
	}
	return fmt.Sprintf("%d:%s:%s", n, string(prefix), string(suffix))
}
